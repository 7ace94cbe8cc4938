package feed

import (
	"net/url"
	"path"
	"strings"

	"github.com/adshao/go-binance/v2"
)

const streamSuffix = "@trade"

// BaseURL returns the Binance websocket base URL.
func BaseURL(testnet bool) string {
	if testnet {
		return binance.BaseWsTestnetURL
	}

	return binance.BaseWsMainURL
}

// StreamURL builds the raw trade stream URL for symbol, e.g.
// wss://stream.binance.com:9443/ws/btcusdt@trade.
func StreamURL(base, symbol string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.ToLower(symbol) + streamSuffix
}

// SymbolFromURL returns the upper-cased symbol of a <base>/<symbol>@trade URL.
// ok is false for URLs of any other shape, such as combined streams.
func SymbolFromURL(streamURL string) (symbol string, ok bool) {
	u, err := url.Parse(streamURL)
	if err != nil {
		return "", false
	}

	symbol, ok = strings.CutSuffix(path.Base(u.Path), streamSuffix)
	if !ok || symbol == "" {
		return "", false
	}

	return strings.ToUpper(symbol), true
}
