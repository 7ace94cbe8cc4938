package series

import "github.com/shopspring/decimal"

const (
	priceLabel  = "Current Price: "
	changeLabel = "Change: "
)

// FormatPrice renders a price to two decimal places: "Current Price: $67012.34".
func FormatPrice(price decimal.Decimal) string {
	return priceLabel + "$" + price.StringFixed(2)
}

// FormatChange renders a percentage to two decimal places: "Change: -0.12%".
func FormatChange(percent decimal.Decimal) string {
	return changeLabel + percent.StringFixed(2) + "%"
}
