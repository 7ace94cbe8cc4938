package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/tradewatch/internal/feed/feedtest"
	"github.com/rxtech-lab/tradewatch/internal/logger"
	"github.com/rxtech-lab/tradewatch/internal/types"
	"github.com/rxtech-lab/tradewatch/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ClientTestSuite struct {
	suite.Suite
	server *feedtest.Server
	frames chan []byte

	statusMu sync.Mutex
	statuses []types.FeedStatus
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (suite *ClientTestSuite) SetupTest() {
	suite.server = feedtest.NewServer(feedtest.Config{}) //nolint:exhaustruct
	suite.Require().NoError(suite.server.Start(""))
	suite.frames = make(chan []byte, 16)
	suite.statuses = nil
}

func (suite *ClientTestSuite) TearDownTest() {
	suite.Require().NoError(suite.server.Stop())
}

func (suite *ClientTestSuite) newClient(url string) *Client {
	return NewClient(url, func(frame []byte) {
		suite.frames <- frame
	}, logger.NewNop(), WithStatusHandler(func(status types.FeedStatus, _ error) {
		suite.statusMu.Lock()
		suite.statuses = append(suite.statuses, status)
		suite.statusMu.Unlock()
	}))
}

func (suite *ClientTestSuite) recordedStatuses() []types.FeedStatus {
	suite.statusMu.Lock()
	defer suite.statusMu.Unlock()

	return append([]types.FeedStatus(nil), suite.statuses...)
}

func (suite *ClientTestSuite) receive() []byte {
	select {
	case frame := <-suite.frames:
		return frame
	case <-time.After(2 * time.Second):
		suite.FailNow("timed out waiting for frame")

		return nil
	}
}

func (suite *ClientTestSuite) TestConnectAndReceiveInOrder() {
	client := suite.newClient(suite.server.URL("BTCUSDT"))
	suite.Equal(types.FeedStatusIdle, client.Status())

	suite.Require().NoError(client.Connect(context.Background()))
	defer client.Close()

	suite.Equal(types.FeedStatusConnected, client.Status())
	suite.Require().True(suite.server.WaitForConnections(1, 2*time.Second))

	suite.Equal(1, suite.server.Broadcast([]byte(`{"p":"1"}`)))
	suite.Equal(1, suite.server.Broadcast([]byte(`{"p":"2"}`)))
	suite.Equal(1, suite.server.Broadcast([]byte(`{"p":"3"}`)))

	suite.Equal(`{"p":"1"}`, string(suite.receive()))
	suite.Equal(`{"p":"2"}`, string(suite.receive()))
	suite.Equal(`{"p":"3"}`, string(suite.receive()))
}

func (suite *ClientTestSuite) TestBinaryFramesIgnored() {
	client := suite.newClient(suite.server.URL("BTCUSDT"))
	suite.Require().NoError(client.Connect(context.Background()))
	defer client.Close()
	suite.Require().True(suite.server.WaitForConnections(1, 2*time.Second))

	suite.server.BroadcastBinary([]byte{0x01, 0x02})
	suite.server.Broadcast([]byte(`{"p":"1"}`))

	suite.Equal(`{"p":"1"}`, string(suite.receive()))
}

func (suite *ClientTestSuite) TestCloseSendsNormalClosure() {
	client := suite.newClient(suite.server.URL("BTCUSDT"))
	suite.Require().NoError(client.Connect(context.Background()))
	suite.Require().True(suite.server.WaitForConnections(1, 2*time.Second))

	suite.NoError(client.Close())

	event, ok := suite.server.WaitForClose(2 * time.Second)
	suite.Require().True(ok)
	suite.Equal(websocket.CloseNormalClosure, event.Code)
	suite.Equal(CloseReason, event.Text)
	suite.Equal("BTCUSDT", event.Symbol)
	suite.Equal(types.FeedStatusClosed, client.Status())

	select {
	case <-client.Done():
	default:
		suite.Fail("read goroutine still running after Close")
	}
}

func (suite *ClientTestSuite) TestCloseIsIdempotent() {
	client := suite.newClient(suite.server.URL("BTCUSDT"))
	suite.Require().NoError(client.Connect(context.Background()))

	suite.NoError(client.Close())
	suite.NoError(client.Close())
	suite.NoError(client.Close())

	suite.Equal([]types.FeedStatus{types.FeedStatusConnected, types.FeedStatusClosed}, suite.recordedStatuses())
}

func (suite *ClientTestSuite) TestCloseBeforeConnect() {
	client := suite.newClient(suite.server.URL("BTCUSDT"))

	suite.NoError(client.Close())
	suite.Equal(types.FeedStatusClosed, client.Status())

	err := client.Connect(context.Background())
	suite.Error(err)
	suite.Equal(errors.ErrCodeFeedClosed, errors.GetCode(err))
}

func (suite *ClientTestSuite) TestConnectTwice() {
	client := suite.newClient(suite.server.URL("BTCUSDT"))
	suite.Require().NoError(client.Connect(context.Background()))
	defer client.Close()

	err := client.Connect(context.Background())
	suite.Error(err)
	suite.Equal(errors.ErrCodeFeedAlreadyOpen, errors.GetCode(err))
}

func (suite *ClientTestSuite) TestConnectFailure() {
	client := suite.newClient(suite.server.BaseURL() + "/not-a-stream")

	err := client.Connect(context.Background())
	suite.Error(err)
	suite.Equal(errors.ErrCodeFeedConnectFailed, errors.GetCode(err))
	suite.Equal(types.FeedStatusDisconnected, client.Status())

	suite.NoError(client.Close())
}

func (suite *ClientTestSuite) TestConnectRespectsContext() {
	client := suite.newClient(suite.server.URL("BTCUSDT"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Connect(ctx)
	suite.Error(err)
	suite.Equal(errors.ErrCodeFeedConnectFailed, errors.GetCode(err))
}

func (suite *ClientTestSuite) TestConnectionLostDoesNotReconnect() {
	client := suite.newClient(suite.server.URL("BTCUSDT"))
	suite.Require().NoError(client.Connect(context.Background()))
	defer client.Close()
	suite.Require().True(suite.server.WaitForConnections(1, 2*time.Second))

	suite.server.DropConnections()

	select {
	case <-client.Done():
	case <-time.After(2 * time.Second):
		suite.FailNow("read goroutine did not stop")
	}

	suite.Equal(types.FeedStatusDisconnected, client.Status())

	time.Sleep(100 * time.Millisecond)
	suite.Equal(0, suite.server.ConnectionCount())
}
