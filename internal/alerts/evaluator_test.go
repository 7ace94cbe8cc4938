package alerts

import (
	"fmt"
	"testing"

	"github.com/rxtech-lab/tradewatch/internal/logger"
	"github.com/rxtech-lab/tradewatch/internal/types"
	"github.com/rxtech-lab/tradewatch/mocks"
	"github.com/rxtech-lab/tradewatch/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type EvaluatorTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	notifier *mocks.MockNotifier
	logs     *observer.ObservedLogs
	eval     *Evaluator
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorTestSuite))
}

func (suite *EvaluatorTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.notifier = mocks.NewMockNotifier(suite.ctrl)

	core, logs := observer.New(zap.DebugLevel)
	suite.logs = logs
	suite.eval = NewEvaluator(decimal.NewFromInt(95), suite.notifier, &logger.Logger{Logger: zap.New(core)})
}

func (suite *EvaluatorTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func tradeFrame(quantity string) []byte {
	return []byte(fmt.Sprintf(`{"e":"trade","E":1,"s":"BTCUSDT","t":99,"p":"65000.00","q":%s,"T":1,"m":false,"M":true}`, quantity))
}

func (suite *EvaluatorTestSuite) TestAboveThresholdRaisesOneAlert() {
	var delivered types.Alert
	suite.notifier.EXPECT().Notify(gomock.Any()).DoAndReturn(func(alert types.Alert) error {
		delivered = alert

		return nil
	}).Times(1)

	alert, err := suite.eval.Inspect(tradeFrame(`"96.5"`))
	suite.Require().NoError(err)
	suite.Require().True(alert.IsSome())

	suite.Equal(delivered.ID, alert.Unwrap().ID)
	suite.Equal("Large trade!", delivered.Title)
	suite.Equal("Trade volume: 96.5", delivered.Message)
	suite.Equal("BTCUSDT", delivered.Symbol)
	suite.Equal(int64(99), delivered.TradeID)
}

func (suite *EvaluatorTestSuite) TestThresholdBoundary() {
	tests := []struct {
		name     string
		quantity string
		alert    bool
	}{
		{"below", `"1.5"`, false},
		{"equal", `"95"`, false},
		{"equal with trailing zeros", `"95.00000000"`, false},
		{"just above", `"95.00000001"`, true},
		{"numeric above", `100`, true},
		{"zero", `"0"`, false},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			if tc.alert {
				suite.notifier.EXPECT().Notify(gomock.Any()).Return(nil).Times(1)
			}

			alert, err := suite.eval.Inspect(tradeFrame(tc.quantity))
			suite.NoError(err)
			suite.Equal(tc.alert, alert.IsSome())
		})
	}
}

func (suite *EvaluatorTestSuite) TestNoDeduplication() {
	suite.notifier.EXPECT().Notify(gomock.Any()).Return(nil).Times(3)

	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		alert, err := suite.eval.Inspect(tradeFrame(`"200"`))
		suite.Require().NoError(err)
		ids[alert.Unwrap().ID] = true
	}

	suite.Len(ids, 3)
}

func (suite *EvaluatorTestSuite) TestUnreadableQuantityIsLoggedAndSwallowed() {
	suite.notifier.EXPECT().Notify(gomock.Any()).Times(0)

	alert, err := suite.eval.Inspect([]byte(`{"p":"1","q":"many"}`))
	suite.True(alert.IsNone())
	suite.Equal(errors.ErrCodeFieldNotNumeric, errors.GetCode(err))

	alert, err = suite.eval.Inspect([]byte(`not json`))
	suite.True(alert.IsNone())
	suite.Equal(errors.ErrCodeFrameParseFailed, errors.GetCode(err))

	suite.Equal(2, suite.logs.FilterMessage("failed to read trade quantity").Len())
}

func (suite *EvaluatorTestSuite) TestAlertWithoutFullTradeStillRaised() {
	suite.notifier.EXPECT().Notify(gomock.Any()).Return(nil)

	alert, err := suite.eval.Inspect([]byte(`{"q":"500"}`))
	suite.Require().NoError(err)
	suite.Require().True(alert.IsSome())
	suite.Equal("", alert.Unwrap().Symbol)
}

func (suite *EvaluatorTestSuite) TestNotifierFailureIsLogged() {
	suite.notifier.EXPECT().Notify(gomock.Any()).Return(errors.New(errors.ErrCodeNotificationFailed, "no display"))

	alert, err := suite.eval.Inspect(tradeFrame(`"100"`))
	suite.NoError(err)
	suite.True(alert.IsSome())
	suite.Equal(1, suite.logs.FilterMessage("failed to deliver alert").Len())
}

func (suite *EvaluatorTestSuite) TestNilNotifierLogs() {
	core, logs := observer.New(zap.InfoLevel)
	eval := NewEvaluator(decimal.NewFromInt(95), nil, &logger.Logger{Logger: zap.New(core)})

	alert, err := eval.Inspect(tradeFrame(`"100"`))
	suite.NoError(err)
	suite.True(alert.IsSome())
	suite.Equal(1, logs.FilterMessage("Large trade!").Len())
	suite.True(eval.Threshold().Equal(decimal.NewFromInt(95)))
}
