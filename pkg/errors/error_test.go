package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidConfiguration, "initial_balance must be positive")
	suite.NotNil(err)
	suite.Equal(ErrCodeInvalidConfiguration, err.Code)
	suite.Equal("initial_balance must be positive", err.Message)
	suite.Nil(err.Cause)
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeInvalidSignal, "unknown signal kind: %s", "short")
	suite.Equal(ErrCodeInvalidSignal, err.Code)
	suite.Equal("unknown signal kind: short", err.Message)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("connection reset")
	err := Wrap(ErrCodeMarketDataFetchFailed, "failed to fetch candles", cause)
	suite.Equal(ErrCodeMarketDataFetchFailed, err.Code)
	suite.Equal(cause, err.Cause)
	suite.Equal(cause, err.Unwrap())
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("no such file")
	err := Wrapf(ErrCodeDataNotFound, cause, "data file %s missing", "BTC-USDT.csv")
	suite.Equal("data file BTC-USDT.csv missing", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestErrorString() {
	err := New(ErrCodeInvalidSignal, "invalid signal")
	suite.Equal("[102] invalid signal", err.Error())

	wrapped := Wrap(ErrCodeDataNotFound, "data not found", errors.New("underlying error"))
	suite.Equal("[200] data not found: underlying error", wrapped.Error())
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeNonMonotonicBars, GetCode(New(ErrCodeNonMonotonicBars, "out of order")))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("standard error")))

	// the outermost code wins
	inner := New(ErrCodeInvalidSignal, "bad signal")
	outer := Wrap(ErrCodeStrategyRuntimeError, "strategy failed", inner)
	suite.Equal(ErrCodeStrategyRuntimeError, GetCode(outer))
}

func (suite *ErrorTestSuite) TestHasCode() {
	err := New(ErrCodeInvalidConfiguration, "bad config")
	suite.True(HasCode(err, ErrCodeInvalidConfiguration))
	suite.False(HasCode(err, ErrCodeInvalidSignal))
}

func (suite *ErrorTestSuite) TestIsAndAs() {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeQueryFailed, "query failed", cause)
	suite.True(Is(err, cause))

	var target *Error
	suite.True(As(err, &target))
	suite.Equal(ErrCodeQueryFailed, target.Code)
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(101), ErrCodeInvalidConfiguration)
	suite.Equal(ErrorCode(200), ErrCodeDataNotFound)
	suite.Equal(ErrorCode(300), ErrCodeIndicatorNotFound)
	suite.Equal(ErrorCode(400), ErrCodeStrategyNotLoaded)
	suite.Equal(ErrorCode(500), ErrCodePositionAlreadyOpen)
	suite.Equal(ErrorCode(600), ErrCodeBacktestStateNil)
	suite.Equal(ErrorCode(700), ErrCodeMarketDataFetchFailed)
	suite.Equal(ErrorCode(800), ErrCodeCallbackFailed)
	suite.Equal(ErrorCode(900), ErrCodeStoreUnavailable)
}
