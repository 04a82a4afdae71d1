package strategyobs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rxtech-lab/okx-backtest/internal/log"
	"github.com/rxtech-lab/okx-backtest/internal/strategy"
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/mocks"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"
)

type StrategyObsTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	inner    *mocks.MockStrategy
	journal  *mocks.MockLog
	exporter *tracetest.InMemoryExporter
	provider *sdktrace.TracerProvider
	wrapped  strategy.Strategy
}

func TestStrategyObsSuite(t *testing.T) {
	suite.Run(t, new(StrategyObsTestSuite))
}

func (suite *StrategyObsTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.inner = mocks.NewMockStrategy(suite.ctrl)
	suite.inner.EXPECT().Name().Return("mock").AnyTimes()
	suite.journal = mocks.NewMockLog(suite.ctrl)
	suite.exporter = tracetest.NewInMemoryExporter()

	suite.provider = sdktrace.NewTracerProvider(sdktrace.WithSyncer(suite.exporter))

	suite.wrapped = Wrap(suite.inner, Options{
		Journal: suite.journal,
		Tracer:  suite.provider.Tracer("test"),
	})
}

func (suite *StrategyObsTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

var bar = types.Bar{
	Time:   time.Date(2024, 1, 1, 3, 0, 0, 0, time.UTC),
	Symbol: "BTC-USDT",
	Open:   100,
	High:   101,
	Low:    99,
	Close:  100,
}

func (suite *StrategyObsTestSuite) TestJournalsNonHoldSignals() {
	long := types.NewLongSignal(100, 95, 110, "test")
	suite.inner.EXPECT().OnData(bar).Return([]types.Signal{types.NewHoldSignal(), long}, nil)

	var recorded log.LogEntry

	suite.journal.EXPECT().Log(gomock.Any()).DoAndReturn(func(entry log.LogEntry) error {
		recorded = entry

		return nil
	}).Times(1)

	signals, err := suite.wrapped.OnData(bar)
	suite.Require().NoError(err)
	suite.Len(signals, 2)

	suite.Equal(bar.Time, recorded.Timestamp)
	suite.Equal("BTC-USDT", recorded.Symbol)
	suite.Equal("mock", recorded.Strategy)
	suite.Equal(types.LogLevelInfo, recorded.Level)
	suite.Equal("long", recorded.Fields["kind"])
	suite.Equal("95", recorded.Fields["stop_loss"])
	suite.Equal("test", recorded.Fields["reason"])

	spans := suite.exporter.GetSpans()
	suite.Require().Len(spans, 1)
	suite.Equal("strategy.OnData", spans[0].Name)
	suite.False(spans[0].Parent.IsValid())
	suite.Require().Len(spans[0].Events, 1)
	suite.Equal("signal", spans[0].Events[0].Name)
}

func (suite *StrategyObsTestSuite) TestSpansNestUnderRunContext() {
	tracer := suite.provider.Tracer("test")
	ctx, runSpan := tracer.Start(context.Background(), "backtest.Run")

	inner := strategy.NewRSI()
	suite.Require().NoError(inner.Initialize("period: 3"))

	wrapped := Wrap(inner, Options{Tracer: tracer, Context: ctx})

	bars := make([]types.Bar, 6)
	for i := range bars {
		bars[i] = bar
		bars[i].Time = bar.Time.Add(time.Duration(i) * time.Hour)
		bars[i].Close = 100 + float64(i%2)
	}

	prepared, err := wrapped.(strategy.DataPreparer).PrepareData(bars)
	suite.Require().NoError(err)

	_, err = wrapped.OnData(prepared[0])
	suite.Require().NoError(err)

	runSpan.End()

	spans := suite.exporter.GetSpans()
	suite.Require().Len(spans, 3)

	for _, span := range spans[:2] {
		suite.Equal(runSpan.SpanContext().TraceID(), span.SpanContext.TraceID())
		suite.Equal(runSpan.SpanContext().SpanID(), span.Parent.SpanID())
	}

	suite.Equal("strategy.PrepareData", spans[0].Name)
	suite.Equal("strategy.OnData", spans[1].Name)
	suite.Equal("backtest.Run", spans[2].Name)
}

func (suite *StrategyObsTestSuite) TestStrategyErrorIsRecorded() {
	suite.inner.EXPECT().OnData(bar).Return(nil, fmt.Errorf("boom"))

	_, err := suite.wrapped.OnData(bar)
	suite.EqualError(err, "boom")

	spans := suite.exporter.GetSpans()
	suite.Require().Len(spans, 1)
	suite.Equal("boom", spans[0].Status.Description)
}

func (suite *StrategyObsTestSuite) TestJournalFailure() {
	suite.inner.EXPECT().OnData(bar).Return([]types.Signal{types.NewExitSignal(100, "")}, nil)
	suite.journal.EXPECT().Log(gomock.Any()).Return(fmt.Errorf("disk full"))

	_, err := suite.wrapped.OnData(bar)
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeResultsWriteFailed, errors.GetCode(err))
}

func (suite *StrategyObsTestSuite) TestPrepareDataForwardsToPreparer() {
	inner := strategy.NewRSI()
	suite.Require().NoError(inner.Initialize("period: 3"))

	wrapped := Wrap(inner, Options{})
	bars := make([]types.Bar, 6)

	for i := range bars {
		bars[i] = bar
		bars[i].Time = bar.Time.Add(time.Duration(i) * time.Hour)
		bars[i].Close = 100 + float64(i%2)
	}

	prepared, err := wrapped.(strategy.DataPreparer).PrepareData(bars)
	suite.Require().NoError(err)
	suite.Len(prepared, 3)
}

func (suite *StrategyObsTestSuite) TestPrepareDataWithoutPreparer() {
	bars := []types.Bar{bar}

	prepared, err := suite.wrapped.(strategy.DataPreparer).PrepareData(bars)
	suite.NoError(err)
	suite.Equal(bars, prepared)
}

func (suite *StrategyObsTestSuite) TestInitializeAndUnwrap() {
	suite.inner.EXPECT().Initialize("").Return(nil)
	suite.NoError(suite.wrapped.Initialize(""))
	suite.Equal("mock", suite.wrapped.Name())
	suite.Equal(suite.inner, suite.wrapped.(interface{ Unwrap() strategy.Strategy }).Unwrap())
}
