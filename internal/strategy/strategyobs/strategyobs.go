// Package strategyobs decorates a strategy with logging, tracing and a
// signal journal so that strategies themselves stay free of debug output.
package strategyobs

import (
	"context"
	"strconv"

	"github.com/rxtech-lab/okx-backtest/internal/log"
	"github.com/rxtech-lab/okx-backtest/internal/logger"
	"github.com/rxtech-lab/okx-backtest/internal/strategy"
	internaltrace "github.com/rxtech-lab/okx-backtest/internal/trace"
	"github.com/rxtech-lab/okx-backtest/internal/types"
	"github.com/rxtech-lab/okx-backtest/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Options struct {
	Logger *logger.Logger
	// Journal receives one entry per non-hold signal. Optional.
	Journal log.Log
	// Tracer defaults to the global tracer.
	Tracer trace.Tracer
	// Context parents every span started by the decorator, usually the
	// context carrying the run span. Defaults to context.Background().
	Context context.Context
}

type observed struct {
	inner   strategy.Strategy
	logger  *logger.Logger
	journal log.Log
	tracer  trace.Tracer
	ctx     context.Context
}

// Wrap returns a strategy that behaves like inner and reports every call.
func Wrap(inner strategy.Strategy, options Options) strategy.Strategy {
	o := &observed{
		inner:   inner,
		logger:  options.Logger,
		journal: options.Journal,
		tracer:  options.Tracer,
		ctx:     options.Context,
	}

	if o.logger == nil {
		o.logger = logger.NewNopLogger()
	}

	if o.tracer == nil {
		o.tracer = internaltrace.Tracer()
	}

	if o.ctx == nil {
		o.ctx = context.Background()
	}

	return o
}

func (o *observed) Name() string {
	return o.inner.Name()
}

func (o *observed) Initialize(config string) error {
	return o.inner.Initialize(config)
}

func (o *observed) PrepareData(bars []types.Bar) ([]types.Bar, error) {
	preparer, ok := o.inner.(strategy.DataPreparer)
	if !ok {
		return bars, nil
	}

	_, span := o.tracer.Start(o.ctx, "strategy.PrepareData", trace.WithAttributes(
		attribute.String("strategy", o.inner.Name()),
		attribute.Int("bars.in", len(bars)),
	))
	defer span.End()

	prepared, err := preparer.PrepareData(bars)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(attribute.Int("bars.out", len(prepared)))
	o.logger.Debug("Prepared data",
		zap.String("strategy", o.inner.Name()),
		zap.Int("bars_in", len(bars)),
		zap.Int("bars_out", len(prepared)),
	)

	return prepared, nil
}

func (o *observed) OnData(bar types.Bar) ([]types.Signal, error) {
	_, span := o.tracer.Start(o.ctx, "strategy.OnData", trace.WithAttributes(
		attribute.String("strategy", o.inner.Name()),
		attribute.String("symbol", bar.Symbol),
		attribute.String("bar.time", bar.Time.UTC().Format("2006-01-02T15:04:05Z")),
		attribute.Float64("bar.close", bar.Close),
	))
	defer span.End()

	signals, err := o.inner.OnData(bar)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.logger.Error("Strategy failed",
			zap.String("strategy", o.inner.Name()),
			zap.Time("time", bar.Time),
			zap.Error(err),
		)

		return nil, err
	}

	for _, signal := range signals {
		if signal.Kind == types.SignalKindHold {
			continue
		}

		span.AddEvent("signal", trace.WithAttributes(
			attribute.String("kind", string(signal.Kind)),
			attribute.Float64("price", signal.Price),
		))
		o.logger.Debug("Signal",
			zap.String("strategy", o.inner.Name()),
			zap.String("symbol", bar.Symbol),
			zap.Time("time", bar.Time),
			zap.String("signal", signal.String()),
			zap.String("reason", signal.Reason),
		)

		if err := o.record(bar, signal); err != nil {
			span.RecordError(err)

			return nil, err
		}
	}

	return signals, nil
}

func (o *observed) record(bar types.Bar, signal types.Signal) error {
	if o.journal == nil {
		return nil
	}

	err := o.journal.Log(log.LogEntry{
		Timestamp: bar.Time,
		Symbol:    bar.Symbol,
		Strategy:  o.inner.Name(),
		Level:     types.LogLevelInfo,
		Message:   signal.String(),
		Fields: map[string]string{
			"kind":        string(signal.Kind),
			"price":       strconv.FormatFloat(signal.Price, 'f', -1, 64),
			"stop_loss":   strconv.FormatFloat(signal.StopLoss, 'f', -1, 64),
			"take_profit": strconv.FormatFloat(signal.TakeProfit, 'f', -1, 64),
			"reason":      signal.Reason,
		},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeResultsWriteFailed, "failed to record signal", err)
	}

	return nil
}

// Unwrap returns the observed strategy.
func (o *observed) Unwrap() strategy.Strategy {
	return o.inner
}
