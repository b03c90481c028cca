package qpu

import (
	"context"
	"fmt"
	"time"

	"github.com/oqtopus-team/oqtopus-engine/progcheck/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const meterName = "github.com/oqtopus-team/oqtopus-engine/progcheck/qpu"

// GuardedQPU wraps a backend with a run rate limit, a per-run timeout and run
// metrics. Limits are read from the configuration at Setup.
// The timeout only bounds how long Run waits. A run that times out keeps going
// on the backend, and later runs on a backend that serializes its runs wait
// behind it.
type GuardedQPU struct {
	core.Backend

	limiter  *rate.Limiter
	timeout  time.Duration
	runs     metric.Int64Counter
	failures metric.Int64Counter
	duration metric.Float64Histogram
}

func NewGuardedQPU(b core.Backend) *GuardedQPU {
	g := &GuardedQPU{Backend: b}
	meter := otel.Meter(meterName)
	var err error
	if g.runs, err = meter.Int64Counter("progcheck.backend.runs",
		metric.WithDescription("number of backend runs")); err != nil {
		zap.L().Warn(fmt.Sprintf("failed to create a counter/reason:%s", err))
	}
	if g.failures, err = meter.Int64Counter("progcheck.backend.failures",
		metric.WithDescription("number of failed backend runs")); err != nil {
		zap.L().Warn(fmt.Sprintf("failed to create a counter/reason:%s", err))
	}
	if g.duration, err = meter.Float64Histogram("progcheck.backend.run.duration",
		metric.WithDescription("duration of a backend run"), metric.WithUnit("s")); err != nil {
		zap.L().Warn(fmt.Sprintf("failed to create a histogram/reason:%s", err))
	}
	return g
}

func (g *GuardedQPU) Setup(conf *core.Conf) error {
	if err := g.Backend.Setup(conf); err != nil {
		return err
	}
	if conf.RateLimit > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(conf.RateLimit), 1)
	} else {
		g.limiter = nil
	}
	g.timeout = time.Duration(conf.RunTimeout) * time.Millisecond
	zap.L().Debug(fmt.Sprintf("guarding %s/rate:%v/timeout:%s", g.Backend.Name(), conf.RateLimit, g.timeout))
	return nil
}

type runResult struct {
	counts core.Counts
	err    error
}

func (g *GuardedQPU) Run(p *core.Program, shots int) (core.Counts, error) {
	ctx := context.Background()
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	attrs := metric.WithAttributes(attribute.String("backend", g.Backend.Name()))

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			g.record(ctx, attrs, 0, err)
			return nil, fmt.Errorf("rate limit wait aborted: %w", err)
		}
	}

	start := time.Now()
	done := make(chan runResult, 1)
	go func() {
		c, err := g.Backend.Run(p, shots)
		done <- runResult{c, err}
	}()
	select {
	case r := <-done:
		g.record(ctx, attrs, time.Since(start), r.err)
		return r.counts, r.err
	case <-ctx.Done():
		err := fmt.Errorf("run on %s timed out after %s", g.Backend.Name(), g.timeout)
		g.record(context.Background(), attrs, time.Since(start), err)
		return nil, err
	}
}

func (g *GuardedQPU) record(ctx context.Context, attrs metric.MeasurementOption, d time.Duration, err error) {
	if g.runs != nil {
		g.runs.Add(ctx, 1, attrs)
	}
	if err != nil && g.failures != nil {
		g.failures.Add(ctx, 1, attrs)
	}
	if d > 0 && g.duration != nil {
		g.duration.Record(ctx, d.Seconds(), attrs)
	}
}
