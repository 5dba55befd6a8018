package preview

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/previewkit/core/pagestate"
	"github.com/jask/previewkit/internal/logging"
	"github.com/jask/previewkit/internal/telemetry"
)

// DefaultAwaitTimeout bounds how long a scenario waits for its page to render.
const DefaultAwaitTimeout = 5 * time.Second

// Runner brackets preview runs with registry resets.
type Runner struct {
	Registry     *pagestate.Registry
	Logger       *zap.Logger
	Metrics      telemetry.Recorder
	AwaitTimeout time.Duration
}

func NewRunner(reg *pagestate.Registry, logger *zap.Logger, metrics telemetry.Recorder) *Runner {
	if metrics == nil {
		metrics = telemetry.Noop{}
	}
	return &Runner{
		Registry:     reg,
		Logger:       logging.OrNop(logger),
		Metrics:      metrics,
		AwaitTimeout: DefaultAwaitTimeout,
	}
}

// Run resets key's entry, calls fn, and resets the entry again whether fn
// returns an error, succeeds or panics. fn's error is returned as is.
func (r *Runner) Run(ctx context.Context, key pagestate.Key, fn func(context.Context) error) (err error) {
	logger := logging.OrNop(r.Logger).With(
		zap.String("run_id", uuid.NewString()),
		zap.String("page", string(key)),
	)
	start := time.Now()

	r.Registry.ResetEntry(key)
	defer func() {
		r.Registry.ResetEntry(key)
		rec := recover()
		if rec != nil {
			err = fmt.Errorf("preview: setup panicked: %v", rec)
		}
		elapsed := time.Since(start)
		if r.Metrics != nil {
			r.Metrics.RecordRun(ctx, string(key), elapsed, err)
		}
		if err != nil {
			logger.Warn("preview run failed", zap.Duration("duration", elapsed), zap.Error(err))
		} else {
			logger.Info("preview run completed", zap.Duration("duration", elapsed))
		}
		if rec != nil {
			panic(rec)
		}
	}()

	logger.Info("preview run starting")
	return fn(ctx)
}

// RunScenario runs s against nav inside Run.
func (r *Runner) RunScenario(ctx context.Context, s Scenario, nav Navigator) error {
	return r.Run(ctx, s.Key(), func(ctx context.Context) error {
		return s.Execute(ctx, Env{Nav: nav, Registry: r.Registry, AwaitTimeout: r.awaitTimeout()})
	})
}

func (r *Runner) awaitTimeout() time.Duration {
	if r.AwaitTimeout <= 0 {
		return DefaultAwaitTimeout
	}
	return r.AwaitTimeout
}
