package conviction

import (
	"context"
	"sync/atomic"
	"time"

	"agora-node/lib/logger"
	"agora-node/modules/aggregate"
	"agora-node/modules/common/params"
	"agora-node/modules/config"
	"agora-node/modules/db/agora/activity"
	membersDb "agora-node/modules/db/agora/members"
	"agora-node/modules/db/agora/proposals"
	"agora-node/modules/db/agora/votes"
	"agora-node/modules/metrics"

	"github.com/chebyrash/promise"
	"github.com/robfig/cron/v3"
)

type EngineConfig struct {
	// Cron spec for the sweep cadence, e.g. "@every 15m".
	SweepSchedule string
}

func NewEngineConfig() *config.Config[EngineConfig] {
	return config.New(EngineConfig{
		SweepSchedule: params.DEFAULT_SWEEP_INTERVAL,
	})
}

// Engine owns the recurring sweep: one tick advances decay for every active
// vote, re-aggregates proposal conviction, then runs the threshold evaluator.
// It starts with the node and stops with it; nothing here is ambient state.
type Engine struct {
	log     logger.Logger
	conf    *config.Config[EngineConfig]
	metrics *metrics.Metrics

	controller *Controller
	sweeper    *Sweeper
	evaluator  *Evaluator

	cron    *cron.Cron
	stop    chan struct{}
	ticking atomic.Bool
}

var _ aggregate.Plugin = &Engine{}

func New(
	log logger.Logger,
	conf *config.Config[EngineConfig],
	members membersDb.Members,
	proposalsDb proposals.Proposals,
	votesDb votes.Votes,
	activityDb activity.Activity,
	m *metrics.Metrics,
) *Engine {
	return &Engine{
		log:        log,
		conf:       conf,
		metrics:    m,
		controller: NewController(log, members, proposalsDb, votesDb, activityDb, m),
		sweeper:    NewSweeper(log, proposalsDb, votesDb, m),
		evaluator:  NewEvaluator(log, members, proposalsDb, activityDb, m),
		cron:       cron.New(),
		stop:       make(chan struct{}),
	}
}

// Controller exposes the cast/withdraw surface to the request layer.
func (e *Engine) Controller() *Controller {
	return e.controller
}

// SetClock points every worker at the same time source. Tests only.
func (e *Engine) SetClock(clock func() time.Time) {
	e.controller.Clock = clock
	e.sweeper.Clock = clock
	e.evaluator.Clock = clock
}

func (e *Engine) Init() error {
	return nil
}

func (e *Engine) Start() *promise.Promise[any] {
	return promise.New(func(resolve func(any), reject func(error)) {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-e.stop
			cancel()
		}()

		// run one tick immediately so a restarted node catches up on decay
		go e.Tick(ctx)

		_, err := e.cron.AddFunc(e.conf.Get().SweepSchedule, func() {
			select {
			case <-e.stop:
				return
			default:
				go e.Tick(ctx)
			}
		})
		if err != nil {
			reject(err)
			return
		}
		e.cron.Start()
		resolve(nil)
	})
}

func (e *Engine) Stop() error {
	select {
	case <-e.stop:
		// already stopped
	default:
		close(e.stop)
	}
	e.cron.Stop()
	return nil
}

// Tick runs one sweep + evaluation pass. A tick arriving while the previous
// one is still running is skipped, never queued: overlapping sweeps would
// double-apply decay to records processed by both.
func (e *Engine) Tick(ctx context.Context) {
	if !e.ticking.CompareAndSwap(false, true) {
		e.metrics.SweepsSkipped.Inc()
		e.log.Debug("previous sweep still running, skipping tick")
		return
	}
	defer e.ticking.Store(false)

	started := time.Now()
	if err := e.sweeper.RunSweep(ctx); err != nil {
		// Datastore hiccup: leave everything as-is, next tick retries.
		e.log.Error("sweep failed", err)
		return
	}
	if err := e.evaluator.Evaluate(ctx); err != nil {
		e.log.Error("threshold evaluation failed", err)
		return
	}
	e.metrics.SweepDuration.Observe(time.Since(started).Seconds())
}
