package refresh

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sig-0/iq"

	"github.com/sig-0/poerates/storage"
	"github.com/sig-0/poerates/storage/types"
)

var errInvalidInterval = errors.New("invalid interval")

// Refresher runs a single refresh cycle
type Refresher interface {
	Refresh(ctx context.Context, session *Session) (*types.Snapshot, error)
}

// scheduledRefresh is a single scheduled refresh cycle
type scheduledRefresh struct {
	at     time.Time
	manual bool // on-demand refreshes don't reschedule
}

// Less is utilized to sort scheduled refreshes by their due-time (earliest == first)
func (a scheduledRefresh) Less(b scheduledRefresh) bool {
	return a.at.Before(b.at)
}

// Scheduler runs periodic and on-demand refreshes, one at a time
type Scheduler struct {
	refresher Refresher
	storage   storage.Storage
	session   *Session

	logger     *slog.Logger
	onSnapshot func(*types.Snapshot)

	q    iq.Queue[scheduledRefresh]
	qMux sync.Mutex

	interval      time.Duration
	queryInterval time.Duration

	manualPending atomic.Bool

	status    types.RefreshStatus
	statusMux sync.RWMutex
}

// NewScheduler creates a new Scheduler instance.
// The first periodic refresh is due immediately
func NewScheduler(
	refresher Refresher,
	storage storage.Storage,
	interval time.Duration,
	opts ...SchedulerOption,
) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errInvalidInterval
	}

	s := &Scheduler{
		refresher:     refresher,
		storage:       storage,
		session:       NewSession(),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		onSnapshot:    func(*types.Snapshot) {},
		q:             iq.NewQueue[scheduledRefresh](),
		interval:      interval,
		queryInterval: time.Second,
	}

	// Apply the options
	for _, opt := range opts {
		opt(s)
	}

	s.scheduleRefresh(time.Now().UTC(), false)

	return s, nil
}

// Trigger queues an on-demand refresh.
// Returns false if one is already pending
func (s *Scheduler) Trigger() bool {
	if !s.manualPending.CompareAndSwap(false, true) {
		return false
	}

	s.scheduleRefresh(time.Now().UTC(), true)

	s.logger.Info("on-demand refresh queued")

	return true
}

// Start starts the refresh service loop [BLOCKING].
// Refreshes run on the loop routine, so they never overlap
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.queryInterval)
	defer ticker.Stop()

	// handleRefresh runs all refreshes that are due
	handleRefresh := func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
				next := s.nextRefresh()
				if next == nil {
					return // nothing is due
				}

				s.run(ctx, next)
			}
		}
	}

	// Run the first refresh on boot
	handleRefresh()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler service shut down")

			return nil
		case <-ticker.C:
			handleRefresh()
		}
	}
}

// run executes a single refresh, and schedules the next periodic one
func (s *Scheduler) run(ctx context.Context, sr *scheduledRefresh) {
	if sr.manual {
		s.manualPending.Store(false)
	} else {
		defer s.scheduleRefresh(time.Now().UTC().Add(s.interval), false)
	}

	s.logger.Info(
		"running refresh",
		"manual", sr.manual,
	)

	snapshot, err := s.refresher.Refresh(ctx, s.session)
	if err != nil {
		// No retries, the next periodic refresh goes as planned
		s.logger.Error(
			"refresh failed",
			"err", err,
		)

		s.recordFailure(err)

		return
	}

	s.recordSuccess()

	saveCtx, cancelFn := context.WithTimeout(ctx, time.Second*10)
	defer cancelFn()

	if err = s.storage.SaveSnapshot(saveCtx, snapshot); err != nil {
		s.logger.Error(
			"unable to save snapshot",
			"id", snapshot.ID,
			"market", snapshot.Market,
			"err", err,
		)
	}

	s.onSnapshot(snapshot)
}

// Status returns the outcome of the latest refreshes
func (s *Scheduler) Status() types.RefreshStatus {
	s.statusMux.RLock()
	defer s.statusMux.RUnlock()

	return s.status
}

func (s *Scheduler) recordFailure(err error) {
	now := time.Now().UTC()

	s.statusMux.Lock()
	defer s.statusMux.Unlock()

	s.status.LastFailureAt = &now
	s.status.LastError = err.Error()
	s.status.Failing = true
}

func (s *Scheduler) recordSuccess() {
	now := time.Now().UTC()

	s.statusMux.Lock()
	defer s.statusMux.Unlock()

	s.status.LastSuccessAt = &now
	s.status.Failing = false
}

// scheduleRefresh schedules a new refresh
func (s *Scheduler) scheduleRefresh(at time.Time, manual bool) {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	s.q.Push(scheduledRefresh{
		at:     at,
		manual: manual,
	})
}

// nextRefresh fetches the next due refresh, as of the moment of calling
func (s *Scheduler) nextRefresh() *scheduledRefresh {
	s.qMux.Lock()
	defer s.qMux.Unlock()

	now := time.Now().UTC()

	if s.q.Len() == 0 {
		return nil
	}

	// Check if the top element is due
	if s.q.Index(0).at.After(now) {
		return nil
	}

	return s.q.PopFront()
}
