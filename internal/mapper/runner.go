package mapper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"seasonmap/internal/logging"
	"seasonmap/internal/results"
)

const defaultProgressEvery = 10

// ItemProcessor is implemented by Mapper.
type ItemProcessor interface {
	ProcessItem(ctx context.Context, item Item) (*results.Record, error)
}

// CheckpointFunc persists the records gathered so far.
type CheckpointFunc func(records []results.Record) error

// Summary describes a finished (or interrupted) run.
type Summary struct {
	RunID       string
	Pending     int
	Attempted   int
	Resumed     int
	Matched     int
	Unresolved  int
	NoMapping   int
	NoStartDate int
	Duplicates  int
	Interrupted bool
}

// Recorded is the number of new records produced by the run.
func (s Summary) Recorded() int {
	return s.Matched + s.Unresolved
}

// Runner processes items one at a time.
type Runner struct {
	processor     ItemProcessor
	pace          rate.Limit
	limiter       *rate.Limiter
	logger        *slog.Logger
	progressEvery int
	checkpoint    CheckpointFunc
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithCheckpoint saves accumulated records whenever progress is reported.
func WithCheckpoint(fn CheckpointFunc) RunnerOption {
	return func(r *Runner) {
		r.checkpoint = fn
	}
}

// WithProgressEvery changes how often progress is logged.
func WithProgressEvery(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.progressEvery = n
		}
	}
}

// NewRunner creates a Runner that leaves at least itemDelay between the end
// of one item and the start of the next.
func NewRunner(processor ItemProcessor, itemDelay time.Duration, logger *slog.Logger, opts ...RunnerOption) *Runner {
	limit := rate.Inf
	if itemDelay > 0 {
		limit = rate.Every(itemDelay)
	}
	r := &Runner{
		processor:     processor,
		pace:          limit,
		limiter:       rate.NewLimiter(limit, 1),
		logger:        logging.NewComponentLogger(logger, "runner"),
		progressEvery: defaultProgressEvery,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes items not already present in prior and returns prior plus
// the new records. Cancelling ctx stops the run after the current wait or
// request; the interrupted item is discarded and everything before it is
// returned.
func (r *Runner) Run(ctx context.Context, items []Item, prior []results.Record) ([]results.Record, Summary) {
	summary := Summary{RunID: uuid.NewString()}
	logger := r.logger.With(logging.String(logging.FieldRunID, summary.RunID))

	records := append([]results.Record(nil), prior...)
	processed := results.ProcessedIDs(prior)
	queued := make(map[int64]struct{}, len(items))
	pending := make([]Item, 0, len(items))
	for _, item := range items {
		if _, done := processed[item.AniListID]; done {
			summary.Resumed++
			continue
		}
		if _, dup := queued[item.AniListID]; dup {
			summary.Duplicates++
			continue
		}
		queued[item.AniListID] = struct{}{}
		pending = append(pending, item)
	}
	summary.Pending = len(pending)
	if summary.Duplicates > 0 {
		logger.Info("ignoring repeated ids in input", logging.Int("duplicates", summary.Duplicates))
	}

	if len(pending) == 0 {
		logger.Info("no new items to process", logging.Int("resumed", summary.Resumed))
		return records, summary
	}
	logger.Info("starting run",
		logging.Int("pending", summary.Pending),
		logging.Int("resumed", summary.Resumed))

	for index, item := range pending {
		if index > 0 && index%r.progressEvery == 0 {
			r.reportProgress(logger, index, summary, records)
		}

		if err := r.limiter.Wait(ctx); err != nil {
			summary.Interrupted = true
			break
		}

		record, err := r.processor.ProcessItem(ctx, item)
		r.rest()
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}
		summary.Attempted++
		switch {
		case errors.Is(err, ErrNoMapping):
			summary.NoMapping++
		case errors.Is(err, ErrNoStartDate):
			summary.NoStartDate++
		case err != nil:
			logging.ErrorWithContext(logger, "item failed", "item_failed",
				logging.Int64(logging.FieldAniListID, item.AniListID),
				logging.Error(err))
		case record != nil:
			records = append(records, *record)
			if record.Matched() {
				summary.Matched++
			} else {
				summary.Unresolved++
			}
		}
	}

	if summary.Interrupted {
		logging.WarnWithContext(logger, "run interrupted", "run_interrupted",
			logging.Int("attempted", summary.Attempted),
			logging.Int("pending", summary.Pending),
			logging.String(logging.FieldErrorHint, "rerun to resume from the saved results"),
			logging.String(logging.FieldImpact, "remaining items were not processed"))
	}
	logger.Info("run complete",
		logging.Int("attempted", summary.Attempted),
		logging.Int("matched", summary.Matched),
		logging.Int("unresolved", summary.Unresolved),
		logging.Int("no_mapping", summary.NoMapping),
		logging.Int("no_start_date", summary.NoStartDate),
		logging.Int("total_records", len(records)))
	return records, summary
}

// rest starts a full quiet period from now, so the next Wait blocks for
// itemDelay however long the finished item took.
func (r *Runner) rest() {
	r.limiter = rate.NewLimiter(r.pace, 1)
	r.limiter.Allow()
}

func (r *Runner) reportProgress(logger *slog.Logger, index int, summary Summary, records []results.Record) {
	pct := float64(summary.Recorded()) / float64(index) * 100
	logger.Info("progress",
		logging.String(logging.FieldEventType, "run_progress"),
		logging.Int("done", index),
		logging.Int("pending", summary.Pending),
		logging.Int("matched", summary.Matched),
		logging.Float64("record_rate_percent", pct))
	if r.checkpoint == nil {
		return
	}
	if err := r.checkpoint(records); err != nil {
		logging.WarnWithContext(logger, "checkpoint failed", "checkpoint_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "an interruption may lose unsaved records"))
	}
}
