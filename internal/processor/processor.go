// Package processor runs the background ingestion of uploaded resumes.
package processor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"resume-matcher/internal/document"
	"resume-matcher/internal/events"
	"resume-matcher/internal/logger"
	"resume-matcher/internal/metrics"
	"resume-matcher/internal/models"
	"resume-matcher/internal/objectstore"
	"resume-matcher/internal/resume"
)

const (
	DefaultInterval      = 10 * time.Second
	DefaultRecordTimeout = 5 * time.Minute
	DefaultStaleAfter    = 30 * time.Minute

	staleReason   = "processing timed out"
	maxReasonSize = 500
)

type UploadStore interface {
	PendingUploads(ctx context.Context) ([]models.UploadRecord, error)
	ClaimUpload(ctx context.Context, id uuid.UUID) (bool, error)
	FailUpload(ctx context.Context, id uuid.UUID, reason string) error
	FailStaleUploads(ctx context.Context, cutoff time.Time, reason string) (int64, error)
	CompleteUpload(ctx context.Context, upload *models.UploadRecord, parsed *models.ParsedResume, embedding []float32) (*models.ResumeRecord, error)
}

type Preparer interface {
	Prepare(ctx context.Context, src document.Source) (*resume.Prepared, error)
}

// Lease keeps two worker instances from polling at the same time.
type Lease interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type Publisher interface {
	Publish(ctx context.Context, change events.StatusChange) error
}

// PollResult summarizes one pass over the backlog.
type PollResult struct {
	Skipped   bool
	Pending   int
	Parsed    int
	Failed    int
	Recovered int64
}

type Worker struct {
	store    UploadStore
	files    objectstore.FileStorer
	preparer Preparer

	lease       Lease
	publisher   Publisher
	logger      *zap.Logger
	now         func() time.Time
	interval    time.Duration
	timeout     time.Duration
	staleAfter  time.Duration
	concurrency int

	scheduler *gocron.Scheduler
	cancel    context.CancelFunc
	running   sync.WaitGroup
}

type Option func(*Worker)

func WithLease(l Lease) Option { return func(w *Worker) { w.lease = l } }

func WithPublisher(p Publisher) Option { return func(w *Worker) { w.publisher = p } }

func WithLogger(l *zap.Logger) Option { return func(w *Worker) { w.logger = logger.OrNop(l) } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(w *Worker) { w.now = now } }

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithRecordTimeout(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.timeout = d
		}
	}
}

func WithStaleAfter(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.staleAfter = d
		}
	}
}

func WithConcurrency(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

func NewWorker(store UploadStore, files objectstore.FileStorer, preparer Preparer, opts ...Option) *Worker {
	w := &Worker{
		store:       store,
		files:       files,
		preparer:    preparer,
		logger:      zap.NewNop(),
		now:         time.Now,
		interval:    DefaultInterval,
		timeout:     DefaultRecordTimeout,
		staleAfter:  DefaultStaleAfter,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start polls every interval until Stop. A pass that overruns the interval
// delays the next one instead of overlapping it.
func (w *Worker) Start(ctx context.Context) error {
	if w.scheduler != nil {
		return fmt.Errorf("worker already started")
	}

	ctx, cancel := context.WithCancel(ctx)

	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(w.interval).SingletonMode().Do(func() {
		w.running.Add(1)
		defer w.running.Done()

		if ctx.Err() != nil {
			return
		}
		if _, err := w.PollOnce(ctx); err != nil {
			w.logger.Error("ingestion poll failed", zap.Error(err))
		}
	})
	if err != nil {
		cancel()
		return fmt.Errorf("schedule ingestion poll: %w", err)
	}

	w.scheduler = s
	w.cancel = cancel
	s.StartAsync()

	w.logger.Info("ingestion worker started",
		zap.Duration("interval", w.interval),
		zap.Int("concurrency", w.concurrency),
	)
	return nil
}

// Stop cancels in-flight work and waits for the current pass to finish.
func (w *Worker) Stop() {
	if w.scheduler == nil {
		return
	}
	w.cancel()
	w.scheduler.Stop()
	w.running.Wait()
	w.scheduler = nil

	w.logger.Info("ingestion worker stopped")
}

// RecoverStale fails uploads stuck in processing for longer than the stale
// timeout. They never go back to pending.
func (w *Worker) RecoverStale(ctx context.Context) (int64, error) {
	cutoff := w.now().Add(-w.staleAfter)

	n, err := w.store.FailStaleUploads(ctx, cutoff, staleReason)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		w.logger.Warn("failed stale uploads", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
	metrics.StaleRecovered(n)
	return n, nil
}

// PollOnce processes a snapshot of the pending backlog. Failures of single
// uploads are recorded on the upload and never abort the pass.
func (w *Worker) PollOnce(ctx context.Context) (PollResult, error) {
	var result PollResult

	if w.lease != nil {
		ok, err := w.lease.Acquire(ctx)
		if err != nil {
			return result, err
		}
		if !ok {
			w.logger.Debug("ingestion lease held elsewhere, skipping poll")
			result.Skipped = true
			return result, nil
		}
		defer func() {
			if err := w.lease.Release(context.WithoutCancel(ctx)); err != nil {
				w.logger.Warn("failed to release ingestion lease", zap.Error(err))
			}
		}()
	}

	recovered, err := w.RecoverStale(ctx)
	if err != nil {
		return result, err
	}
	result.Recovered = recovered

	pending, err := w.store.PendingUploads(ctx)
	if err != nil {
		return result, err
	}
	result.Pending = len(pending)

	if len(pending) == 0 {
		w.logger.Debug("no pending uploads")
		return result, nil
	}

	var parsed, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(w.concurrency)
	for i := range pending {
		upload := pending[i]
		g.Go(func() error {
			switch w.process(ctx, &upload) {
			case models.StatusParsed:
				parsed.Add(1)
			case models.StatusFailed:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Parsed = int(parsed.Load())
	result.Failed = int(failed.Load())

	w.logger.Info("ingestion pass finished",
		zap.Int("pending", result.Pending),
		zap.Int("parsed", result.Parsed),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// process drives one upload to a terminal status and returns it. StatusPending
// means the upload was not claimed.
func (w *Worker) process(ctx context.Context, upload *models.UploadRecord) models.Status {
	log := w.logger.With(logger.UploadFields(upload.ID, upload.OwnerID)...)

	claimed, err := w.store.ClaimUpload(ctx, upload.ID)
	if err != nil {
		log.Error("failed to claim upload", zap.Error(err))
		return models.StatusPending
	}
	if !claimed {
		log.Debug("upload already claimed")
		return models.StatusPending
	}
	upload.Status = models.StatusProcessing
	log.Info("upload processing")
	w.publish(ctx, upload, nil, "")

	done := metrics.IngestionStarted()

	rctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	src := document.FromStorage(w.files, upload.StorageKey, upload.Filename, upload.ContentType)

	prepared, err := w.preparer.Prepare(rctx, src)
	if err != nil {
		w.fail(ctx, log, upload, err)
		done(models.StatusFailed.String())
		return models.StatusFailed
	}

	rec, err := w.store.CompleteUpload(rctx, upload, prepared.Parsed, prepared.Embedding)
	if err != nil {
		w.fail(ctx, log, upload, err)
		done(models.StatusFailed.String())
		return models.StatusFailed
	}
	upload.Status = models.StatusParsed
	upload.ResumeID = &rec.ID

	log.Info("upload parsed", zap.Int64(logger.FieldResumeID, rec.ID))
	done(models.StatusParsed.String())

	// the row no longer points at the object, so a failed delete only leaks storage
	if err := w.files.Delete(context.WithoutCancel(ctx), upload.StorageKey); err != nil {
		log.Warn("failed to delete parsed upload from storage", zap.Error(err))
	}

	w.publish(ctx, upload, upload.ResumeID, "")
	return models.StatusParsed
}

func (w *Worker) fail(ctx context.Context, log *zap.Logger, upload *models.UploadRecord, cause error) {
	reason := logger.TruncateForLog(cause.Error(), maxReasonSize)
	log.Error("upload failed", zap.Error(cause))

	// terminal writes must survive shutdown and record timeouts
	if err := w.store.FailUpload(context.WithoutCancel(ctx), upload.ID, reason); err != nil {
		log.Error("failed to mark upload failed", zap.Error(err))
		return
	}
	upload.Status = models.StatusFailed
	upload.ErrorMessage = &reason
	w.publish(ctx, upload, nil, reason)
}

func (w *Worker) publish(ctx context.Context, upload *models.UploadRecord, resumeID *int64, reason string) {
	if w.publisher == nil {
		return
	}

	change := events.StatusChange{
		UploadID: upload.ID,
		OwnerID:  upload.OwnerID,
		Status:   upload.Status.String(),
		ResumeID: resumeID,
		Error:    reason,
		At:       w.now().UTC(),
	}
	if err := w.publisher.Publish(context.WithoutCancel(ctx), change); err != nil {
		w.logger.Warn("failed to publish upload status",
			append(logger.UploadFields(upload.ID, upload.OwnerID), zap.Error(err))...)
	}
}
