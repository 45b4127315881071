package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/orderflow/internal/domain"
	"github.com/kursadbilgin/orderflow/internal/notify"
	"github.com/kursadbilgin/orderflow/internal/observability"
	"github.com/kursadbilgin/orderflow/internal/provider"
	"github.com/kursadbilgin/orderflow/internal/ratelimit"
	"github.com/kursadbilgin/orderflow/internal/repository"
	"github.com/kursadbilgin/orderflow/internal/retry"
	"github.com/kursadbilgin/orderflow/internal/schema"
	"github.com/kursadbilgin/orderflow/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWorkers    = 5
	minWorkerCount    = 1
	reasonPermanent   = "permanent_error"
	reasonExhausted   = "retry_exhausted"
	reasonCanceled    = "canceled"
	reasonRenderError = "render_error"
)

// Dispatcher sends one notification per valid record through a bounded worker pool.
type Dispatcher struct {
	schema      schema.Schema
	renderer    *notify.Renderer
	transport   provider.Transport
	channel     string
	rateLimiter ratelimit.RateLimiter
	attempts    repository.AttemptRepository
	policy      retry.Policy
	workers     int
	logger      *zap.Logger
	metrics     *observability.Metrics
	now         func() time.Time
	wait        func(ctx context.Context, d time.Duration) error
}

// NewDispatcher wires the dispatcher. rateLimiter and attempts are optional.
func NewDispatcher(
	s schema.Schema,
	transport provider.Transport,
	rateLimiter ratelimit.RateLimiter,
	attempts repository.AttemptRepository,
	policy retry.Policy,
	workers int,
	logger *zap.Logger,
) (*Dispatcher, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: transport is required", domain.ErrValidation)
	}
	if s.DestinationField == "" {
		return nil, fmt.Errorf("%w: schema %s has no destination field", domain.ErrValidation, s.Name)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	renderer, err := notify.NewRenderer(s)
	if err != nil {
		return nil, err
	}
	if rateLimiter == nil {
		rateLimiter = ratelimit.Unlimited{}
	}
	if workers < minWorkerCount {
		workers = minWorkerCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		schema:      s,
		renderer:    renderer,
		transport:   transport,
		channel:     provider.Channel(transport),
		rateLimiter: rateLimiter,
		attempts:    attempts,
		policy:      policy,
		workers:     workers,
		logger:      logger,
		now:         time.Now,
		wait:        retry.Wait,
	}, nil
}

func (d *Dispatcher) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

// Dispatch returns exactly one terminal result per input record, in completion order.
// Dispatch failures are reported in the results and never returned.
func (d *Dispatcher) Dispatch(ctx context.Context, records []domain.Record) []domain.DispatchResult {
	if ctx == nil {
		ctx = context.Background()
	}
	runID, _ := observability.RunIDFromContext(ctx)
	ctx = observability.WithRun(ctx, runID, d.schema.Name)
	logger := observability.WithContextLogger(d.logger, ctx)

	results := make([]domain.DispatchResult, 0, len(records))
	tasks := make(chan domain.NotificationTask, len(records))
	for _, rec := range records {
		task, result, ok := d.prepare(rec, logger)
		if !ok {
			results = append(results, result)
			continue
		}
		tasks <- task
	}
	close(tasks)

	pending := len(tasks)
	if pending == 0 {
		return results
	}

	workers := d.workers
	if workers > pending {
		workers = pending
	}

	out := make(chan domain.DispatchResult)
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		workerID := i + 1
		g.Go(func() error {
			for task := range tasks {
				out <- d.deliver(ctx, task, logger.With(zap.Int("workerId", workerID)))
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(out)
	}()

	for result := range out {
		results = append(results, result)
	}

	logger.Info("dispatch completed",
		zap.Int("records", len(records)),
		zap.Int("workers", workers),
	)
	return results
}

// prepare turns a record into a task, or into a terminal result when it cannot be sent.
func (d *Dispatcher) prepare(rec domain.Record, logger *zap.Logger) (domain.NotificationTask, domain.DispatchResult, bool) {
	key := rec.Label()

	destination, present, err := rec.Text(d.schema.DestinationField)
	switch {
	case err != nil:
		return domain.NotificationTask{}, d.skip(key, "", fmt.Errorf("%w: %v", domain.ErrNoDestination, err), logger), false
	case !present:
		return domain.NotificationTask{}, d.skip(key, "", nil, logger), false
	case !validation.IsEmail(destination):
		return domain.NotificationTask{}, d.skip(key, destination, fmt.Errorf("%w: malformed address %q", domain.ErrNoDestination, destination), logger), false
	}

	msg, err := d.renderer.Render(rec)
	if err != nil {
		logger.Error("failed to render notification", zap.String("key", key), zap.Error(err))
		d.metrics.IncNotificationFailed(d.channel, reasonRenderError)
		return domain.NotificationTask{}, domain.DispatchResult{
			Key:         key,
			Destination: destination,
			State:       domain.TaskFailed,
			LastError:   fmt.Sprintf("failed to render notification: %v", err),
			Timestamp:   d.now().UTC(),
		}, false
	}

	return domain.NotificationTask{
		Key:         key,
		Destination: destination,
		Subject:     msg.Subject,
		Body:        msg.Body,
		State:       domain.TaskCreated,
	}, domain.DispatchResult{}, true
}

func (d *Dispatcher) skip(key, destination string, reason error, logger *zap.Logger) domain.DispatchResult {
	result := domain.DispatchResult{
		Key:         key,
		Destination: destination,
		State:       domain.TaskSkipped,
		Timestamp:   d.now().UTC(),
	}
	if reason != nil {
		result.LastError = reason.Error()
	}

	d.metrics.IncNotificationSkipped(d.channel)
	logger.Info("notification skipped", zap.String("key", key), zap.String("reason", result.LastError))
	return result
}

// deliver attempts the task until it is sent, fails permanently, runs out of
// attempts or ctx is done.
func (d *Dispatcher) deliver(ctx context.Context, task domain.NotificationTask, logger *zap.Logger) domain.DispatchResult {
	d.metrics.IncWorkerInFlight(d.channel)
	defer d.metrics.DecWorkerInFlight(d.channel)

	start := d.now()
	maxAttempts := d.policy.Attempts()
	task.State = domain.TaskAttempting

	var (
		lastErr error
		reason  = reasonExhausted
	)
	for task.Attempts < maxAttempts {
		if err := ctx.Err(); err != nil {
			lastErr, reason = stopped(err, lastErr), reasonCanceled
			break
		}
		if err := d.rateLimiter.Wait(ctx, d.channel); err != nil {
			if ctx.Err() != nil {
				lastErr, reason = stopped(ctx.Err(), lastErr), reasonCanceled
				break
			}
			logger.Warn("rate limiter unavailable, sending without limit", zap.Error(err))
		}

		task.Attempts++
		sendStart := d.now()
		err := d.transport.Send(ctx, task.Destination, task.Subject, task.Body)
		sendElapsed := d.now().Sub(sendStart)
		d.metrics.ObserveNotificationSendDuration(d.channel, sendElapsed)
		d.recordAttempt(ctx, task, sendElapsed, err, logger)

		if err == nil {
			task.State = domain.TaskSent
			d.metrics.IncNotificationSent(d.channel)
			return d.result(task, start, nil)
		}

		lastErr = err
		if !d.policy.Retryable(err) {
			reason = reasonPermanent
			if ctx.Err() != nil {
				reason = reasonCanceled
			}
			break
		}
		if task.Attempts >= maxAttempts {
			break
		}

		delay := d.policy.Delay(task.Attempts)
		d.metrics.IncRetryScheduled(d.channel)
		logger.Debug("send failed, retrying",
			zap.String("key", task.Key),
			zap.Int("attempt", task.Attempts),
			zap.Duration("delay", delay),
			zap.Bool("transient", provider.IsTransient(err)),
			zap.Error(err),
		)
		if werr := d.wait(ctx, delay); werr != nil {
			lastErr, reason = stopped(werr, lastErr), reasonCanceled
			break
		}
	}

	task.State = domain.TaskFailed
	d.metrics.IncNotificationFailed(d.channel, reason)
	logger.Warn("notification failed",
		zap.String("key", task.Key),
		zap.Int("attempts", task.Attempts),
		zap.String("reason", reason),
		zap.Bool("transient", provider.IsTransient(lastErr)),
		zap.Error(lastErr),
	)
	return d.result(task, start, lastErr)
}

func (d *Dispatcher) result(task domain.NotificationTask, start time.Time, lastErr error) domain.DispatchResult {
	result := domain.DispatchResult{
		Key:         task.Key,
		Destination: task.Destination,
		State:       task.State,
		Attempts:    task.Attempts,
		Elapsed:     d.now().Sub(start),
		Timestamp:   d.now().UTC(),
	}
	if lastErr != nil {
		result.LastError = lastErr.Error()
	}
	return result
}

// stopped keeps the context error first so callers can match it, with the last send error as detail.
func stopped(ctxErr, sendErr error) error {
	if sendErr == nil || errors.Is(sendErr, ctxErr) {
		return ctxErr
	}
	return fmt.Errorf("%w after send error: %v", ctxErr, sendErr)
}

func (d *Dispatcher) recordAttempt(ctx context.Context, task domain.NotificationTask, elapsed time.Duration, sendErr error, logger *zap.Logger) {
	if d.attempts == nil {
		return
	}

	runID, _ := observability.RunIDFromContext(ctx)
	attempt := &domain.SendAttempt{
		ID:            uuid.NewString(),
		RunID:         runID,
		Key:           task.Key,
		Destination:   task.Destination,
		AttemptNumber: task.Attempts,
		Duration:      elapsed,
		CreatedAt:     d.now().UTC(),
	}
	if sendErr != nil {
		value := strings.TrimSpace(sendErr.Error())
		attempt.Error = &value
		if code := provider.StatusCode(sendErr); code > 0 {
			attempt.StatusCode = &code
		}
	}

	// The attempt is history; it is kept even when the run is being cancelled.
	if err := d.attempts.Create(context.WithoutCancel(ctx), attempt); err != nil {
		logger.Warn("failed to record send attempt",
			zap.String("key", task.Key),
			zap.Int("attempt", task.Attempts),
			zap.Error(err),
		)
	}
}
