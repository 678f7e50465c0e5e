package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	stdSync "sync"

	"github.com/google/uuid"

	syncErrors "github.com/mkellner/contactsync/errors"
	"github.com/mkellner/contactsync/logging"
)

// defaultQueueDepth bounds how many batches can wait for the worker.
const defaultQueueDepth = 64

// CalloutClient is the network collaborator the runner drives, one record at
// a time.
type CalloutClient interface {
	Fetch(ctx context.Context, externalID string) error
	Push(ctx context.Context, contactID uuid.UUID) error
}

// Runner executes submitted batches on a single worker goroutine, outside
// the mutation path that produced them. Within a batch, records are
// processed strictly sequentially; a record's failure is logged and the
// batch continues. There is no ordering guarantee between distinct batches
// and no cancellation once a batch is submitted.
type Runner struct {
	client CalloutClient
	jobs   chan Batch
	logger *slog.Logger

	mu     stdSync.Mutex
	closed bool
	wg     stdSync.WaitGroup
}

// RunnerOption configures a Runner
type RunnerOption func(*runnerConfig)

type runnerConfig struct {
	queueDepth int
	logger     *slog.Logger
}

// WithQueueDepth sets the batch queue capacity
func WithQueueDepth(depth int) RunnerOption {
	return func(c *runnerConfig) {
		c.queueDepth = depth
	}
}

// WithRunnerLogger sets a custom logger
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(c *runnerConfig) {
		c.logger = logger
	}
}

// NewRunner creates a runner and starts its worker goroutine.
func NewRunner(client CalloutClient, opts ...RunnerOption) *Runner {
	config := &runnerConfig{
		queueDepth: defaultQueueDepth,
		logger:     logging.Default().Logger,
	}
	for _, opt := range opts {
		opt(config)
	}

	r := &Runner{
		client: client,
		jobs:   make(chan Batch, config.queueDepth),
		logger: config.logger,
	}

	r.wg.Add(1)
	go r.run()

	return r
}

// Submit enqueues a batch for deferred execution. It never blocks: a full
// queue or a closed runner is reported as an error instead.
func (r *Runner) Submit(batch Batch) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return syncErrors.New(syncErrors.OpSubmit, fmt.Errorf("runner is closed"))
	}
	r.mu.Unlock()

	select {
	case r.jobs <- batch:
		r.logger.Debug("Batch submitted",
			slog.String("intent", string(batch.Intent)),
			slog.Int("records", len(batch.Records)))
		return nil
	default:
		return syncErrors.New(syncErrors.OpSubmit,
			fmt.Errorf("job queue full (%d batches pending)", cap(r.jobs)))
	}
}

// Close stops accepting batches, drains the queue, and waits for the worker
// to finish.
func (r *Runner) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.jobs)
	r.mu.Unlock()

	r.wg.Wait()
	return nil
}

func (r *Runner) run() {
	defer r.wg.Done()

	for batch := range r.jobs {
		r.process(batch)
	}
}

// process iterates one batch sequentially, invoking the callout client once
// per record. All four failure classes are recoverable here: the error is
// logged and the batch moves on to the next record.
func (r *Runner) process(batch Batch) {
	ctx := context.Background()
	r.logger.Info("Processing batch",
		slog.String("intent", string(batch.Intent)),
		slog.Int("records", len(batch.Records)))

	var failed int
	for _, record := range batch.Records {
		var err error
		switch batch.Intent {
		case IntentFetch:
			err = r.client.Fetch(ctx, record.ExternalID)
		case IntentPush:
			err = r.client.Push(ctx, record.ContactID)
		default:
			r.logger.Warn("Skipping batch with unknown intent",
				slog.String("intent", string(batch.Intent)))
			return
		}

		if err != nil {
			failed++
			r.logger.Error("Record callout failed, continuing batch",
				slog.String("intent", string(batch.Intent)),
				slog.String("contact_id", record.ContactID.String()),
				slog.String("external_id", record.ExternalID),
				slog.String("code", string(syncErrors.CodeOf(err))),
				slog.String("error", err.Error()))
		}
	}

	r.logger.Info("Batch completed",
		slog.String("intent", string(batch.Intent)),
		slog.Int("records", len(batch.Records)),
		slog.Int("failed", failed))
}
