package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eventflow/backend/internal/metrics"
	"github.com/eventflow/backend/internal/models"
	"github.com/eventflow/backend/pkg/queue"
)

// ParticipantFinder resolves an entry token to its participant.
type ParticipantFinder interface {
	FindByToken(ctx context.Context, token string) (*models.Participant, error)
}

// PassArchiver stores a rendered entry pass and returns its location.
type PassArchiver interface {
	Archive(ctx context.Context, p *models.Participant) (string, error)
}

// JobQueue is the part of the Redis queue the worker consumes.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// PassProcessor processes entry pass delivery jobs: resolve the participant, render the pass, upload to S3.
type PassProcessor struct {
	participants ParticipantFinder
	archiver     PassArchiver
	queue        JobQueue
	logger       *zap.Logger
	backoff      time.Duration
}

// NewPassProcessor creates an entry pass delivery processor.
func NewPassProcessor(participants ParticipantFinder, archiver PassArchiver, q JobQueue, logger *zap.Logger) *PassProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PassProcessor{participants: participants, archiver: archiver, queue: q, logger: logger, backoff: queue.RetryBackoff}
}

// Process executes one pass delivery job. Jobs for participants that no longer exist are dropped.
func (p *PassProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypePassDelivery {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.PassDeliveryPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	participant, err := p.participants.FindByToken(ctx, payload.EntryUUID)
	if errors.Is(err, models.ErrInvalidToken) || (err == nil && participant.ID != payload.ParticipantID) {
		p.logger.Info("participant gone, dropping pass job", zap.String("job_id", job.ID), zap.String("participant_id", payload.ParticipantID.String()))
		metrics.PassJobs.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return nil
	}
	if err != nil {
		return fmt.Errorf("find participant: %w", err)
	}

	url, err := p.archiver.Archive(ctx, participant)
	if err != nil {
		return err
	}
	metrics.PassJobs.WithLabelValues(metrics.OutcomeOK).Inc()
	p.logger.Info("entry pass archived", zap.String("participant_id", participant.ID.String()), zap.String("url", url))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *PassProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pass worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			metrics.PassJobs.WithLabelValues(metrics.OutcomeError).Inc()
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *PassProcessor) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(p.backoff):
	}
}
