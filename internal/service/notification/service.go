package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/sse"
	"github.com/google/uuid"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 2 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo   notification.Repository
	hub    *sse.Hub
	config Config
	logger *slog.Logger
	now    func() time.Time

	queue    chan notification.Event
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService starts the background workers that persist queued
// events to the outbox and push them to live streams.
func NewNotificationService(repo notification.Repository, hub *sse.Hub, logger *slog.Logger, cfg Config) notification.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &service{
		repo:   repo,
		hub:    hub,
		config: cfg,
		logger: logger.With("component", "notification"),
		now:    time.Now,
		queue:  make(chan notification.Event, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.logger.Info("notification workers started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)

	return s
}

func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.Event, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.deliver(ctx, batch); err != nil {
			s.logger.Error("failed to persist notification batch", "worker", id, "size", len(batch), "error", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case ev := <-s.queue:
			batch = append(batch, ev)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			for {
				select {
				case ev := <-s.queue:
					batch = append(batch, ev)
				default:
					flush()
					return
				}
			}
		}
	}
}

// deliver persists events then streams them. Streams only see events that
// made it into the outbox.
func (s *service) deliver(ctx context.Context, events []notification.Event) error {
	if err := s.repo.CreateBatch(ctx, events); err != nil {
		return err
	}
	for _, ev := range events {
		s.hub.Publish(sse.Event{
			RecipientID: ev.RecipientID,
			Name:        string(ev.Type),
			Data:        toResponse(ev),
		})
	}
	return nil
}

func (s *service) Queue(ctx context.Context, req notification.CreateEventRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	select {
	case <-s.stopCh:
		return notification.ErrServiceStopped
	default:
	}

	ev := notification.Event{
		ID:          uuid.Must(uuid.NewV7()).String(),
		RecipientID: req.RecipientID,
		ActorID:     req.ActorID,
		Type:        req.Type,
		SubjectID:   req.SubjectID,
		Title:       req.Title,
		Message:     req.Message,
		Data:        req.Data,
		CreatedAt:   s.now().UTC(),
	}

	select {
	case s.queue <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// queue full, write through
		return s.deliver(ctx, []notification.Event{ev})
	}
}

// QueueMany queues every request; failures are logged, never returned, so a
// notification problem cannot fail the transition that emitted it.
func (s *service) QueueMany(ctx context.Context, reqs []notification.CreateEventRequest) {
	for _, req := range reqs {
		if err := s.Queue(ctx, req); err != nil {
			s.logger.Warn("failed to queue notification",
				"type", req.Type, "recipient_id", req.RecipientID, "subject_id", req.SubjectID, "error", err)
		}
	}
}

func (s *service) Recent(ctx context.Context, recipientID string, limit int) ([]notification.EventResponse, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	events, err := s.repo.ListByRecipient(ctx, recipientID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]notification.EventResponse, len(events))
	for i, ev := range events {
		out[i] = toResponse(ev)
	}
	return out, nil
}

func (s *service) Subscribe(ctx context.Context, recipientID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(recipientID)

	out := make(chan notification.SSEEvent, 10)
	go func() {
		defer close(out)
		for {
			select {
			case ev, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := ev.Data.(notification.EventResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: ev.Name, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop drains the queue and waits for the workers.
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		s.logger.Info("notification workers stopped")
	})
}

func toResponse(ev notification.Event) notification.EventResponse {
	return notification.EventResponse{
		ID:        ev.ID,
		Type:      ev.Type,
		SubjectID: ev.SubjectID,
		ActorID:   ev.ActorID,
		Title:     ev.Title,
		Message:   ev.Message,
		Data:      ev.Data,
		CreatedAt: ev.CreatedAt,
	}
}
