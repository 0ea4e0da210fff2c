package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"socialwave/internal/queue"
)

const (
	// DefaultWorkerCount is the number of concurrent consumers in the pool.
	DefaultWorkerCount = 2

	// readCount is the max messages fetched per XREADGROUP call.
	readCount = 10

	// readBlock is how long a worker blocks waiting for new messages.
	readBlock = 5 * time.Second
)

// Manager runs a pool of workers consuming timeline events from the stream
// and applying them to the cache.
type Manager struct {
	consumer queue.Consumer
	handler  *EventHandler

	workerCount int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a worker Manager.
func NewManager(consumer queue.Consumer, handler *EventHandler, workerCount int) *Manager {
	if workerCount <= 0 {
		workerCount = DefaultWorkerCount
	}
	return &Manager{
		consumer:    consumer,
		handler:     handler,
		workerCount: workerCount,
	}
}

// Start ensures the consumer group exists and launches the worker goroutines.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.consumer.EnsureGroup(ctx, queue.StreamTimeline, queue.ConsumerGroupTimeline); err != nil {
		return fmt.Errorf("ensure consumer group: %w", err)
	}

	if pending, err := m.consumer.Pending(ctx, queue.StreamTimeline, queue.ConsumerGroupTimeline); err == nil && pending > 0 {
		log.Printf("[Worker] %d messages pending from a previous run", pending)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	for i := 0; i < m.workerCount; i++ {
		m.wg.Add(1)
		go m.runWorker(workerCtx, fmt.Sprintf("worker-%d", i))
	}

	log.Printf("[Worker] started %d workers on stream=%s group=%s",
		m.workerCount, queue.StreamTimeline, queue.ConsumerGroupTimeline)
	return nil
}

// Stop signals all workers to exit and waits for them to finish.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	log.Printf("[Worker] all workers stopped")
}

func (m *Manager) runWorker(ctx context.Context, name string) {
	defer m.wg.Done()

	// Recover messages left in flight by a previous run before taking new ones.
	m.drainPending(ctx, name)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		messages, err := m.consumer.Read(ctx, queue.StreamTimeline, queue.ConsumerGroupTimeline, name, readCount, readBlock)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[Worker] %s read error: %v", name, err)
			time.Sleep(time.Second)
			continue
		}

		for _, msg := range messages {
			if err := m.handler.Handle(ctx, msg.Event); err != nil {
				// Leave the message pending; the next startup drain retries it.
				log.Printf("[Worker] %s handle error: msgID=%s err=%v", name, msg.ID, err)
				continue
			}

			if err := m.consumer.Ack(ctx, queue.StreamTimeline, queue.ConsumerGroupTimeline, msg.ID); err != nil {
				log.Printf("[Worker] %s ack error: msgID=%s err=%v", name, msg.ID, err)
			}
		}
	}
}

// drainPending retries this consumer's unacknowledged messages. Messages that
// fail again are acked anyway; without that the drain loop would re-read the
// same message forever.
func (m *Manager) drainPending(ctx context.Context, name string) {
	for {
		if ctx.Err() != nil {
			return
		}

		messages, err := m.consumer.ReadPending(ctx, queue.StreamTimeline, queue.ConsumerGroupTimeline, name, readCount)
		if err != nil {
			log.Printf("[Worker] %s read pending error: %v", name, err)
			return
		}
		if len(messages) == 0 {
			return
		}

		log.Printf("[Worker] %s retrying %d pending messages", name, len(messages))
		for _, msg := range messages {
			if err := m.handler.Handle(ctx, msg.Event); err != nil {
				log.Printf("[Worker] %s pending handle error, dropping: msgID=%s err=%v", name, msg.ID, err)
			}
			if err := m.consumer.Ack(ctx, queue.StreamTimeline, queue.ConsumerGroupTimeline, msg.ID); err != nil {
				log.Printf("[Worker] %s ack error: msgID=%s err=%v", name, msg.ID, err)
			}
		}
	}
}
