package events

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	// maxBatch caps how many queued events go into one WriteMessages call.
	maxBatch = 100
	// writeTimeout bounds one batch write, retries included.
	writeTimeout = 10 * time.Second
	// flushTimeout bounds how long Close waits for the queue to drain.
	flushTimeout = 15 * time.Second
)

// Producer publishes catalog events to Kafka from a single background
// goroutine. Publish never waits on the broker.
type Producer struct {
	w            messageWriter
	inbox        chan kafka.Message
	closeCh      chan struct{}
	flushTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchSize:    maxBatch,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: writeTimeout,
	}, buf)
}

func newProducer(w messageWriter, buf int) *Producer {
	return &Producer{
		w:            w,
		inbox:        make(chan kafka.Message, buf),
		closeCh:      make(chan struct{}),
		flushTimeout: flushTimeout,
	}
}

func (p *Producer) Start() {
	go func() {
		defer close(p.closeCh)
		batch := make([]kafka.Message, 0, maxBatch)
		for m := range p.inbox {
			batch = append(batch[:0], m)
			batch = p.fill(batch)
			p.write(batch)
		}
		if err := p.w.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close kafka writer")
		}
	}()
}

// fill appends whatever is already queued, up to maxBatch, without waiting.
func (p *Producer) fill(batch []kafka.Message) []kafka.Message {
	for len(batch) < maxBatch {
		select {
		case m, ok := <-p.inbox:
			if !ok {
				return batch
			}
			batch = append(batch, m)
		default:
			return batch
		}
	}
	return batch
}

func (p *Producer) write(batch []kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := p.w.WriteMessages(ctx, batch...); err != nil {
		logrus.WithError(err).WithField("events", len(batch)).Error("Failed to publish catalog events")
	}
}

// Publish queues e keyed by its document id, so events for one document keep
// their order. When the queue is full, or the producer is closed, the event
// is dropped and logged.
func (p *Producer) Publish(_ context.Context, e Event) {
	value, err := e.Marshal()
	if err != nil {
		logrus.WithError(err).Error("Failed to encode catalog event")
		return
	}
	msg := kafka.Message{
		Key:   []byte(e.DocumentID),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(e.Type)},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		logrus.WithField("type", e.Type).Warn("Catalog event dropped: producer closed")
		return
	}
	select {
	case p.inbox <- msg:
	default:
		logrus.WithField("type", e.Type).Warn("Catalog event dropped: queue full")
	}
}

// Close stops accepting events and waits for the queue to flush, giving up
// after the flush timeout. Calling it twice is safe.
func (p *Producer) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.inbox)
	}
	p.mu.Unlock()

	select {
	case <-p.closeCh:
	case <-time.After(p.flushTimeout):
		logrus.WithField("pending", len(p.inbox)).Warn("Gave up flushing catalog events")
	}
}
