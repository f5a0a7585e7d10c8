package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Freeeeeet/coach_scheduler/internal/service"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrQueueFull событие отброшено, очередь переполнена
var ErrQueueFull = errors.New("notify: queue is full")

// ErrClosed событие отброшено, очередь уже закрыта
var ErrClosed = errors.New("notify: publisher is closed")

const (
	defaultQueueSize   = 256
	defaultSendTimeout = 5 * time.Second
)

type queued struct {
	event service.SlotEvent
	span  trace.SpanContext
}

// Async доставляет события в фоне, чтобы внешние системы не задерживали запрос.
// Порядок событий сохраняется: их разбирает одна горутина.
type Async struct {
	next    service.EventPublisher
	queue   chan queued
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewAsync(next service.EventPublisher, queueSize int, logger *zap.Logger) *Async {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	a := &Async{
		next:    next,
		queue:   make(chan queued, queueSize),
		timeout: defaultSendTimeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Publish ставит событие в очередь и не ждёт доставки
func (a *Async) Publish(ctx context.Context, event service.SlotEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- queued{event: event, span: trace.SpanContextFromContext(ctx)}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close перестаёт принимать события и дожидается доставки очереди или отмены ctx.
// Publish после Close возвращает ErrClosed.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) run() {
	defer close(a.done)
	for item := range a.queue {
		a.deliver(item)
	}
}

func (a *Async) deliver(item queued) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if item.span.IsValid() {
		ctx = trace.ContextWithSpanContext(ctx, item.span)
	}

	if err := a.next.Publish(ctx, item.event); err != nil {
		a.logger.Warn("Event delivery failed",
			zap.String("type", string(item.event.Type)),
			zap.Error(err),
		)
	}
}
