package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

const (
	exchangeKind = "topic"

	reconnectBackoff = time.Second
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// MetricsRecorder счетчик неудачных публикаций
type MetricsRecorder interface {
	ObservePublishFailure()
}

// Options настройки publisher
type Options struct {
	URL            string
	Exchange       string
	BufferSize     int
	DialTimeout    time.Duration
	PublishTimeout time.Duration
}

// broker открытое подключение к брокеру
type broker interface {
	Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error
	Close() error
}

type dialFunc func(opts Options) (broker, error)

type message struct {
	key     string
	payload amqp.Publishing
	event   Event
}

// Publisher публикует события бронирований в RabbitMQ в фоне.
// Publish только кладет сообщения в буфер и не ждет брокера; отправкой и переподключением
// занимается одна горутина. При переполнении буфера события отбрасываются.
type Publisher struct {
	opts    Options
	dial    dialFunc
	metrics MetricsRecorder
	log     Logger

	mu     sync.RWMutex
	closed bool
	queue  chan message
	done   chan struct{}

	// broker и nextDial используются только горутиной run
	broker   broker
	nextDial time.Time
	now      func() time.Time
}

// NewPublisher создает publisher и запускает фоновую отправку.
// Подключение к брокеру происходит при первом событии.
func NewPublisher(opts Options, metrics MetricsRecorder, log Logger) *Publisher {
	return newPublisher(opts, dialAMQP, metrics, log)
}

func newPublisher(opts Options, dial dialFunc, metrics MetricsRecorder, log Logger) *Publisher {
	p := &Publisher{
		opts:    opts,
		dial:    dial,
		metrics: metrics,
		log:     log,
		queue:   make(chan message, opts.BufferSize),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go p.run()
	return p
}

// Publish ставит в очередь по одному persistent-сообщению на каждую запись таймлайна.
// Не блокируется: если буфер заполнен, возвращает ErrQueueFull.
func (p *Publisher) Publish(_ context.Context, res *domain.Reservation, entries []domain.TimelineEntry) error {
	events, err := NewEvents(res, entries)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}

	messages := make([]message, 0, len(events))
	for _, event := range events {
		body, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEncode, err)
		}
		messages = append(messages, message{
			key:   event.RoutingKey(),
			event: event,
			payload: amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    event.ID,
				Timestamp:    event.OccurredAt,
				Type:         event.Type,
				Body:         body,
			},
		})
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	for i, msg := range messages {
		select {
		case p.queue <- msg:
		default:
			return fmt.Errorf("%w: dropped %d of %d events of reservation id=%d",
				ErrQueueFull, len(messages)-i, len(messages), res.ID)
		}
	}

	return nil
}

// Close перестает принимать события, дожидается отправки буфера и закрывает соединение
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done

	if p.broker == nil {
		return nil
	}
	err := p.broker.Close()
	p.broker = nil
	return err
}

func (p *Publisher) run() {
	defer close(p.done)

	for msg := range p.queue {
		if err := p.send(msg); err != nil {
			p.metrics.ObservePublishFailure()
			p.log.Error("EventBus: %v", err)
		}
	}
}

func (p *Publisher) send(msg message) error {
	if err := p.ensureBroker(); err != nil {
		return fmt.Errorf("event=%s reservation=%d: %w", msg.event.Type, msg.event.ReservationID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.opts.PublishTimeout)
	defer cancel()

	if err := p.broker.Publish(ctx, p.opts.Exchange, msg.key, msg.payload); err != nil {
		p.resetBroker()
		return fmt.Errorf("%w: event=%s reservation=%d: %v", ErrPublish, msg.event.Type, msg.event.ReservationID, err)
	}

	p.log.Info("EventBus: published %s for reservation id=%d", msg.event.Type, msg.event.ReservationID)
	return nil
}

// ensureBroker подключается к брокеру; после неудачи следующая попытка не раньше reconnectBackoff
func (p *Publisher) ensureBroker() error {
	if p.broker != nil {
		return nil
	}
	if p.now().Before(p.nextDial) {
		return fmt.Errorf("%w: broker unavailable, next attempt at %s", ErrConnect, p.nextDial.Format(time.RFC3339))
	}

	b, err := p.dial(p.opts)
	if err != nil {
		p.nextDial = p.now().Add(reconnectBackoff)
		return fmt.Errorf("%w: %v", ErrConnect, err)
	}

	p.broker = b
	p.log.Info("EventBus: connected, exchange=%s", p.opts.Exchange)
	return nil
}

func (p *Publisher) resetBroker() {
	if p.broker != nil {
		_ = p.broker.Close()
	}
	p.broker = nil
}

// amqpBroker соединение и канал amqp091
type amqpBroker struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// dialAMQP открывает соединение с таймаутом на TCP и AMQP-рукопожатие и объявляет exchange
func dialAMQP(opts Options) (broker, error) {
	conn, err := amqp.DialConfig(opts.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(opts.DialTimeout),
	})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(opts.Exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", opts.Exchange, err)
	}

	return &amqpBroker{conn: conn, channel: ch}, nil
}

func (b *amqpBroker) Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	if b.channel.IsClosed() {
		return amqp.ErrClosed
	}
	return b.channel.PublishWithContext(ctx, exchange, key, false, false, msg)
}

func (b *amqpBroker) Close() error {
	return b.conn.Close()
}
