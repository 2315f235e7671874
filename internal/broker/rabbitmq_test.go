package broker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"salesdesk_backend/internal/events"
	"salesdesk_backend/platform/logger"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	declared   []string
	published  []published
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisherDeclaresTopicExchange(t *testing.T) {
	ch := &fakeChannel{}
	if _, err := NewPublisher(ch, "ex.salesdesk", logger.Nop()); err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if len(ch.declared) != 1 || ch.declared[0] != "ex.salesdesk:topic" {
		t.Fatalf("unexpected declarations %v", ch.declared)
	}
}

func TestSubscribeForwardsEventsByName(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewPublisher(ch, "ex.salesdesk", logger.Nop())
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	bus := events.NewInMemoryBus(logger.Nop())
	p.Subscribe(bus)

	leadID := uuid.New()
	event := events.LeadConverted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		DealTitle: "Acme-W001",
	}
	if err := bus.PublishSync(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(ch.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ch.published))
	}
	got := ch.published[0]
	if got.exchange != "ex.salesdesk" || got.key != events.NameLeadConverted {
		t.Fatalf("unexpected routing %s/%s", got.exchange, got.key)
	}
	if got.msg.DeliveryMode != amqp.Persistent || got.msg.ContentType != "application/json" {
		t.Fatalf("unexpected publishing %+v", got.msg)
	}

	var body events.LeadConverted
	if err := json.Unmarshal(got.msg.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.LeadID != leadID || body.DealTitle != "Acme-W001" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestSubscribeReturnsPublishErrors(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := NewPublisher(ch, "ex.salesdesk", logger.Nop())
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	bus := events.NewInMemoryBus(logger.Nop())
	p.Subscribe(bus)

	err = bus.PublishSync(context.Background(), events.IdentifiersReconciled{BaseEvent: events.NewBaseEvent(), Strategy: "title"})
	if err == nil {
		t.Fatal("expected publish error")
	}
}

func TestCloseWithoutConnection(t *testing.T) {
	ch := &fakeChannel{}
	p, _ := NewPublisher(ch, "ex", logger.Nop())
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !ch.closed {
		t.Fatal("expected channel closed")
	}
}
