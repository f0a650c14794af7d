// Package testutil holds the in-memory database and fakes shared by the
// repo, service and HTTP tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/payment"
)

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	// every pooled connection would otherwise see its own empty database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

type Event struct {
	Topic string
	Key   string
	Body  map[string]any
}

// Publisher records events instead of sending them to Kafka.
type Publisher struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

func (p *Publisher) Publish(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	body, _ := event.(map[string]any)
	p.Events = append(p.Events, Event{Topic: topic, Key: key, Body: body})
	return nil
}

func (p *Publisher) Close() error { return nil }

// Types returns the recorded event types in order.
func (p *Publisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		out = append(out, fmt.Sprint(e.Body["type"]))
	}
	return out
}

// Stripe is an in-memory StripeGateway. Sessions created through it are
// unpaid until MarkPaid is called.
type Stripe struct {
	mu       sync.Mutex
	Sessions map[string]*payment.StripeSession
	Created  []payment.StripeCheckoutParams
	Events   map[string]*payment.StripeEvent
	Err      error
	next     int
}

func NewStripe() *Stripe {
	return &Stripe{
		Sessions: map[string]*payment.StripeSession{},
		Events:   map[string]*payment.StripeEvent{},
	}
}

func (s *Stripe) CreateCheckoutSession(_ context.Context, p payment.StripeCheckoutParams) (*payment.StripeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.next++
	id := fmt.Sprintf("cs_test_%d", s.next)
	md := make(map[string]string, len(p.Metadata))
	for k, v := range p.Metadata {
		md[k] = v
	}
	sess := &payment.StripeSession{
		ID:            id,
		URL:           "https://checkout.stripe.test/" + id,
		Status:        "open",
		PaymentStatus: "unpaid",
		AmountTotal:   p.UnitAmount * p.Quantity,
		Currency:      p.Currency,
		Metadata:      md,
		CustomerEmail: p.CustomerEmail,
	}
	s.Sessions[id] = sess
	s.Created = append(s.Created, p)
	return sess, nil
}

func (s *Stripe) GetCheckoutSession(_ context.Context, id string) (*payment.StripeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.Sessions[id]
	if !ok {
		return nil, &payment.ProviderError{Provider: "stripe", StatusCode: 404, Message: "No such checkout.session: " + id}
	}
	cp := *sess
	return &cp, nil
}

// ParseWebhook treats the payload as an event id registered in Events;
// the signature must be "valid".
func (s *Stripe) ParseWebhook(payload []byte, signature string) (*payment.StripeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if signature != "valid" {
		return nil, fmt.Errorf("signature mismatch")
	}
	ev, ok := s.Events[string(payload)]
	if !ok {
		return nil, fmt.Errorf("unknown event %s", payload)
	}
	return ev, nil
}

func (s *Stripe) MarkPaid(id string, amountTotal int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.Sessions[id]
	sess.PaymentStatus = payment.StripePaymentStatusPaid
	sess.Status = "complete"
	if amountTotal > 0 {
		sess.AmountTotal = amountTotal
	}
}

// PayPal is an in-memory PayPalGateway.
type PayPal struct {
	mu      sync.Mutex
	Orders  map[string]*payment.PayPalOrder
	Created []payment.PayPalOrderParams
	Err     error
	next    int
}

func NewPayPal() *PayPal {
	return &PayPal{Orders: map[string]*payment.PayPalOrder{}}
}

func (p *PayPal) CreateOrder(_ context.Context, params payment.PayPalOrderParams) (*payment.PayPalOrder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	p.next++
	id := fmt.Sprintf("PAYPAL-%d", p.next)
	o := &payment.PayPalOrder{
		ID:         id,
		Status:     "CREATED",
		Amount:     params.Amount,
		Currency:   params.Currency,
		ApproveURL: "https://paypal.test/approve/" + id,
	}
	p.Orders[id] = o
	p.Created = append(p.Created, params)
	cp := *o
	return &cp, nil
}

func (p *PayPal) GetOrder(_ context.Context, id string) (*payment.PayPalOrder, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	o, ok := p.Orders[id]
	if !ok {
		return nil, &payment.ProviderError{Provider: "paypal", StatusCode: 404, Message: "The specified resource does not exist."}
	}
	cp := *o
	return &cp, nil
}

// SetStatus changes what PayPal reports for an order, e.g. after approval.
func (p *PayPal) SetStatus(id, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Orders[id].Status = status
}

func (p *PayPal) SetAmount(id string, amount string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Orders[id].Amount = Dec(amount)
}

// Dec is shorthand for decimal literals in tests.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
