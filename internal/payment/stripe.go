package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
)

const (
	StripePaymentStatusPaid = "paid"

	EventCheckoutCompleted     = "checkout.session.completed"
	EventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

type StripeCheckoutParams struct {
	IdempotencyKey string
	ProductName    string
	Description    string
	UnitAmount     int64
	Quantity       int64
	Currency       string
	CustomerEmail  string
	SuccessURL     string
	CancelURL      string
	Metadata       map[string]string
}

type StripeSession struct {
	ID              string
	URL             string
	Status          string
	PaymentStatus   string
	AmountTotal     int64
	Currency        string
	Metadata        map[string]string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
}

func (s *StripeSession) Paid() bool {
	return s.PaymentStatus == StripePaymentStatusPaid
}

type StripeEvent struct {
	ID      string
	Type    string
	Session *StripeSession
}

type StripeGateway interface {
	CreateCheckoutSession(ctx context.Context, p StripeCheckoutParams) (*StripeSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*StripeSession, error)
	ParseWebhook(payload []byte, signature string) (*StripeEvent, error)
}

type StripeClient struct {
	sessions      *session.Client
	webhookSecret string
}

func NewStripeClient(secretKey, webhookSecret string) *StripeClient {
	return NewStripeClientWithBackend(stripe.GetBackend(stripe.APIBackend), secretKey, webhookSecret)
}

func NewStripeClientWithBackend(b stripe.Backend, secretKey, webhookSecret string) *StripeClient {
	return &StripeClient{
		sessions:      &session.Client{B: b, Key: secretKey},
		webhookSecret: webhookSecret,
	}
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, p StripeCheckoutParams) (*StripeSession, error) {
	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(p.ProductName),
	}
	if p.Description != "" {
		productData.Description = stripe.String(p.Description)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
		ClientReferenceID: stripe.String(p.IdempotencyKey),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(strings.ToLower(p.Currency)),
					UnitAmount:  stripe.Int64(p.UnitAmount),
					ProductData: productData,
				},
				Quantity: stripe.Int64(p.Quantity),
			},
		},
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}
	params.Context = ctx

	s, err := c.sessions.New(params)
	if err != nil {
		return nil, stripeError(err)
	}
	return fromStripeSession(s), nil
}

func (c *StripeClient) GetCheckoutSession(ctx context.Context, id string) (*StripeSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := c.sessions.Get(id, params)
	if err != nil {
		return nil, stripeError(err)
	}
	return fromStripeSession(s), nil
}

func (c *StripeClient) ParseWebhook(payload []byte, signature string) (*StripeEvent, error) {
	if c.webhookSecret == "" {
		return nil, fmt.Errorf("stripe webhook: %w", ErrNotConfigured)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("stripe webhook: %w", err)
	}

	out := &StripeEvent{ID: event.ID, Type: string(event.Type)}
	switch out.Type {
	case EventCheckoutCompleted, EventAsyncPaymentSucceeded:
		if event.Data == nil {
			return nil, errors.New("stripe webhook: event without data")
		}
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("stripe webhook: decode session: %w", err)
		}
		out.Session = fromStripeSession(&s)
	}
	return out, nil
}

func fromStripeSession(s *stripe.CheckoutSession) *StripeSession {
	out := &StripeSession{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Metadata:      s.Metadata,
	}
	if cd := s.CustomerDetails; cd != nil {
		out.CustomerName = cd.Name
		out.CustomerEmail = cd.Email
		out.CustomerPhone = cd.Phone
		if a := cd.Address; a != nil {
			out.CustomerAddress = joinNonEmpty(", ", a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country)
		}
	}
	return out
}

func stripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		msg := se.Msg
		if msg == "" {
			msg = err.Error()
		}
		return &ProviderError{Provider: "stripe", StatusCode: se.HTTPStatusCode, Message: msg, Err: err}
	}
	return &ProviderError{Provider: "stripe", Message: err.Error(), Err: err}
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
