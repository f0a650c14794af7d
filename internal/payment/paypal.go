package payment

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
)

const (
	PayPalStatusCompleted = "COMPLETED"
	PayPalStatusApproved  = "APPROVED"
)

type PayPalOrderParams struct {
	ReferenceID string
	CustomID    string
	Description string
	Amount      decimal.Decimal
	Currency    string
	ReturnURL   string
	CancelURL   string
}

type PayPalOrder struct {
	ID         string
	Status     string
	Amount     decimal.Decimal
	Currency   string
	PayerName  string
	PayerEmail string
	ApproveURL string
}

type PayPalGateway interface {
	CreateOrder(ctx context.Context, p PayPalOrderParams) (*PayPalOrder, error)
	GetOrder(ctx context.Context, id string) (*PayPalOrder, error)
}

type PayPalClient struct {
	mu sync.Mutex
	c  *paypal.Client
}

func NewPayPalClient(clientID, secret, mode string) (*PayPalClient, error) {
	base := paypal.APIBaseSandBox
	if mode == "live" {
		base = paypal.APIBaseLive
	}
	return NewPayPalClientWithBase(clientID, secret, base)
}

func NewPayPalClientWithBase(clientID, secret, apiBase string) (*PayPalClient, error) {
	c, err := paypal.NewClient(clientID, secret, apiBase)
	if err != nil {
		return nil, err
	}
	return &PayPalClient{c: c}, nil
}

// ensureToken fetches the first access token; the SDK refreshes it afterwards.
func (p *PayPalClient) ensureToken(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.c.Token != nil {
		return nil
	}
	if _, err := p.c.GetAccessToken(ctx); err != nil {
		return paypalError(err)
	}
	return nil
}

func (p *PayPalClient) CreateOrder(ctx context.Context, params PayPalOrderParams) (*PayPalOrder, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	units := []paypal.PurchaseUnitRequest{
		{
			ReferenceID: params.ReferenceID,
			CustomID:    params.CustomID,
			Description: params.Description,
			Amount: &paypal.PurchaseUnitAmount{
				Currency: strings.ToUpper(params.Currency),
				Value:    params.Amount.StringFixed(2),
			},
		},
	}
	appCtx := &paypal.ApplicationContext{
		ReturnURL: params.ReturnURL,
		CancelURL: params.CancelURL,
	}

	order, err := p.c.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, appCtx)
	if err != nil {
		return nil, paypalError(err)
	}
	return fromPayPalOrder(order)
}

func (p *PayPalClient) GetOrder(ctx context.Context, id string) (*PayPalOrder, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	order, err := p.c.GetOrder(ctx, id)
	if err != nil {
		return nil, paypalError(err)
	}
	return fromPayPalOrder(order)
}

func fromPayPalOrder(o *paypal.Order) (*PayPalOrder, error) {
	out := &PayPalOrder{ID: o.ID, Status: o.Status, Amount: decimal.Zero}

	for _, u := range o.PurchaseUnits {
		if u.Amount == nil || u.Amount.Value == "" {
			continue
		}
		v, err := decimal.NewFromString(u.Amount.Value)
		if err != nil {
			return nil, &ProviderError{Provider: "paypal", Message: "malformed amount " + u.Amount.Value, Err: err}
		}
		out.Amount = out.Amount.Add(v)
		out.Currency = u.Amount.Currency
	}

	if o.Payer != nil {
		out.PayerEmail = o.Payer.EmailAddress
		if n := o.Payer.Name; n != nil {
			out.PayerName = strings.TrimSpace(n.GivenName + " " + n.Surname)
		}
	}
	for _, l := range o.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			out.ApproveURL = l.Href
		}
	}
	return out, nil
}

func paypalError(err error) error {
	var pe *paypal.ErrorResponse
	if errors.As(err, &pe) {
		status := 0
		if pe.Response != nil {
			status = pe.Response.StatusCode
		}
		msg := pe.Message
		if msg == "" {
			msg = err.Error()
		}
		return &ProviderError{Provider: "paypal", StatusCode: status, Message: msg, Err: err}
	}
	return &ProviderError{Provider: "paypal", Message: err.Error(), Err: err}
}
