package httpserver

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/apparel_shop/internal/service"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
)

// Stripe documents webhook payloads well under this size.
const maxWebhookBody = 1 << 16

type CheckoutHTTP struct {
	Svc *service.CheckoutService
}

func (h *CheckoutHTTP) bindCheckout(c echo.Context) (transport.CheckoutRequest, error) {
	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return req, err
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.Request().Header.Get("Idempotency-Key")
	}
	return req, nil
}

func (h *CheckoutHTTP) Quote(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.quote")

	req, err := h.bindCheckout(c)
	if err != nil {
		return badRequest(c, l, "quote_error", "invalid body", err)
	}

	intent, err := h.Svc.BuildIntent(ctx, req)
	if err != nil {
		return fail(c, l, "quote_error", err)
	}
	return c.JSON(http.StatusOK, intent)
}

func (h *CheckoutHTTP) StartStripe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.stripe")

	req, err := h.bindCheckout(c)
	if err != nil {
		return badRequest(c, l, "stripe_checkout_error", "invalid body", err)
	}

	sess, err := h.Svc.StartStripeCheckout(ctx, req)
	if err != nil {
		return fail(c, l, "stripe_checkout_error", err)
	}

	l.Info("stripe_checkout_started", "session_id", sess.ID)
	return c.JSON(http.StatusOK, transport.StripeCheckoutResponse{ID: sess.ID, URL: sess.URL})
}

func (h *CheckoutHTTP) StartPayPal(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.paypal")

	req, err := h.bindCheckout(c)
	if err != nil {
		return badRequest(c, l, "paypal_checkout_error", "invalid body", err)
	}

	order, err := h.Svc.StartPayPalCheckout(ctx, req)
	if err != nil {
		return fail(c, l, "paypal_checkout_error", err)
	}

	l.Info("paypal_checkout_started", "paypal_order_id", order.ID)
	return c.JSON(http.StatusOK, transport.PayPalCheckoutResponse{ID: order.ID, ApproveURL: order.ApproveURL})
}

func (h *CheckoutHTTP) CompletePayPal(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.paypal_complete")

	order, err := h.Svc.CompletePayPalCheckout(ctx, c.Param("id"))
	if err != nil {
		return fail(c, l, "paypal_complete_error", err)
	}

	l.Info("paypal_checkout_completed", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *CheckoutHTTP) CreateDelivery(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.delivery")

	req, err := h.bindCheckout(c)
	if err != nil {
		return badRequest(c, l, "delivery_order_error", "invalid body", err)
	}

	order, err := h.Svc.CreateDeliveryOrder(ctx, req)
	if err != nil {
		return fail(c, l, "delivery_order_error", err)
	}

	l.Info("delivery_order_created", "order_id", order.ID)
	return c.JSON(http.StatusOK, transport.DeliveryOrderResponse{ID: order.ID.String(), Status: "success"})
}

func (h *CheckoutHTTP) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webhook.stripe")

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return badRequest(c, l, "stripe_webhook_error", "cannot read body", err)
	}

	order, err := h.Svc.HandleStripeWebhook(ctx, payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		return fail(c, l, "stripe_webhook_error", err)
	}

	if order != nil {
		l.Info("stripe_webhook_materialized", "order_id", order.ID, "provider_ref", order.ProviderRef)
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
