package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/apparel_shop/pkg/middleware/auth"
)

type Deps struct {
	CatalogHandler  *CatalogHTTP
	CouponHandler   *CouponHTTP
	CheckoutHandler *CheckoutHTTP
	OrderHandler    *OrderHTTP
	Admin           *middleware.AdminMiddleware
	AdminCSRF       echo.MiddlewareFunc
	Ready           func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	v1 := e.Group("/api/v1")

	products := v1.Group("/products")
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	v1.POST("/custom-products", d.CatalogHandler.CreateCustomProduct)
	v1.GET("/custom-products/:id", d.CatalogHandler.GetCustomProduct)
	v1.GET("/design-images/:id", d.CatalogHandler.GetDesignImage)

	v1.POST("/coupons/validate", d.CouponHandler.ValidateCoupon)

	checkout := v1.Group("/checkout")
	checkout.POST("/quote", d.CheckoutHandler.Quote)
	checkout.POST("/stripe", d.CheckoutHandler.StartStripe)
	checkout.POST("/paypal", d.CheckoutHandler.StartPayPal)
	checkout.POST("/paypal/:id/complete", d.CheckoutHandler.CompletePayPal)
	checkout.POST("/delivery", d.CheckoutHandler.CreateDelivery)

	v1.POST("/webhooks/stripe", d.CheckoutHandler.StripeWebhook)
	v1.GET("/orders/:ref", d.OrderHandler.GetOrder)

	admin := v1.Group("/admin", d.Admin.RequireAdmin)
	if d.AdminCSRF != nil {
		admin.Use(d.AdminCSRF)
	}
	admin.POST("/products", d.CatalogHandler.CreateProduct)
	admin.PATCH("/products/:id", d.CatalogHandler.PatchProduct)
	admin.DELETE("/products/:id", d.CatalogHandler.DeleteProduct)

	admin.GET("/coupons", d.CouponHandler.ListCoupons)
	admin.POST("/coupons", d.CouponHandler.CreateCoupon)
	admin.PATCH("/coupons/:code", d.CouponHandler.PatchCoupon)
	admin.DELETE("/coupons/:code", d.CouponHandler.DeleteCoupon)

	admin.GET("/orders", d.OrderHandler.ListOrders)
	admin.PATCH("/orders/:id/status", d.OrderHandler.UpdateStatus)
}
