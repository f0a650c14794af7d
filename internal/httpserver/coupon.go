package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/apparel_shop/internal/service"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
)

type CouponHTTP struct {
	Svc *service.CouponService
}

func (h *CouponHTTP) ValidateCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.validate")

	var req transport.ValidateCouponRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "coupon_validate_error", "invalid body", err)
	}

	coupon, err := h.Svc.ValidateCoupon(ctx, req.Code)
	if err != nil {
		return fail(c, l, "coupon_validate_error", err)
	}

	return c.JSON(http.StatusOK, transport.ValidateCouponResponse{
		Valid:              true,
		Code:               coupon.Code,
		DiscountPercentage: coupon.DiscountPercentage,
		Description:        coupon.Description,
	})
}

func (h *CouponHTTP) ListCoupons(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_coupons")

	coupons, err := h.Svc.ListCoupons(ctx)
	if err != nil {
		return fail(c, l, "coupon_list_error", err)
	}
	return c.JSON(http.StatusOK, coupons)
}

func (h *CouponHTTP) CreateCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_coupon")

	var req transport.CreateCouponRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "coupon_create_error", "invalid body", err)
	}

	coupon, err := h.Svc.CreateCoupon(ctx, req)
	if err != nil {
		return fail(c, l, "coupon_create_error", err)
	}

	l.Info("coupon_created", "code", coupon.Code)
	return c.JSON(http.StatusCreated, coupon)
}

func (h *CouponHTTP) PatchCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.patch_coupon")

	var req transport.PatchCouponRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "coupon_patch_error", "invalid body", err)
	}
	if req.IsActive == nil {
		return badRequest(c, l, "coupon_patch_error", "isActive is required", nil)
	}

	code := c.Param("code")
	if err := h.Svc.SetCouponActive(ctx, code, *req.IsActive); err != nil {
		return fail(c, l, "coupon_patch_error", err)
	}

	l.Info("coupon_patched", "code", code, "active", *req.IsActive)
	return c.NoContent(http.StatusNoContent)
}

func (h *CouponHTTP) DeleteCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_coupon")

	code := c.Param("code")
	if err := h.Svc.DeleteCoupon(ctx, code); err != nil {
		return fail(c, l, "coupon_delete_error", err)
	}

	l.Info("coupon_deleted", "code", code)
	return c.NoContent(http.StatusNoContent)
}
