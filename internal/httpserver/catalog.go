package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/service"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
	"github.com/Skotchmaster/apparel_shop/internal/util"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, l, "get_product_failed", "id is not a uuid", err)
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(c, l, "get_product_failed", err)
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	total, items, limit, err := h.Svc.ListProducts(ctx, page, size)
	if err != nil {
		return fail(c, l, "get_products_error", err)
	}

	l.Info("get_products_success", "count", len(items))
	return c.JSON(http.StatusOK, transport.Page[models.Product]{Data: items, Meta: util.Meta(page, limit, total)})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := c.QueryParam("q")
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	total, items, limit, err := h.Svc.SearchProducts(ctx, q, page, size)
	if err != nil {
		return fail(c, l, "search_error", err)
	}

	l.Info("search_success", "q", q, "total", total)
	return c.JSON(http.StatusOK, transport.Page[models.Product]{Data: items, Meta: util.Meta(page, limit, total)})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "product_create_error", "invalid body", err)
	}

	created, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(c, l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", created.ID)
	return c.JSON(http.StatusCreated, created)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.patch_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, l, "product_patch_error", "id is not a uuid", err)
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "product_patch_error", "invalid body", err)
	}

	prod, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return fail(c, l, "product_patch_error", err)
	}

	l.Info("patch_product_success", "product_id", id)
	return c.JSON(http.StatusOK, prod)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, l, "product_delete_error", "id is not a uuid", err)
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(c, l, "product_delete_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) CreateCustomProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "custom_product.create")

	var req transport.CreateCustomProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "custom_product_create_error", "invalid body", err)
	}

	resp, err := h.Svc.CreateCustomDesign(ctx, req)
	if err != nil {
		return fail(c, l, "custom_product_create_error", err)
	}

	l.Info("custom_product_created", "custom_product_id", resp.CustomProductID)
	return c.JSON(http.StatusCreated, resp)
}

func (h *CatalogHTTP) GetCustomProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "custom_product.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, l, "custom_product_get_error", "id is not a uuid", err)
	}

	cp, err := h.Svc.GetCustomProduct(ctx, id)
	if err != nil {
		return fail(c, l, "custom_product_get_error", err)
	}
	return c.JSON(http.StatusOK, cp)
}

func (h *CatalogHTTP) GetDesignImage(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "design_image.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, l, "design_image_get_error", "id is not a uuid", err)
	}

	img, err := h.Svc.GetDesignImage(ctx, id)
	if err != nil {
		return fail(c, l, "design_image_get_error", err)
	}
	return c.JSON(http.StatusOK, img)
}
