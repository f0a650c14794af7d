package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/repo"
	"github.com/Skotchmaster/apparel_shop/internal/search"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
	"github.com/Skotchmaster/apparel_shop/internal/util"
	"github.com/Skotchmaster/apparel_shop/pkg/events"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
)

const maxCustomTextLen = 200

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	// Index is nil when no Elasticsearch cluster is configured.
	Index search.Indexer
}

// GetProduct returns a published product; drafts are invisible to the storefront.
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	if !p.Published {
		return nil, errorf(ErrNotFound, "product not found")
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, page, size int) (int64, []models.Product, int, error) {
	offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ListProducts(ctx, offset, limit, true)
	return total, items, limit, err
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) (int64, []models.Product, int, error) {
	if s.Index == nil {
		return 0, nil, 0, errorf(ErrProviderNotConfigured, "search is not configured")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, 0, errorf(ErrValidation, "query is required")
	}
	offset, limit := util.Calculate(page, size)
	total, items, err := s.Index.Search(ctx, query, offset, limit)
	return total, items, limit, err
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorf(ErrValidation, "name is required")
	}
	if !req.Price.IsPositive() {
		return nil, errorf(ErrValidation, "price must be greater than zero")
	}

	prod := &models.Product{
		Name:            name,
		Description:     strings.TrimSpace(req.Description),
		Price:           req.Price,
		Images:          normalizeSet(req.Images),
		Category:        strings.TrimSpace(req.Category),
		AvailableColors: normalizeSet(req.AvailableColors),
		AvailableSizes:  normalizeSet(req.AvailableSizes),
		Published:       req.Published,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.afterProductWrite(ctx, "product_created", prod)
	return prod, nil
}

// PatchProduct applies the set fields. A product already sold keeps its
// shape; only its published flag may still change.
func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}

	shapeChanged := req.Name != nil || req.Description != nil || req.Price != nil ||
		req.Images != nil || req.Category != nil || req.AvailableColors != nil || req.AvailableSizes != nil
	if shapeChanged {
		referenced, err := s.Repo.ProductReferenced(ctx, id)
		if err != nil {
			return nil, err
		}
		if referenced {
			return nil, errorf(ErrConflict, "product is referenced by orders; only published can change")
		}
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, errorf(ErrValidation, "name is required")
		}
		prod.Name = name
	}
	if req.Description != nil {
		prod.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, errorf(ErrValidation, "price must be greater than zero")
		}
		prod.Price = *req.Price
	}
	if req.Images != nil {
		prod.Images = normalizeSet(*req.Images)
	}
	if req.Category != nil {
		prod.Category = strings.TrimSpace(*req.Category)
	}
	if req.AvailableColors != nil {
		prod.AvailableColors = normalizeSet(*req.AvailableColors)
	}
	if req.AvailableSizes != nil {
		prod.AvailableSizes = normalizeSet(*req.AvailableSizes)
	}
	if req.Published != nil {
		prod.Published = *req.Published
	}

	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.afterProductWrite(ctx, "product_updated", prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	referenced, err := s.Repo.ProductReferenced(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return errorf(ErrConflict, "product is referenced by orders; unpublish it instead")
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound(err, "product")
	}

	l := logging.FromContext(ctx).With("svc", "catalog.delete_product")
	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id.String()); err != nil {
			l.Warn("search_index_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProducts, id.String(), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return nil
}

func (s *CatalogService) afterProductWrite(ctx context.Context, eventType string, prod *models.Product) {
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, prod); err != nil {
			logging.FromContext(ctx).Warn("search_index_failed", "product_id", prod.ID, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProducts, prod.ID.String(), map[string]any{
		"type":      eventType,
		"productID": prod.ID,
		"name":      prod.Name,
		"published": prod.Published,
	})
}

func (s *CatalogService) GetCustomProduct(ctx context.Context, id uuid.UUID) (*models.CustomProduct, error) {
	p, err := s.Repo.GetCustomProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "custom product")
	}
	return p, nil
}

func (s *CatalogService) GetDesignImage(ctx context.Context, id uuid.UUID) (*models.DesignImage, error) {
	img, err := s.Repo.GetDesignImage(ctx, id)
	if err != nil {
		return nil, notFound(err, "design image")
	}
	return img, nil
}

// CreateCustomDesign writes the custom product, its design image and the
// back-reference between them in one transaction.
func (s *CatalogService) CreateCustomDesign(ctx context.Context, req transport.CreateCustomProductRequest) (*transport.CustomProductResponse, error) {
	baseID, err := uuid.Parse(strings.TrimSpace(req.BaseProductID))
	if err != nil {
		return nil, errorf(ErrValidation, "invalid base product id")
	}
	if strings.TrimSpace(req.ImageData) == "" {
		return nil, errorf(ErrValidation, "imageData is required")
	}
	text := strings.TrimSpace(req.CustomText)
	if len([]rune(text)) > maxCustomTextLen {
		return nil, errorf(ErrValidation, "customText must be at most %d characters", maxCustomTextLen)
	}

	base, err := s.Repo.GetProduct(ctx, baseID)
	if err != nil {
		return nil, notFound(err, "product")
	}

	var out transport.CustomProductResponse
	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		cp := &models.CustomProduct{
			BaseProductID:   base.ID,
			Name:            base.Name,
			Description:     base.Description,
			Price:           base.Price,
			Images:          base.Images,
			Category:        base.Category,
			AvailableColors: base.AvailableColors,
			AvailableSizes:  base.AvailableSizes,
			CustomText:      text,
			CustomImage:     strings.TrimSpace(req.CustomImage),
		}
		if err := tx.CreateCustomProduct(ctx, cp); err != nil {
			return err
		}

		img := &models.DesignImage{
			ProductID: &cp.ID,
			ImageData: req.ImageData,
		}
		if len(req.DesignData) > 0 {
			img.DesignData = datatypes.JSON(req.DesignData)
		}
		if err := tx.StoreDesignImage(ctx, img); err != nil {
			return err
		}

		if err := tx.UpdateCustomProduct(ctx, cp.ID, map[string]any{"final_design_image_id": img.ID}); err != nil {
			return err
		}

		out.CustomProductID = cp.ID.String()
		out.DesignImageID = img.ID.String()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// lookupProduct resolves id in the preferred collection first and falls
// back to the other one. With publishedOnly, draft products count as missing.
func (s *CatalogService) lookupProduct(ctx context.Context, id uuid.UUID, preferCustom, publishedOnly bool) (*models.Product, *models.CustomProduct, error) {
	regular := func() (*models.Product, error) {
		p, err := s.Repo.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		if publishedOnly && !p.Published {
			return nil, errorf(ErrNotFound, "product not found")
		}
		return p, nil
	}

	if preferCustom {
		cp, err := s.Repo.GetCustomProduct(ctx, id)
		if err == nil {
			return nil, cp, nil
		}
		if !isMissing(err) {
			return nil, nil, err
		}
		p, err := regular()
		if err != nil {
			return nil, nil, notFound(err, "product")
		}
		return p, nil, nil
	}

	p, err := regular()
	if err == nil {
		return p, nil, nil
	}
	if !isMissing(err) {
		return nil, nil, err
	}
	cp, err := s.Repo.GetCustomProduct(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, "product")
	}
	return nil, cp, nil
}

func normalizeSet(values []string) models.StringList {
	out := make(models.StringList, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
