package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"storefront/logging"
	"storefront/models"
	"storefront/repository"
)

// UploadURLPrefix is the public path product images are served under.
const UploadURLPrefix = "/uploads/"

type CatalogService struct {
	products  ProductStore
	uploadDir string
	logger    *zap.Logger
}

func NewCatalogService(products ProductStore, uploadDir string, logger *zap.Logger) *CatalogService {
	return &CatalogService{products: products, uploadDir: uploadDir, logger: logging.OrNop(logger)}
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list products: %v", ErrStorage, err)
	}
	return products, nil
}

func (s *CatalogService) Create(ctx context.Context, in models.ProductPayload) (*models.Product, error) {
	p, err := productFromPayload(in)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Now().UTC()
	id, err := s.products.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	p.ID = id
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, id int64, in models.ProductPayload) (*models.Product, error) {
	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := productFromPayload(in)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.CreatedAt = current.CreatedAt
	if err := s.products.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: update product: %v", ErrStorage, err)
	}
	return p, nil
}

// Delete removes the product and its uploaded image. Historical order items
// referencing it are kept.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	p, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("%w: delete product: %v", ErrStorage, err)
	}
	if path := s.imagePath(p.Image); path != "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("remove product image", zap.String("path", path), zap.Error(err))
		}
	}
	return nil
}

func (s *CatalogService) get(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: get product: %v", ErrStorage, err)
	}
	return p, nil
}

// imagePath maps an /uploads/ URL to a file in the upload dir; other images
// (external URLs) are not ours to delete.
func (s *CatalogService) imagePath(image string) string {
	if s.uploadDir == "" || !strings.HasPrefix(image, UploadURLPrefix) {
		return ""
	}
	name := filepath.Base(image)
	if name == "." || name == "/" {
		return ""
	}
	return filepath.Join(s.uploadDir, name)
}

func productFromPayload(in models.ProductPayload) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationf("name is required")
	}
	if in.Price.IsNegative() {
		return nil, validationf("price must not be negative")
	}
	if in.Stock < 0 {
		return nil, validationf("stock must not be negative")
	}
	return &models.Product{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Image:       strings.TrimSpace(in.Image),
		Category:    strings.TrimSpace(in.Category),
		Stock:       in.Stock,
	}, nil
}
