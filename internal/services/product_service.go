package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// UpdateProductRequest changes only the fields that are present.
type UpdateProductRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=2,max=200"`
	Description *string   `json:"description" validate:"omitempty,max=2000"`
	Price       *float64  `json:"price" validate:"omitempty,gt=0"`
	Stock       *int      `json:"stock" validate:"omitempty,gte=0"`
	Category    *string   `json:"category" validate:"omitempty,max=100"`
	Images      *[]string `json:"images" validate:"omitempty,dive,url"`
}

const productListCacheKey = "products:all"

func productCacheKey(id string) string {
	return "products:id:" + id
}

// ProductService handles business logic related to products.
// Unfiltered listings and single products are served from the cache when possible.
type ProductService struct {
	repo   repositories.ProductRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

// GetProducts lists products matching the query.
func (s *ProductService) GetProducts(ctx context.Context, query repositories.ProductQuery) ([]models.Product, error) {
	cacheable := query == repositories.ProductQuery{}
	if cacheable {
		var cached []models.Product
		if s.readCache(ctx, productListCacheKey, &cached) {
			return cached, nil
		}
	}

	products, err := s.repo.GetAll(query)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.writeCache(ctx, productListCacheKey, products)
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var cached models.Product
	if s.readCache(ctx, productCacheKey(id), &cached) {
		return &cached, nil
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, productCacheKey(id), product)
	return product, nil
}

// CreateProduct creates a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := s.repo.Create(product); err != nil {
		return err
	}
	s.invalidate(ctx, product.ID)
	return nil
}

// UpdateProduct applies the fields present in req to the stored product.
// The stored copy is read from the repository, never from the cache.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		product.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Images != nil {
		product.Images = *req.Images
	}

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	s.invalidate(ctx, product.ID)
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *ProductService) readCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *ProductService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("product cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, productListCacheKey, productCacheKey(id)); err != nil {
		s.logger.Warn(fmt.Sprintf("failed to invalidate product cache for %s", id), zap.Error(err))
	}
}
