package repositories

import (
	"storefront/internal/models"
)

// ProductQuery filters product listings. Empty fields do not filter.
type ProductQuery struct {
	Keyword  string
	Category string
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(query ProductQuery) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	Count() (int64, error)
}
