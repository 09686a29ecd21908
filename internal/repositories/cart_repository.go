package repositories

import "storefront/internal/models"

// CartRepository defines the interface for cart line data access.
type CartRepository interface {
	GetByUserID(userID string) ([]models.CartItem, error)
	GetItem(userID, productID string) (*models.CartItem, error)
	Save(item *models.CartItem) error
	Remove(userID, productID string) error
	Clear(userID string) error
}
