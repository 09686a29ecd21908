package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

type AddToCartRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gt=0"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// CartLineView is a cart line joined with the current product. Product is nil
// when the product has since been deleted.
type CartLineView struct {
	ID        uint            `json:"id"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   *models.Product `json:"product"`
}

type CartView struct {
	Items    []CartLineView `json:"items"`
	Subtotal float64        `json:"subtotal"`
}

// CartService manages a user's cart.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart returns the user's cart with live product data.
func (s *CartService) GetCart(userID string) (*CartView, error) {
	lines, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: make([]CartLineView, 0, len(lines))}
	subtotal := decimal.Zero
	for _, line := range lines {
		item := CartLineView{ID: line.ID, ProductID: line.ProductID, Quantity: line.Quantity}
		product, err := s.productRepo.GetByID(line.ProductID)
		switch {
		case err == nil:
			item.Product = product
			subtotal = subtotal.Add(decimal.NewFromFloat(product.Price).Mul(decimal.NewFromInt(int64(line.Quantity))))
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, err
		}
		view.Items = append(view.Items, item)
	}
	view.Subtotal = subtotal.Round(2).InexactFloat64()
	return view, nil
}

// AddItem adds quantity of a product, accumulating onto an existing line.
func (s *CartService) AddItem(userID, productID string, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &ProductNotFoundError{ProductID: productID}
		}
		return nil, err
	}

	line, err := s.cartRepo.GetItem(userID, productID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		line = &models.CartItem{UserID: userID, ProductID: productID}
	}

	if line.Quantity+quantity > product.Stock {
		return nil, &InsufficientStockError{ProductID: productID, Title: product.Title, Requested: line.Quantity + quantity, Available: product.Stock}
	}
	line.Quantity += quantity
	if err := s.cartRepo.Save(line); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

// UpdateQuantity sets the quantity of an existing line.
func (s *CartService) UpdateQuantity(userID, productID string, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	line, err := s.cartRepo.GetItem(userID, productID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &ProductNotFoundError{ProductID: productID}
		}
		return nil, err
	}
	if quantity > product.Stock {
		return nil, &InsufficientStockError{ProductID: productID, Title: product.Title, Requested: quantity, Available: product.Stock}
	}

	line.Quantity = quantity
	if err := s.cartRepo.Save(line); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

func (s *CartService) RemoveItem(userID, productID string) (*CartView, error) {
	if err := s.cartRepo.Remove(userID, productID); err != nil {
		return nil, err
	}
	return s.GetCart(userID)
}

func (s *CartService) Clear(userID string) error {
	if err := s.cartRepo.Clear(userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
