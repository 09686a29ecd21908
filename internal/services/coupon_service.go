package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/pricing"
	"storefront/internal/repositories"
)

var (
	ErrInvalidDiscount   = errors.New("percentage discount cannot exceed 100")
	ErrMissingApplyInput = errors.New("missing coupon code or cart total")
)

type ApplyCouponRequest struct {
	CouponCode string  `json:"couponCode" validate:"required"`
	CartTotal  float64 `json:"cartTotal" validate:"gt=0"`
}

type CreateCouponRequest struct {
	Code              string    `json:"code" validate:"required,min=3,max=50"`
	DiscountType      string    `json:"discountType" validate:"required,oneof=percentage flat"`
	DiscountValue     float64   `json:"discountValue" validate:"gt=0"`
	MinOrderAmount    float64   `json:"minOrderAmount" validate:"gte=0"`
	MaxDiscountAmount *float64  `json:"maxDiscountAmount" validate:"omitempty,gte=0"`
	ExpiryDate        time.Time `json:"expiryDate" validate:"required"`
	UsageLimit        *int      `json:"usageLimit" validate:"omitempty,gte=0"`
}

// UpdateCouponRequest changes only the fields that are present.
type UpdateCouponRequest struct {
	Code              *string    `json:"code" validate:"omitempty,min=3,max=50"`
	DiscountType      *string    `json:"discountType" validate:"omitempty,oneof=percentage flat"`
	DiscountValue     *float64   `json:"discountValue" validate:"omitempty,gt=0"`
	MinOrderAmount    *float64   `json:"minOrderAmount" validate:"omitempty,gte=0"`
	MaxDiscountAmount *float64   `json:"maxDiscountAmount" validate:"omitempty,gte=0"`
	ExpiryDate        *time.Time `json:"expiryDate"`
	UsageLimit        *int       `json:"usageLimit" validate:"omitempty,gte=0"`
	IsActive          *bool      `json:"isActive"`
}

// CouponService evaluates and administers coupons.
type CouponService struct {
	repo   repositories.CouponRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewCouponService(repo repositories.CouponRepository, now func() time.Time, logger *zap.Logger) *CouponService {
	if now == nil {
		now = time.Now
	}
	return &CouponService{
		repo:   repo,
		now:    now,
		logger: logger,
	}
}

// Apply prices a coupon against a cart total. It never consumes a use of the coupon.
func (s *CouponService) Apply(code string, cartTotal float64) (pricing.Quote, error) {
	if strings.TrimSpace(code) == "" || cartTotal <= 0 {
		return pricing.Quote{}, ErrMissingApplyInput
	}
	_, quote, err := s.Evaluate(code, cartTotal)
	return quote, err
}

// Evaluate looks the coupon up and runs the eligibility rules against cartTotal.
func (s *CouponService) Evaluate(code string, cartTotal float64) (*models.Coupon, pricing.Quote, error) {
	coupon, err := s.repo.GetByCode(code)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, pricing.Quote{}, ErrCouponNotFound
		}
		return nil, pricing.Quote{}, err
	}

	quote, err := pricing.EvaluateCoupon(coupon, cartTotal, s.now())
	if err != nil {
		return coupon, pricing.Quote{}, err
	}
	return coupon, quote, nil
}

func (s *CouponService) CreateCoupon(req CreateCouponRequest, createdBy string) (*models.Coupon, error) {
	if req.DiscountType == models.DiscountPercentage && req.DiscountValue > 100 {
		return nil, ErrInvalidDiscount
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if err := s.ensureCodeFree(code, ""); err != nil {
		return nil, err
	}

	coupon := &models.Coupon{
		Code:              code,
		DiscountType:      req.DiscountType,
		DiscountValue:     req.DiscountValue,
		MinOrderAmount:    req.MinOrderAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		ExpiryDate:        req.ExpiryDate,
		UsageLimit:        req.UsageLimit,
		UsedCount:         0,
		IsActive:          true,
		CreatedBy:         createdBy,
	}
	if err := s.repo.Create(coupon); err != nil {
		return nil, err
	}
	s.logger.Info("coupon created", zap.String("code", coupon.Code), zap.String("created_by", createdBy))
	return coupon, nil
}

// GetCoupons lists all coupons, newest first.
func (s *CouponService) GetCoupons() ([]models.Coupon, error) {
	return s.repo.GetAll()
}

func (s *CouponService) UpdateCoupon(id string, req UpdateCouponRequest) (*models.Coupon, error) {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code != coupon.Code {
			if err := s.ensureCodeFree(code, coupon.ID); err != nil {
				return nil, err
			}
		}
		coupon.Code = code
	}
	if req.DiscountType != nil {
		coupon.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		coupon.DiscountValue = *req.DiscountValue
	}
	if req.MinOrderAmount != nil {
		coupon.MinOrderAmount = *req.MinOrderAmount
	}
	if req.MaxDiscountAmount != nil {
		coupon.MaxDiscountAmount = req.MaxDiscountAmount
	}
	if req.ExpiryDate != nil {
		coupon.ExpiryDate = *req.ExpiryDate
	}
	if req.UsageLimit != nil {
		coupon.UsageLimit = req.UsageLimit
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	if coupon.DiscountType == models.DiscountPercentage && coupon.DiscountValue > 100 {
		return nil, ErrInvalidDiscount
	}

	if err := s.repo.Update(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// DisableCoupon deactivates a coupon. Coupons are never hard-deleted.
func (s *CouponService) DisableCoupon(id string) error {
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	coupon.IsActive = false
	if err := s.repo.Update(coupon); err != nil {
		return fmt.Errorf("failed to disable coupon %s: %w", id, err)
	}
	s.logger.Info("coupon disabled", zap.String("code", coupon.Code))
	return nil
}

func (s *CouponService) ensureCodeFree(code, selfID string) error {
	existing, err := s.repo.GetByCode(code)
	if err == nil && existing.ID != selfID {
		return ErrCouponExists
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	return nil
}
