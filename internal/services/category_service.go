package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

type CategoryRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Slug     string `json:"slug" validate:"omitempty,max=120"`
	Image    string `json:"image" validate:"omitempty,url"`
	IsActive *bool  `json:"isActive"`
}

// CategoryService manages product categories.
type CategoryService struct {
	repo repositories.CategoryRepository
}

func NewCategoryService(repo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// GetCategories lists categories. Public callers only see active ones.
func (s *CategoryService) GetCategories(activeOnly bool) ([]models.Category, error) {
	return s.repo.GetAll(activeOnly)
}

func (s *CategoryService) CreateCategory(req CategoryRequest) (*models.Category, error) {
	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(req.Name)
	}
	if err := s.ensureSlugFree(slug, ""); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:     strings.TrimSpace(req.Name),
		Slug:     slug,
		Image:    req.Image,
		IsActive: true,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := s.repo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(id string, req CategoryRequest) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(req.Name)
	if slug := Slugify(req.Slug); slug != "" {
		category.Slug = slug
	}
	if err := s.ensureSlugFree(category.Slug, category.ID); err != nil {
		return nil, err
	}
	category.Image = req.Image
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) DeleteCategory(id string) error {
	return s.repo.Delete(id)
}

func (s *CategoryService) ensureSlugFree(slug, selfID string) error {
	existing, err := s.repo.GetBySlug(slug)
	if err == nil && existing.ID != selfID {
		return fmt.Errorf("%w: %s", ErrCategoryExists, slug)
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	return nil
}

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingDash = false
			continue
		}
		pendingDash = true
	}
	return b.String()
}
