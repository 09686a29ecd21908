package services_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "men-s-shoes", services.Slugify("  Men's Shoes "))
	assert.Equal(t, "home-kitchen-2024", services.Slugify("Home & Kitchen -- 2024!"))
	assert.Equal(t, "", services.Slugify("  !! "))
}

func TestCategoryService_Create(t *testing.T) {
	repo := new(MockCategoryRepository)
	service := services.NewCategoryService(repo)

	repo.On("GetBySlug", "home-kitchen").Return(nil, notFound()).Once()
	repo.On("Create", mock.MatchedBy(func(c *models.Category) bool {
		return c.Slug == "home-kitchen" && c.IsActive
	})).Return(nil).Once()

	category, err := service.CreateCategory(services.CategoryRequest{Name: "Home & Kitchen"})
	require.NoError(t, err)
	assert.Equal(t, "Home & Kitchen", category.Name)

	repo.On("GetBySlug", "home-kitchen").Return(&models.Category{ID: "c1", Slug: "home-kitchen"}, nil).Once()
	_, err = service.CreateCategory(services.CategoryRequest{Name: "Home Kitchen"})
	assert.ErrorIs(t, err, services.ErrCategoryExists)
	repo.AssertExpectations(t)
}

func TestCategoryService_Update(t *testing.T) {
	repo := new(MockCategoryRepository)
	service := services.NewCategoryService(repo)

	existing := &models.Category{ID: "c1", Name: "Shoes", Slug: "shoes", IsActive: true}
	inactive := false
	repo.On("GetByID", "c1").Return(existing, nil).Once()
	repo.On("GetBySlug", "shoes").Return(existing, nil).Once()
	repo.On("Update", existing).Return(nil).Once()

	updated, err := service.UpdateCategory("c1", services.CategoryRequest{Name: "Footwear", IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "Footwear", updated.Name)
	assert.Equal(t, "shoes", updated.Slug)
	assert.False(t, updated.IsActive)
	repo.AssertExpectations(t)
}

func TestCategoryService_ListAndDelete(t *testing.T) {
	repo := new(MockCategoryRepository)
	service := services.NewCategoryService(repo)

	repo.On("GetAll", true).Return([]models.Category{{ID: "c1"}}, nil).Once()
	list, err := service.GetCategories(true)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	repo.On("Delete", "c1").Return(nil).Once()
	assert.NoError(t, service.DeleteCategory("c1"))
	repo.AssertExpectations(t)
}
