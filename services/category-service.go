package services

import (
	"context"
	"errors"
	"time"

	"github.com/KBRRM/create-class/models"
	"github.com/KBRRM/create-class/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CategoryStore persists category details.
type CategoryStore interface {
	InsertCategoryDetail(ctx context.Context, category *models.CategoryDetail) error
	FindCategoryDetailByID(ctx context.Context, id string) (*models.CategoryDetail, error)
	FindAllCategoryDetails(ctx context.Context) ([]models.CategoryDetail, error)
	UpdateCategoryDetail(ctx context.Context, id string, input models.CategoryDetailInput) (*models.CategoryDetail, error)
	DeleteCategoryDetail(ctx context.Context, id string) error
}

type CategoryService struct {
	categories CategoryStore
	callers    CallerResolver
}

func NewCategoryService(categories CategoryStore, callers CallerResolver) *CategoryService {
	return &CategoryService{categories: categories, callers: callers}
}

func (s *CategoryService) AddCategoryDetail(ctx context.Context, callerID string, input models.CategoryDetailInput) (*models.CategoryDetail, error) {
	user, err := s.resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &models.CategoryDetail{
		CategoryTitle: input.CategoryTitle,
		Description:   input.Description,
		CategoryDoc:   input.CategoryDoc,
		CreatedBy:     user.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.categories.InsertCategoryDetail(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategoryDetail replaces the editable fields. Only the owner may update.
func (s *CategoryService) UpdateCategoryDetail(ctx context.Context, callerID, id string, input models.CategoryDetailInput) (*models.CategoryDetail, error) {
	user, err := s.resolve(ctx, callerID)
	if err != nil {
		return nil, err
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isOwner(existing, user.ID) {
		return nil, NewValidationError("You don't have access to update this category, as you are not the owner of this category.")
	}

	updated, err := s.categories.UpdateCategoryDetail(ctx, id, input)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, NewNotFoundError("Category detail not found")
	}
	return updated, err
}

// DeleteCategoryDetail removes a category. Only the owner may delete.
func (s *CategoryService) DeleteCategoryDetail(ctx context.Context, callerID, id string) error {
	user, err := s.resolve(ctx, callerID)
	if err != nil {
		return err
	}

	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !isOwner(existing, user.ID) {
		return NewAuthorizationError("User not authorized to delete this category details")
	}

	err = s.categories.DeleteCategoryDetail(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return NewNotFoundError("Category detail not found")
	}
	return err
}

// GetCategoryDetailByID returns one category to any existing user.
func (s *CategoryService) GetCategoryDetailByID(ctx context.Context, callerID, id string) (*models.CategoryDetail, error) {
	if _, err := s.resolve(ctx, callerID); err != nil {
		return nil, err
	}
	return s.find(ctx, id)
}

func (s *CategoryService) GetAllCategoryDetails(ctx context.Context, callerID string) ([]models.CategoryDetail, error) {
	if _, err := s.resolve(ctx, callerID); err != nil {
		return nil, err
	}
	return s.categories.FindAllCategoryDetails(ctx)
}

// resolve maps an unknown caller to NotFoundError, which is what category
// clients receive for a deleted account.
func (s *CategoryService) resolve(ctx context.Context, callerID string) (*models.User, error) {
	user, err := s.callers.ResolveCaller(ctx, callerID)
	var authErr AuthorizationError
	if errors.As(err, &authErr) {
		return nil, NewNotFoundError("User not found")
	}
	return user, err
}

func (s *CategoryService) find(ctx context.Context, id string) (*models.CategoryDetail, error) {
	category, err := s.categories.FindCategoryDetailByID(ctx, id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil, NewNotFoundError("Category detail not found")
	case errors.Is(err, repositories.ErrInvalidID):
		return nil, NewValidationError("invalid category id %q", id)
	}
	return category, err
}

func isOwner(category *models.CategoryDetail, userID primitive.ObjectID) bool {
	return category.CreatedBy == userID
}
