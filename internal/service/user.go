package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserService reads user profiles
type UserService struct {
	db *gorm.DB
}

var _ IUserService = (*UserService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetUser returns a user with the actor's subscription flag.
func (s *UserService) GetUser(ctx context.Context, actor *types.Actor, id uuid.UUID) (*types.UserView, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	views, err := s.decorate(ctx, actor, []models.User{user})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Me returns the actor's own profile.
func (s *UserService) Me(ctx context.Context, actor *types.Actor) (*types.UserView, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	return s.GetUser(ctx, actor, actor.UserID)
}

// ListUsers returns one page of users ordered by username.
func (s *UserService) ListUsers(ctx context.Context, actor *types.Actor, page types.PageRequest) ([]types.UserView, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Order("username").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	views, err := s.decorate(ctx, actor, users)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *UserService) decorate(ctx context.Context, actor *types.Actor, users []models.User) ([]types.UserView, error) {
	views := make([]types.UserView, len(users))
	for i := range users {
		views[i].User = users[i]
	}
	if !actor.IsAuthenticated() || len(users) == 0 {
		return views, nil
	}

	ids := make([]uuid.UUID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	followed, err := linkedIDs(s.db.WithContext(ctx).Model(&models.Subscription{}), "author_id",
		"user_id = ? AND author_id IN ?", actor.UserID, ids)
	if err != nil {
		return nil, err
	}
	for i := range views {
		views[i].IsSubscribed = followed[views[i].User.ID]
	}
	return views, nil
}
