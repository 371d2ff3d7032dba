package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// SubscriptionService handles following authors
type SubscriptionService struct {
	db *gorm.DB
}

var _ ISubscriptionService = (*SubscriptionService)(nil)

// NewSubscriptionService creates a new SubscriptionService instance
func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe makes the actor follow authorID. recipesLimit caps the recipes
// embedded in the result; zero or less means no cap.
func (s *SubscriptionService) Subscribe(ctx context.Context, actor *types.Actor, authorID uuid.UUID, recipesLimit int) (*types.SubscriptionView, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	author, err := s.findUser(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if author.ID == actor.UserID {
		return nil, ErrSelfSubscription
	}

	sub := models.Subscription{UserID: actor.UserID, AuthorID: author.ID}
	if err := s.db.WithContext(ctx).Omit("User", "Author").Create(&sub).Error; err != nil {
		switch {
		case database.IsUniqueViolation(err):
			metrics.RecordListConflict("subscriptions")
			return nil, ErrAlreadySubscribed
		case database.IsCheckViolation(err):
			return nil, ErrSelfSubscription
		case database.IsForeignKeyViolation(err):
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("user_id", actor.UserID.String()).
		Str("author_id", author.ID.String()).
		Msg("subscribed to author")

	views, err := s.withRecipes(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Unsubscribe stops the actor following authorID.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, actor *types.Actor, authorID uuid.UUID) error {
	if !actor.IsAuthenticated() {
		return ErrUnauthenticated
	}
	if _, err := s.findUser(ctx, authorID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", actor.UserID, authorID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotSubscribed
	}
	return nil
}

// ListSubscriptions returns the authors the actor follows, ordered by username.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, actor *types.Actor, page types.PageRequest, recipesLimit int) ([]types.SubscriptionView, int64, error) {
	if !actor.IsAuthenticated() {
		return nil, 0, ErrUnauthenticated
	}

	q := s.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", actor.UserID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	if err := q.Order("users.username").Offset(page.Offset()).Limit(page.Limit).Find(&authors).Error; err != nil {
		return nil, 0, err
	}

	views, err := s.withRecipes(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *SubscriptionService) findUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// withRecipes attaches each author's newest recipes and total recipe count.
func (s *SubscriptionService) withRecipes(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionView, error) {
	views := make([]types.SubscriptionView, len(authors))
	if len(authors) == 0 {
		return views, nil
	}

	ids := make([]uuid.UUID, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}

	var counts []struct {
		AuthorID uuid.UUID
		Total    int64
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	totals := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		totals[c.AuthorID] = c.Total
	}

	for i, author := range authors {
		q := s.db.WithContext(ctx).
			Where("author_id = ?", author.ID).
			Order("created_at DESC").
			Order("id")
		if recipesLimit > 0 {
			q = q.Limit(recipesLimit)
		}
		var recipes []models.Recipe
		if err := q.Find(&recipes).Error; err != nil {
			return nil, err
		}
		views[i] = types.SubscriptionView{
			Author:       author,
			Recipes:      recipes,
			RecipesCount: totals[author.ID],
		}
	}
	return views, nil
}
