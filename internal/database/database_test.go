package database_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestClassifiesPostgresErrors(t *testing.T) {
	unique := &pq.Error{Code: "23505", Constraint: "idx_favorite_user_recipe"}
	check := &pq.Error{Code: "23514", Constraint: "chk_recipes_cooking_time"}
	fk := &pq.Error{Code: "23503"}

	wrapped := fmt.Errorf("create favorite: %w", unique)
	assert.True(t, database.IsUniqueViolation(wrapped))
	assert.Equal(t, "idx_favorite_user_recipe", database.ConstraintName(wrapped))
	assert.False(t, database.IsCheckViolation(wrapped))

	assert.True(t, database.IsCheckViolation(check))
	assert.Equal(t, "chk_recipes_cooking_time", database.ConstraintName(check))
	assert.True(t, database.IsForeignKeyViolation(fk))

	assert.False(t, database.IsUniqueViolation(nil))
	assert.False(t, database.IsUniqueViolation(assert.AnError))
	assert.Empty(t, database.ConstraintName(assert.AnError))
}

func TestUniqueViolationThroughGorm(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "tags"`)).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_tags_slug"})

	err = db.Create(&models.Tag{Name: "Lunch", Color: "#49B64E", Slug: "lunch"}).Error
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
	assert.Equal(t, "idx_tags_slug", database.ConstraintName(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteConstraints(t *testing.T) {
	db := openSQLite(t)

	user := &models.User{Email: "cook@example.com", Username: "cook"}
	require.NoError(t, db.Create(user).Error)

	err := db.Create(&models.User{Email: "other@example.com", Username: "cook"}).Error
	assert.True(t, database.IsUniqueViolation(err), "%v", err)

	err = db.Omit("User", "Author").Create(&models.Subscription{UserID: user.ID, AuthorID: user.ID}).Error
	assert.True(t, database.IsCheckViolation(err), "%v", err)

	err = db.Omit("Author").Create(&models.Recipe{
		AuthorID: user.ID, Name: "soup", Image: "soup.png", Text: "boil", CookingTime: 0,
	}).Error
	assert.True(t, database.IsCheckViolation(err), "%v", err)

	err = db.Omit("User", "Author").Create(&models.Subscription{UserID: user.ID, AuthorID: uuid.New()}).Error
	assert.True(t, database.IsForeignKeyViolation(err), "%v", err)
}

func TestDeletingUserCascades(t *testing.T) {
	db := openSQLite(t)

	author := &models.User{Email: "a@example.com", Username: "author"}
	reader := &models.User{Email: "r@example.com", Username: "reader"}
	require.NoError(t, db.Create(author).Error)
	require.NoError(t, db.Create(reader).Error)

	recipe := &models.Recipe{AuthorID: author.ID, Name: "stew", Image: "stew.png", Text: "simmer", CookingTime: 90}
	require.NoError(t, db.Omit("Author").Create(recipe).Error)
	require.NoError(t, db.Omit("User", "Recipe").Create(&models.Favorite{UserID: reader.ID, RecipeID: recipe.ID}).Error)
	require.NoError(t, db.Omit("User", "Author").Create(&models.Subscription{UserID: reader.ID, AuthorID: author.ID}).Error)

	require.NoError(t, db.Delete(author).Error)

	for name, model := range map[string]interface{}{
		"recipes":       &models.Recipe{},
		"favorites":     &models.Favorite{},
		"subscriptions": &models.Subscription{},
	} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, name)
	}
}

func TestHealthCheckAndReportDB(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, database.HealthCheck(context.Background(), db))

	reportDB, err := database.NewReportDB(db)
	require.NoError(t, err)
	assert.Equal(t, "sqlite3", reportDB.DriverName())
	assert.Equal(t, "SELECT 1 WHERE 1 = ?", reportDB.Rebind("SELECT 1 WHERE 1 = ?"))
}
