package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/validation"
)

//go:embed fixtures.yaml
var defaultFixture []byte

type userFixture struct {
	Email     string `yaml:"email" json:"email" validate:"required,email,max=254"`
	Username  string `yaml:"username" json:"username" validate:"required,max=150,username"`
	FirstName string `yaml:"first_name" json:"first_name" validate:"max=150"`
	LastName  string `yaml:"last_name" json:"last_name" validate:"max=150"`
	Password  string `yaml:"password" json:"password" validate:"required,min=8"`
}

type tagFixture struct {
	Name  string `yaml:"name" json:"name" validate:"required,max=200"`
	Color string `yaml:"color" json:"color" validate:"required,hexcolor"`
	Slug  string `yaml:"slug" json:"slug" validate:"required,max=200"`
}

type ingredientFixture struct {
	Name            string `yaml:"name" json:"name" validate:"required,max=200"`
	MeasurementUnit string `yaml:"measurement_unit" json:"measurement_unit" validate:"required,max=200"`
}

type fixture struct {
	Users       []userFixture       `yaml:"users" validate:"dive"`
	Tags        []tagFixture        `yaml:"tags" validate:"dive"`
	Ingredients []ingredientFixture `yaml:"ingredients" validate:"dive"`
}

// seedResult counts the rows actually inserted. Rows that already exist are skipped.
type seedResult struct {
	Users       []models.User
	Tags        int64
	Ingredients int64
}

// loadFixture parses the fixture at path, or the embedded one when path is empty.
func loadFixture(path string) (*fixture, error) {
	data := defaultFixture
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read fixture: %w", err)
		}
	}

	var f fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := validation.GetValidator().Struct(&f); err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			return nil, fmt.Errorf("invalid fixture: %v", fields)
		}
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

func seed(ctx context.Context, db *gorm.DB, f *fixture) (*seedResult, error) {
	res := &seedResult{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skipExisting := tx.Clauses(clause.OnConflict{DoNothing: true}).Session(&gorm.Session{})

		for _, u := range f.Users {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", u.Username, err)
			}
			user := models.User{
				Email:        u.Email,
				Username:     u.Username,
				FirstName:    u.FirstName,
				LastName:     u.LastName,
				PasswordHash: string(hash),
			}
			result := skipExisting.Create(&user)
			if result.Error != nil {
				return fmt.Errorf("create user %s: %w", u.Username, result.Error)
			}
			if result.RowsAffected == 0 {
				user = models.User{}
				if err := tx.Where("username = ?", u.Username).First(&user).Error; err != nil {
					return fmt.Errorf("load user %s: %w", u.Username, err)
				}
			}
			res.Users = append(res.Users, user)
		}

		for _, t := range f.Tags {
			result := skipExisting.Create(&models.Tag{Name: t.Name, Color: t.Color, Slug: t.Slug})
			if result.Error != nil {
				return fmt.Errorf("create tag %s: %w", t.Slug, result.Error)
			}
			res.Tags += result.RowsAffected
		}

		for _, i := range f.Ingredients {
			result := skipExisting.Create(&models.Ingredient{Name: i.Name, MeasurementUnit: i.MeasurementUnit})
			if result.Error != nil {
				return fmt.Errorf("create ingredient %s: %w", i.Name, result.Error)
			}
			res.Ingredients += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
