// Command seed loads users, tags and ingredients into the database and
// prints a bearer token for every seeded user.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	fixturePath := flag.String("fixture", "", "YAML fixture file (defaults to the embedded fixture)")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the printed tokens")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	f, err := loadFixture(*fixturePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load fixture")
	}

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	res, err := seed(context.Background(), db, f)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to seed database")
	}
	logging.Info().
		Int("users", len(res.Users)).
		Int64("tags_created", res.Tags).
		Int64("ingredients_created", res.Ingredients).
		Msg("seed complete")

	tokens := service.NewTokenService(cfg.JWTSecret)
	for _, u := range res.Users {
		token, err := tokens.GenerateToken(u.ID, u.Username, *tokenTTL)
		if err != nil {
			logging.Fatal().Err(err).Str("username", u.Username).Msg("failed to generate token")
		}
		fmt.Printf("%s\t%s\n", u.Username, token)
	}
}
