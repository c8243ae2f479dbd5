// gentoken issues a bearer token for an existing directory user, for
// local development and operational access.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/saturnino-fabrica-de-software/shield/internal/config"
	"github.com/saturnino-fabrica-de-software/shield/internal/database"
	"github.com/saturnino-fabrica-de-software/shield/internal/directory"
	"github.com/saturnino-fabrica-de-software/shield/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	username := flag.String("username", "", "Directory username to issue a token for")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *username == "" {
		return fmt.Errorf("username flag is required")
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	user, err := repository.NewUserRepository(pool).GetByUsername(ctx, *username)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	jwtService := directory.NewJWTService(cfg.TokenSecret, cfg.TokenIssuer, *ttl)
	token, err := jwtService.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Printf("TOKEN=%s\n", token)
	return nil
}
