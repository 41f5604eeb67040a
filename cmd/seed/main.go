// Package main seeds a development database with demo users and shipping
// addresses, then prints an access token for each created user so the API
// can be exercised with curl.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/utafrali/accounts/internal/auth"
	"github.com/utafrali/accounts/internal/config"
	"github.com/utafrali/accounts/internal/domain"
	"github.com/utafrali/accounts/internal/repository/postgres"
	"github.com/utafrali/accounts/internal/service"
	"github.com/utafrali/accounts/migrations"
	"github.com/utafrali/accounts/pkg/database"
	apperrors "github.com/utafrali/accounts/pkg/errors"
	"github.com/utafrali/accounts/pkg/logger"
)

// --------------------------------------------------------------------------
// Seed data definitions
// --------------------------------------------------------------------------

type addressDef struct {
	street, city, region, postalCode, country string
}

type userDef struct {
	firstName, paternal, maternal, email, role string
	addresses                                  []addressDef
}

var seedUsers = []userDef{
	{
		firstName: "Admin", paternal: "Cuentas", email: "admin@example.com", role: domain.RoleAdmin,
	},
	{
		firstName: "Ana", paternal: "Lopez", maternal: "Garcia", email: "ana@example.com", role: domain.RoleCustomer,
		addresses: []addressDef{
			{"Av. Reforma 222", "Ciudad de Mexico", "CDMX", "06600", "Mexico"},
			{"Calle Morelos 15", "Guadalajara", "Jalisco", "44100", "Mexico"},
		},
	},
	{
		firstName: "Luis", paternal: "Perez", maternal: "Ruiz", email: "luis@example.com", role: domain.RoleCustomer,
		addresses: []addressDef{
			{"1200 Main St", "Austin", "Texas", "78701-1234", "USA"},
		},
	},
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := run(); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New("accounts-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	hash, err := service.HashPassword(getEnv("SEED_PASSWORD", "password123"))
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	users := postgres.NewUserRepository(pool)
	addresses := postgres.NewAddressRepository(pool)
	tokens := auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour)

	for _, def := range seedUsers {
		user := &domain.User{
			FirstName:        def.firstName,
			PaternalLastName: def.paternal,
			MaternalLastName: def.maternal,
			Email:            def.email,
			PasswordHash:     hash,
			Role:             def.role,
		}
		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyExists) {
				log.Info("user already seeded, skipping", slog.String("email", def.email))
				continue
			}
			return fmt.Errorf("create user %s: %w", def.email, err)
		}

		for _, a := range def.addresses {
			addr := &domain.ShippingAddress{
				UserID:     user.ID,
				Street:     a.street,
				City:       a.city,
				Region:     a.region,
				PostalCode: a.postalCode,
				Country:    a.country,
			}
			if err := addresses.Create(ctx, addr); err != nil {
				return fmt.Errorf("create address for %s: %w", def.email, err)
			}
		}

		token, err := tokens.GenerateAccessToken(user.ID, user.Email, user.Role)
		if err != nil {
			return fmt.Errorf("issue token for %s: %w", def.email, err)
		}

		log.Info("seeded user",
			slog.Int64("user_id", user.ID),
			slog.String("email", user.Email),
			slog.String("role", user.Role),
			slog.Int("addresses", len(def.addresses)),
		)
		fmt.Printf("%-20s %-8s %s\n", user.Email, user.Role, token)
	}

	return nil
}
