package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/rockae-api/config"
	"github.com/oksasatya/rockae-api/internal/domain/apperror"
	"github.com/oksasatya/rockae-api/internal/domain/entity"
	pginfra "github.com/oksasatya/rockae-api/internal/infrastructure/postgres"
	"github.com/oksasatya/rockae-api/pkg/helpers"
	"github.com/oksasatya/rockae-api/pkg/validation"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	email := flag.String("email", "admin@rockae.local", "admin email")
	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "Admin12345", "admin password")
	flag.Parse()

	if msg := validation.CheckPassword(*password); msg != "" {
		log.Fatalf("weak password: %s", msg)
	}

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 1, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	users := pginfra.NewUserRepository(pool)
	if u, err := users.GetByEmail(ctx, *email); err == nil {
		fmt.Printf("admin already present: user_id=%s email=%s\n", u.UserID, u.Email)
		return
	} else if !apperror.IsKind(err, apperror.KindNotFound) {
		log.Fatalf("lookup admin: %v", err)
	}

	hash, err := helpers.HashPassword(*password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	u := &entity.User{
		Username:     *username,
		Email:        *email,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      true,
		IsSuperuser:  true,
		IsVerified:   true,
	}
	if err := users.Create(ctx, u); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: user_id=%s email=%s username=%s\n", u.UserID, u.Email, u.Username)
}
