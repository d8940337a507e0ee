package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/skufinder/skufinder/internal/auth"
	"github.com/skufinder/skufinder/internal/model"
	"github.com/skufinder/skufinder/internal/repository"
)

type output struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Created bool   `json:"created"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "User store URL (postgres:// or a SQLite file path)")
		email       = flag.String("email", os.Getenv("SUPERADMIN_EMAIL"), "Admin email")
		password    = flag.String("password", os.Getenv("SUPERADMIN_PASSWORD"), "Admin password")
		reset       = flag.Bool("reset", false, "Reset the password if the account already exists")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if repository.BackendName(*databaseURL) == "memory" {
		fmt.Fprintln(os.Stderr, "a persistent DATABASE_URL is required")
		os.Exit(1)
	}
	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "email and password are required")
		os.Exit(1)
	}
	if err := auth.ValidatePassword(*password); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.Open(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open user store:", err)
		os.Exit(1)
	}
	defer repo.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	normalized := strings.ToLower(strings.TrimSpace(*email))
	result := output{Email: normalized, Role: string(model.RoleAdmin)}

	existing, err := repo.GetUserByEmail(ctx, normalized)
	switch {
	case err == nil:
		if !*reset {
			fmt.Fprintln(os.Stderr, "account already exists; use -reset to replace its password")
			os.Exit(1)
		}
		if err := repo.UpdatePassword(ctx, existing.ID, hash); err != nil {
			fmt.Fprintln(os.Stderr, "update password:", err)
			os.Exit(1)
		}
		result.UserID = existing.ID
	case errors.Is(err, repository.ErrUserNotFound):
		admin := &model.User{
			ID:           ulid.Make().String(),
			Email:        normalized,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
			Active:       true,
			CreatedAt:    time.Now().UTC(),
		}
		if err := repo.CreateUser(ctx, admin); err != nil {
			fmt.Fprintln(os.Stderr, "create admin:", err)
			os.Exit(1)
		}
		result.UserID = admin.ID
		result.Created = true
	default:
		fmt.Fprintln(os.Stderr, "check account:", err)
		os.Exit(1)
	}

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
		return
	}

	if result.Created {
		fmt.Printf("created admin %s (%s)\n", result.Email, result.UserID)
	} else {
		fmt.Printf("reset password for admin %s (%s)\n", result.Email, result.UserID)
	}
}
