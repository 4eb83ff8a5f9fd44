package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/redink-ai/redink/internal/models"
	"github.com/redink-ai/redink/internal/security"
	"github.com/redink-ai/redink/internal/store"
)

// Environment variables controlling the seeded first account.
const (
	EnvAdminUsername = "ADMIN_USERNAME"
	EnvAdminPassword = "ADMIN_PASSWORD"
)

const defaultAdminUsername = "admin"

// EnsureAdminUser seeds the first account when the user table is empty.
// Without ADMIN_PASSWORD a random password is generated and logged once.
func EnsureAdminUser(ctx context.Context, conn *gorm.DB) error {
	users := store.NewUserStore(conn)
	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := strings.TrimSpace(os.Getenv(EnvAdminUsername))
	if username == "" {
		username = defaultAdminUsername
	}
	password := os.Getenv(EnvAdminPassword)
	generated := false
	if password == "" {
		password, err = security.GenerateRandomString(16)
		if err != nil {
			return fmt.Errorf("app: generate admin password: %w", err)
		}
		generated = true
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return fmt.Errorf("app: hash admin password: %w", errHash)
	}
	user := models.User{
		Username: username,
		Name:     username,
		Password: hash,
		Active:   true,
	}
	if errCreate := users.Create(ctx, &user); errCreate != nil {
		return errCreate
	}

	if generated {
		log.WithFields(log.Fields{
			"username": username,
			"password": password,
		}).Warn("seeded first account with a generated password, change it after login")
	} else {
		log.WithField("username", username).Info("seeded first account")
	}
	return nil
}
