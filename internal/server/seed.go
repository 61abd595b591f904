package server

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin creates the educator account on first boot. Idempotent:
// an existing account with the same email is left untouched. Skipped
// entirely when no password is configured.
func SeedAdmin(ctx context.Context, logger *slog.Logger, identity *IdentityStore, email, password string) error {
	if password == "" {
		logger.Warn("no admin password configured, educator account not seeded")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := identity.EnsureAdmin(ctx, email, string(hash)); err != nil {
		return err
	}

	logger.Info("educator account ready", "email", email)
	return nil
}
