package identity

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/apperr"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// Credentials is the login form input.
type Credentials struct {
	Identifier string `validate:"required"`
	Password   string `validate:"required,min=6"`
}

// DetermineRole classifies a login identifier: nine digits is a NIM,
// eight digits is a NIDN, anything else is an admin username.
func DetermineRole(identifier string) Role {
	if identifier != "" && strings.IndexFunc(identifier, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		switch len(identifier) {
		case 9:
			return RoleStudent
		case 8:
			return RoleInstructor
		}
	}
	return RoleAdmin
}

// HashPassword hashes a plain password for storage.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Authenticator checks credentials against the directory.
type Authenticator struct {
	directory *Directory
	validate  *validator.Validate
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

func NewAuthenticator(directory *Directory, logger *slog.Logger, m *metrics.Metrics) *Authenticator {
	return &Authenticator{
		directory: directory,
		validate:  validator.New(),
		logger:    logger,
		metrics:   m,
	}
}

// Login resolves the user for the credentials. Unknown identifiers and wrong
// passwords produce the same error.
func (a *Authenticator) Login(ctx context.Context, creds Credentials) (User, error) {
	creds.Identifier = strings.TrimSpace(creds.Identifier)
	if err := a.validate.Struct(creds); err != nil {
		a.logger.WarnContext(ctx, "login validation failed", "error", err)
		return nil, apperr.Wrap(apperr.CodeInvalidCredentials, "invalid login input", err)
	}

	role := DetermineRole(creds.Identifier)
	user, err := a.directory.Lookup(role, creds.Identifier)
	if err != nil {
		a.metrics.RecordLogin(ctx, string(role), false)
		a.logger.InfoContext(ctx, "login rejected: unknown identifier", "role", role)
		return nil, apperr.New(apperr.CodeAuthFailed, "invalid identifier or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Base().PasswordHash), []byte(creds.Password)); err != nil {
		a.metrics.RecordLogin(ctx, string(role), false)
		a.logger.InfoContext(ctx, "login rejected: wrong password", "role", role, "key", user.Key())
		return nil, apperr.New(apperr.CodeAuthFailed, "invalid identifier or password")
	}

	a.metrics.RecordLogin(ctx, string(role), true)
	a.logger.InfoContext(ctx, "user logged in", "role", role, "key", user.Key())
	return user, nil
}
