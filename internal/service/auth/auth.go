// Package auth turns a bearer token into a Session. Tokens are HMAC-signed JWTs
// whose subject is the user id; the role comes from a RoleDirectory.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

// ErrUnauthenticated is returned for missing, malformed or expired tokens.
var ErrUnauthenticated = errors.New("unauthenticated")

// RoleDirectory resolves the stored role of a user.
type RoleDirectory interface {
	LookupRole(ctx context.Context, userID string) (models.Role, error)
}

// Claims carried by a session token.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Service verifies and issues session tokens.
type Service struct {
	secret    []byte
	directory RoleDirectory
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a token service. A nil directory makes everyone a guest.
func NewService(secret string, directory RoleDirectory, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: signing secret must not be empty")
	}
	return &Service{
		secret:    []byte(secret),
		directory: directory,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Authenticate verifies token and resolves the caller's role. A failed or
// missing role lookup downgrades the user to guest instead of rejecting them.
func (s *Service) Authenticate(ctx context.Context, token string) (models.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Session{}, fmt.Errorf("%w: token required", ErrUnauthenticated)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return models.Session{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return models.Session{}, fmt.Errorf("%w: subject claim missing", ErrUnauthenticated)
	}

	return models.Session{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   s.resolveRole(ctx, claims.Subject),
	}, nil
}

func (s *Service) resolveRole(ctx context.Context, userID string) models.Role {
	if s.directory == nil {
		return models.RoleGuest
	}
	role, err := s.directory.LookupRole(ctx, userID)
	if err != nil {
		s.logger.Warn("role lookup failed, treating user as guest", zap.String("uid", userID), zap.Error(err))
		return models.RoleGuest
	}
	return models.ParseRole(string(role))
}

// IssueToken signs a token for userID that expires after ttl.
func (s *Service) IssueToken(userID, email string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("auth: user id must not be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := s.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// StaticDirectory grants the owner role to a fixed set of user ids.
type StaticDirectory map[string]bool

// NewStaticDirectory builds a directory from owner ids.
func NewStaticDirectory(ownerIDs []string) StaticDirectory {
	d := make(StaticDirectory, len(ownerIDs))
	for _, id := range ownerIDs {
		if id = strings.TrimSpace(id); id != "" {
			d[id] = true
		}
	}
	return d
}

// LookupRole implements RoleDirectory.
func (d StaticDirectory) LookupRole(_ context.Context, userID string) (models.Role, error) {
	if d[userID] {
		return models.RoleOwner, nil
	}
	return models.RoleGuest, nil
}
