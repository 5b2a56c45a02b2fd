package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/infrastructure/clock"
	"github.com/taskmaster/planner/internal/infrastructure/config"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
	"github.com/taskmaster/planner/internal/ports"
)

// Claims represents the JWT claims
type Claims struct {
	jwt.RegisteredClaims
}

// AuthService issues and validates API bearer tokens
type AuthService struct {
	jwtConfig config.JWTConfig
	clock     clock.Clock
	validate  *validator.Validate
	logger    *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(jwtConfig config.JWTConfig, clk clock.Clock, validate *validator.Validate, log *logger.Logger) *AuthService {
	return &AuthService{
		jwtConfig: jwtConfig,
		clock:     clk,
		validate:  validate,
		logger:    log.WithComponent("auth_service"),
	}
}

// IssueToken signs an HS256 token for the subject
func (s *AuthService) IssueToken(req ports.TokenRequest) (*ports.TokenResponse, error) {
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}
	if s.jwtConfig.Secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.jwtConfig.ExpiresIn)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strings.TrimSpace(req.Subject),
			Issuer:    s.jwtConfig.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Infow("API token issued", "subject", claims.Subject, "expires_at", expiresAt.UTC().Format(time.RFC3339))

	return &ports.TokenResponse{
		AccessToken: tokenString,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwtConfig.ExpiresIn.Seconds()),
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// ValidateToken validates a JWT token and returns claims
func (s *AuthService) ValidateToken(tokenString string) (*ports.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	},
		jwt.WithIssuer(s.jwtConfig.Issuer),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", entities.ErrUnauthorized)
	}

	return &ports.Claims{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}, nil
}
