package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/darsa-school/darsa-api/internal/authz"
	"github.com/darsa-school/darsa-api/internal/dto"
	"github.com/darsa-school/darsa-api/internal/models"
	"github.com/darsa-school/darsa-api/internal/repository"
)

// Sentinel errors for authentication. Pending and rejected accounts fail with
// distinct messages; bad credentials never reveal which factor was wrong.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrAccountPending     = errors.New("account is awaiting approval")
	ErrAccountRejected    = errors.New("account has been rejected")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// TokenConfig carries the signing material and lifetimes for issued tokens.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// AuthService authenticates credentials and manages the session token pair.
// Students are only admitted once the approval workflow has approved them.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (dto.TokenPairResponse, error)
	Refresh(ctx context.Context, req dto.RefreshRequest) (dto.TokenPairResponse, error)
	Logout(ctx context.Context, req dto.RefreshRequest) error
	Me(ctx context.Context, userID uint) (dto.UserResponse, error)
}

type authService struct {
	users     repository.UserRepository
	tokens    TokenStore
	cfg       TokenConfig
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthService constructs the authentication service.
func NewAuthService(users repository.UserRepository, tokens TokenStore, cfg TokenConfig, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		tokens:    tokens,
		cfg:       cfg,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.TokenPairResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TokenPairResponse{}, err
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenPairResponse{}, ErrInvalidCredentials
		}
		return dto.TokenPairResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return dto.TokenPairResponse{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return dto.TokenPairResponse{}, ErrAccountInactive
	}

	// Correct credentials are not enough for students: the approval
	// workflow gates authentication until the account is approved.
	if user.Role == authz.RoleStudent && !user.IsApproved {
		if user.ApprovalStatus == models.ApprovalRejected {
			return dto.TokenPairResponse{}, ErrAccountRejected
		}
		return dto.TokenPairResponse{}, ErrAccountPending
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return dto.TokenPairResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")

	return pair, nil
}

func (s *authService) Refresh(ctx context.Context, req dto.RefreshRequest) (dto.TokenPairResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.TokenPairResponse{}, err
	}

	claims, err := s.parseRefresh(req.Refresh)
	if err != nil {
		return dto.TokenPairResponse{}, err
	}

	revoked, err := s.tokens.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return dto.TokenPairResponse{}, err
	}
	if revoked {
		return dto.TokenPairResponse{}, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return dto.TokenPairResponse{}, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, uint(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TokenPairResponse{}, ErrInvalidToken
		}
		return dto.TokenPairResponse{}, err
	}

	if !user.IsActive {
		return dto.TokenPairResponse{}, ErrAccountInactive
	}
	if user.Role == authz.RoleStudent && !user.IsApproved {
		return dto.TokenPairResponse{}, ErrInvalidToken
	}

	// Rotate: the presented refresh token is revoked for its remaining life.
	if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
		if err := s.tokens.Blacklist(ctx, claims.ID, remaining); err != nil {
			return dto.TokenPairResponse{}, err
		}
	}

	return s.issuePair(user)
}

func (s *authService) Logout(ctx context.Context, req dto.RefreshRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	claims, err := s.parseRefresh(req.Refresh)
	if err != nil {
		return err
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	return s.tokens.Blacklist(ctx, claims.ID, remaining)
}

func (s *authService) Me(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *authService) issuePair(user models.User) (dto.TokenPairResponse, error) {
	now := time.Now()
	subject := strconv.FormatUint(uint64(user.ID), 10)

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.AccessTTL).Unix(),
	})
	accessString, err := access.SignedString([]byte(s.cfg.AccessSecret))
	if err != nil {
		return dto.TokenPairResponse{}, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTTL)),
	})
	refreshString, err := refresh.SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		return dto.TokenPairResponse{}, err
	}

	return dto.TokenPairResponse{
		Access:  accessString,
		Refresh: refreshString,
		User:    dto.NewUserResponse(user),
	}, nil
}

func (s *authService) parseRefresh(tokenString string) (jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(s.cfg.RefreshSecret), nil
	})
	if err != nil || !token.Valid {
		return jwt.RegisteredClaims{}, ErrInvalidToken
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return jwt.RegisteredClaims{}, ErrInvalidToken
	}

	return claims, nil
}
