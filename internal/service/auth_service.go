package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/cashdesk"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/config"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/dto"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/model"
	"github.com/Kaynanmcarvalho/OFICINA-sub008/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	// VerifyManager validates manager credentials for close-time
	// authorization. The manager must be active, hold the manager or admin
	// role, and belong to the same tenant as the session being closed.
	VerifyManager(ctx context.Context, tenantID uuid.UUID, creds dto.ManagerCredentials) (*model.User, error)
}

type authService struct {
	repo repository.UserRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	return s.tokenPair(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token invalid or expired")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("malformed token")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("malformed token")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("malformed token")
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Active {
		return nil, errors.New("user not found or inactive")
	}

	return s.tokenPair(user)
}

func (s *authService) VerifyManager(ctx context.Context, tenantID uuid.UUID, creds dto.ManagerCredentials) (*model.User, error) {
	user, err := s.repo.FindByUsername(ctx, creds.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, cashdesk.ErrInvalidManagerCredentials
	}
	if err != nil {
		// Store failure, not a credential problem. Propagate so the close is
		// reported as a generic failure instead of prompting for credentials.
		return nil, fmt.Errorf("verify manager: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, cashdesk.ErrInvalidManagerCredentials
	}
	if user.Role != model.RoleManager && user.Role != model.RoleAdmin {
		return nil, cashdesk.ErrInvalidManagerCredentials
	}
	if user.TenantID != tenantID {
		// Cross-tenant credentials never authorize anything, and the caller
		// learns nothing beyond "invalid".
		return nil, cashdesk.ErrInvalidManagerCredentials
	}
	return user, nil
}

func (s *authService) tokenPair(user *model.User) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User: dto.UserResponse{
			ID:       user.ID.String(),
			Username: user.Username,
			Name:     user.Name,
			Email:    user.Email,
			Role:     user.Role,
			TenantID: user.TenantID.String(),
			Active:   user.Active,
		},
	}, nil
}

func (s *authService) generateToken(user *model.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":   user.ID.String(),
		"username":  user.Username,
		"role":      user.Role,
		"tenant_id": user.TenantID.String(),
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
