package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"ewait/internal/analytics"
	"ewait/internal/locations"
	"ewait/internal/queues"
	"ewait/internal/shared/apperrors"
	"ewait/internal/shared/config"
	"ewait/internal/shared/constants"
	"ewait/internal/shared/utils/validation"
	"ewait/internal/users"
	"ewait/pkg/cache"
	"ewait/pkg/logger"
)

var (
	ErrInvalidCredentials = apperrors.Unauthorized("Invalid email or password")
	ErrInvalidToken       = apperrors.Unauthorized("Invalid or expired refresh token")
	ErrEmailTaken         = apperrors.Conflict("Email already registered")
)

type Service interface {
	SetCacheService(cacheService cache.Service)
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error)
}

type service struct {
	repo         Repository
	jwt          config.JWTConfig
	tracker      analytics.Tracker
	cacheService cache.Service
	bcryptCost   int
	now          func() time.Time
}

func NewService(repo Repository, cfg config.JWTConfig, tracker analytics.Tracker) Service {
	return &service{
		repo:       repo,
		jwt:        cfg,
		tracker:    tracker,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// Register creates the owner, a location named after the business and its default queue
func (s *service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	businessName := strings.TrimSpace(req.BusinessName)
	user := &users.User{
		Email:        email,
		Name:         businessName,
		PasswordHash: string(hashed),
		Role:         users.RoleAdmin,
		Plan:         users.PlanFree,
	}
	location := &locations.Location{
		Name:   businessName,
		Phone:  req.Phone,
		Queues: []queues.Queue{locations.DefaultQueue()},
	}
	if err := s.repo.CreateBusiness(ctx, user, location); err != nil {
		return nil, fmt.Errorf("failed to register business: %w", err)
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, err
	}

	s.track(ctx, analytics.EventUserRegister, analytics.Refs{UserID: &user.ID, LocationID: &location.ID})
	logger.GetDefault().LogAuthSuccess(ctx, user.ID.String(), "register")

	return &AuthResponse{
		User:       toUserResponse(user),
		LocationID: &location.ID,
		TokenPair:  *pair,
	}, nil
}

func (s *service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.generateTokenPair(user)
	if err != nil {
		return nil, err
	}

	s.track(ctx, analytics.EventUserLogin, analytics.Refs{UserID: &user.ID})
	logger.GetDefault().LogAuthSuccess(ctx, user.ID.String(), "password")

	return &AuthResponse{User: toUserResponse(user), TokenPair: *pair}, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseToken(refreshToken)
	if err != nil || claims.Type != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// the account may have been removed since the token was issued
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.generateTokenPair(user)
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	if s.cacheService == nil {
		return s.loadUser(ctx, userID)
	}

	var resp UserResponse
	err := s.cacheService.GetOrSet(ctx, constants.BuildUserProfileKey(userID.String()), constants.TTL_USER_PROFILE,
		func() (interface{}, error) {
			return s.loadUser(ctx, userID)
		}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) loadUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *service) generateTokenPair(user *users.User) (*TokenPair, error) {
	now := s.now()

	access, err := s.signToken(user, TokenTypeAccess, now, s.jwt.JWTExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := s.signToken(user, TokenTypeRefresh, now, s.jwt.RefreshExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwt.JWTExpiresIn.Seconds()),
	}, nil
}

func (s *service) signToken(user *users.User, tokenType string, now time.Time, ttl time.Duration) (string, error) {
	claims := JWTClaims{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   string(user.Role),
		Type:   tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwt.Secret))
}

func (s *service) parseToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwt.Secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenMalformed
	}
	return claims, nil
}

func (s *service) track(ctx context.Context, event analytics.EventName, refs analytics.Refs) {
	if s.tracker != nil {
		s.tracker.Track(ctx, event, refs)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
