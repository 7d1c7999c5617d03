package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/api/middleware"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/config"
	appErrors "github.com/lucasferreira-dev/food-delivery-platform/internal/errors"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	repository "github.com/lucasferreira-dev/food-delivery-platform/internal/repositories"
	"github.com/lucasferreira-dev/food-delivery-platform/pkg/sendGrid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, req *models.ChangePasswordRequest) error
	// ForgotPassword always succeeds from the caller's perspective so the
	// endpoint does not leak which emails exist.
	ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
}

type userService struct {
	repo          repository.UserRepository
	rateLimitRepo repository.RateLimitRepository
	tokenRepo     repository.TokenRepository
	emailService  sendGrid.EmailService
	security      config.Security
}

func NewUserService(
	repo repository.UserRepository,
	rateLimitRepo repository.RateLimitRepository,
	tokenRepo repository.TokenRepository,
	emailService sendGrid.EmailService,
	security config.Security,
) UserService {
	return &userService{
		repo:          repo,
		rateLimitRepo: rateLimitRepo,
		tokenRepo:     tokenRepo,
		emailService:  emailService,
		security:      security,
	}
}

func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {

	existingUser, _ := s.repo.GetUserByEmail(ctx, req.Email)
	if existingUser != nil {
		return nil, appErrors.DuplicateEntryError("Email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.InternalError("Failed to secure password").WithError(err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hashedPassword),
	}

	err = s.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to create user").WithError(err)
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {

	allowed, remaining, retryAfter, err := s.rateLimitRepo.CheckLoginRateLimit(ctx, req.Email)
	if err != nil {
		return nil, appErrors.ThirdPartyError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		return &models.LoginResponse{
			Success:    false,
			Message:    "Too many login attempts. Please try again later.",
			RetryAfter: retryAfter,
		}, nil
	}

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return &models.LoginResponse{
			Success:        false,
			Message:        "Invalid email or password",
			RemainingTries: int64(remaining),
		}, nil
	}

	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.security.TokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.security.JWTKey))
	if err != nil {
		return nil, appErrors.InternalError("Failed to generate authentication token").WithError(err)
	}

	return &models.LoginResponse{
		Success:   true,
		Token:     tokenString,
		ExpiresIn: int(time.Until(claims.ExpiresAt.Time).Seconds()),
		User:      user,
	}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, appErrors.NotFoundError("User not found").WithError(err)
	}

	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, appErrors.NotFoundError("User not found").WithError(err)
	}

	if req.Name != "" {
		user.Name = req.Name
	}

	if req.Phone != "" {
		user.Phone = req.Phone
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, appErrors.DatabaseError("Failed to update profile").WithError(err)
	}

	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, id uuid.UUID, req *models.ChangePasswordRequest) error {

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return appErrors.NotFoundError("User not found").WithError(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		return appErrors.UnauthorizedError("Current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.InternalError("Failed to secure password").WithError(err)
	}

	if err := s.repo.UpdatePassword(ctx, id, string(hashedPassword)); err != nil {
		return appErrors.DatabaseError("Failed to update password").WithError(err)
	}

	return nil
}

func (s *userService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error {

	logger := middleware.LoggerFromContext(ctx)

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Debug("Password reset requested for unknown email")
			return nil
		}
		return appErrors.DatabaseError("Failed to look up user").WithError(err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return appErrors.InternalError("Failed to generate reset token").WithError(err)
	}

	token := hex.EncodeToString(buf)

	if err := s.tokenRepo.StoreResetToken(ctx, token, user.ID, s.security.ResetTokenTTL); err != nil {
		return appErrors.ThirdPartyError("Failed to store reset token").WithError(err)
	}

	emailReq := &sendGrid.EmailRequest{
		To:      user.Email,
		Subject: "Redefinição de senha",
		Content: fmt.Sprintf("Olá %s, use o código abaixo para redefinir a sua senha:\n\n%s\n\nO código expira em %s.",
			user.Name, token, s.security.ResetTokenTTL),
	}

	if err := s.emailService.Send(ctx, emailReq); err != nil {
		logger.Error("Failed to send password reset email", slog.Any("error", err))
		return appErrors.ThirdPartyError("Failed to send reset email").WithError(err)
	}

	return nil
}

func (s *userService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {

	userID, err := s.tokenRepo.ConsumeResetToken(ctx, req.Token)
	if err != nil {
		return appErrors.UnauthorizedError("Invalid or expired reset token").WithError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.InternalError("Failed to secure password").WithError(err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		return appErrors.DatabaseError("Failed to update password").WithError(err)
	}

	return nil
}
