package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/mail"
	"strings"
	"time"
	"thundercipher/internal/common"
	"thundercipher/internal/common/security"
	"thundercipher/internal/domain/model"
	"thundercipher/internal/domain/repository"
	"thundercipher/internal/platform/config"

	"github.com/google/uuid"
)

// CodeStore keeps one-time verification codes. Take must consume the
// code so it cannot be replayed.
type CodeStore interface {
	Put(ctx context.Context, key, code string, ttl time.Duration) error
	Take(ctx context.Context, key string) (string, error)
}

// Mailer delivers OTP messages. The server ships a log-backed
// implementation; SMTP is a deployment concern.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

const (
	otpSignupPrefix   = "otp:signup:"
	otpRecoveryPrefix = "otp:recovery:"
)

type AuthService struct {
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	codes       CodeStore
	mailer      Mailer
}

func NewAuthService(userRepo repository.UserRepository, profileRepo repository.ProfileRepository, codes CodeStore, mailer Mailer) *AuthService {
	return &AuthService{userRepo: userRepo, profileRepo: profileRepo, codes: codes, mailer: mailer}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	LoginField string `json:"login_field"` // Can be username or email
	Password   string `json:"password"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
	// Set when the signup verification code could not be delivered;
	// the account exists and /resend-otp recovers.
	CodeDeliveryFailed bool `json:"code_delivery_failed,omitempty"`
}

// CurrentUser is the session projection: auth identity plus live
// scoring numbers, replacing the SPA's hardcoded mock values.
type CurrentUser struct {
	User     *model.User             `json:"user"`
	Standing *model.LeaderboardEntry `json:"standing,omitempty"`
}

func validateSignup(req SignupRequest) error {
	if len(req.Username) < 3 || len(req.Username) > 32 {
		return fmt.Errorf("username must be 3-32 characters: %w", common.ErrValidation)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("invalid email address: %w", common.ErrValidation)
	}
	if len(req.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", common.ErrValidation)
	}
	return nil
}

func generateOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if err := validateSignup(req); err != nil {
		return nil, err
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          strings.ToLower(req.Email),
		HashedPassword: hashedPassword,
		Role:           model.RoleUser,
	}
	profile := &model.Profile{ID: user.ID, Username: user.Username}

	if err := s.userRepo.CreateWithProfile(ctx, user, profile); err != nil {
		// Repo might return common.ErrConflict
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// The account is committed at this point. A failed code issue must
	// not fail the signup, or a retry would hit the duplicate conflict;
	// the client is told to use /resend-otp instead.
	codeDeliveryFailed := false
	if err := s.issueOTP(ctx, otpSignupPrefix, user.Email, "Verify your ThunderCipher account"); err != nil {
		log.Printf("ERROR: failed to issue signup code for %s: %v", user.Email, err)
		codeDeliveryFailed = true
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = "" // Clear before returning
	return &AuthResponse{User: user, Token: token, CodeDeliveryFailed: codeDeliveryFailed}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.LoginField == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	// Try finding by email first, then by username
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(req.LoginField))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			user, err = s.userRepo.FindByUsername(ctx, req.LoginField)
		}
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // Generic message for security
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, req VerifyEmailRequest) error {
	email := strings.ToLower(req.Email)
	if email == "" || req.Code == "" {
		return common.ErrBadRequest
	}
	stored, err := s.codes.Take(ctx, otpSignupPrefix+email)
	if err != nil {
		return fmt.Errorf("failed to read verification code: %w", err)
	}
	if stored == "" || stored != req.Code {
		return common.ErrCodeExpired
	}
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user for verification: %w", err)
	}
	return s.userRepo.MarkEmailVerified(ctx, user.ID)
}

func (s *AuthService) ResendOTP(ctx context.Context, req ResendOTPRequest) error {
	email := strings.ToLower(req.Email)
	if _, err := s.userRepo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Do not disclose which addresses have accounts.
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	return s.issueOTP(ctx, otpSignupPrefix, email, "Verify your ThunderCipher account")
}

func (s *AuthService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	email := strings.ToLower(req.Email)
	if _, err := s.userRepo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	return s.issueOTP(ctx, otpRecoveryPrefix, email, "ThunderCipher password reset")
}

func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	email := strings.ToLower(req.Email)
	if email == "" || req.Code == "" {
		return common.ErrBadRequest
	}
	if len(req.NewPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters: %w", common.ErrValidation)
	}
	stored, err := s.codes.Take(ctx, otpRecoveryPrefix+email)
	if err != nil {
		return fmt.Errorf("failed to read recovery code: %w", err)
	}
	if stored == "" || stored != req.Code {
		return common.ErrCodeExpired
	}
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user for reset: %w", err)
	}
	hashed, err := security.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, hashed)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*CurrentUser, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	user.HashedPassword = ""

	standing, err := s.profileRepo.MyStanding(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to load standing: %w", err)
	}
	return &CurrentUser{User: user, Standing: standing}, nil
}

func (s *AuthService) issueOTP(ctx context.Context, prefix, email, subject string) error {
	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	if err := s.codes.Put(ctx, prefix+email, code, config.AppConfig.OTPTTL); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}
	body := "Your verification code is " + code
	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		return fmt.Errorf("failed to send code: %w", err)
	}
	return nil
}
