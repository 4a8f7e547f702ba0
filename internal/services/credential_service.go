package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"event-ticketing/internal/status"
	"event-ticketing/models"
	"event-ticketing/monitoring"
	"event-ticketing/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"
)

const (
	passwordCost = 12
	otpCost      = 10
)

// AdminRepository persists admins. FindByEmail returns (nil, nil) when no
// admin matches.
type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
	Save(ctx context.Context, admin *models.Admin) error
}

// OtpSender delivers a login code to an admin.
type OtpSender interface {
	SendOtp(ctx context.Context, admin *models.Admin, code string) error
}

type CreateAdminInput struct {
	FullName  string `json:"fullName"`
	BrandName string `json:"brandName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

func (in CreateAdminInput) validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&in.Phone, validation.Length(0, 32)),
	)
	if err != nil {
		return status.NewValidation("credential", err.Error())
	}
	return nil
}

type CredentialService struct {
	admins    AdminRepository
	sender    OtpSender
	monitor   *monitoring.Monitor
	otpTTL    time.Duration
	otpLength int
	now       func() time.Time
}

func NewCredentialService(admins AdminRepository, sender OtpSender, monitor *monitoring.Monitor, otpTTL time.Duration, otpLength int) *CredentialService {
	return &CredentialService{
		admins:    admins,
		sender:    sender,
		monitor:   monitor,
		otpTTL:    otpTTL,
		otpLength: otpLength,
		now:       time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *CredentialService) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	admin, err := s.admins.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("credentialService.FindByEmail: %w", err)
	}
	return admin, nil
}

func (s *CredentialService) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	admin, err := s.admins.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("credentialService.FindByID: %w", err)
	}
	if admin == nil {
		return nil, status.ErrInvalidToken
	}
	return admin, nil
}

// Create registers a new admin with a bcrypt-hashed password.
func (s *CredentialService) Create(ctx context.Context, in CreateAdminInput) (*models.Admin, error) {
	in.Email = normalizeEmail(in.Email)
	if err := in.validate(); err != nil {
		return nil, err
	}

	existing, err := s.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, status.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("credentialService.Create: hash password: %w", err)
	}

	admin := &models.Admin{
		FullName:     strings.TrimSpace(in.FullName),
		BrandName:    strings.TrimSpace(in.BrandName),
		Email:        in.Email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, status.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("credentialService.Create: %w", err)
	}

	slog.Info("admin created", "adminId", admin.ID, "email", admin.Email)
	return admin, nil
}

// BeginLogin checks the password and mails a fresh OTP. Unknown emails and
// wrong passwords fail identically.
func (s *CredentialService) BeginLogin(ctx context.Context, email, password string) error {
	admin, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if admin == nil {
		s.monitor.TrackLogin("password", "unknown_email")
		return status.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.monitor.TrackLogin("password", "mismatch")
		return status.ErrInvalidCredentials
	}

	if err := s.issueOtp(ctx, admin); err != nil {
		return err
	}
	s.monitor.TrackLogin("password", "ok")
	return nil
}

// VerifyOtp consumes the stored OTP and returns the verified admin.
func (s *CredentialService) VerifyOtp(ctx context.Context, email, code string) (*models.Admin, error) {
	admin, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if admin == nil || !admin.HasOtp() {
		s.monitor.TrackLogin("otp", "missing")
		return nil, status.ErrInvalidOtp
	}

	if !s.now().Before(*admin.OtpExpiresAt) {
		s.monitor.TrackLogin("otp", "expired")
		return nil, status.ErrOtpExpired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.OtpHash), []byte(strings.TrimSpace(code))); err != nil {
		s.monitor.TrackLogin("otp", "mismatch")
		return nil, status.ErrInvalidOtp
	}

	admin.ClearOtp()
	if err := s.admins.Save(ctx, admin); err != nil {
		return nil, fmt.Errorf("credentialService.VerifyOtp: %w", err)
	}

	s.monitor.TrackLogin("otp", "ok")
	return admin, nil
}

// ResendOtp issues a new code unless the previous one is still live.
func (s *CredentialService) ResendOtp(ctx context.Context, email string) error {
	admin, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if admin == nil {
		return status.ErrInvalidCredentials
	}

	if admin.HasLiveOtp(s.now()) {
		s.monitor.TrackLogin("resend", "cooldown")
		return status.ErrTooManyRequests
	}

	if err := s.issueOtp(ctx, admin); err != nil {
		return err
	}
	s.monitor.TrackLogin("resend", "ok")
	return nil
}

func (s *CredentialService) issueOtp(ctx context.Context, admin *models.Admin) error {
	code, err := utils.GenerateOTP(s.otpLength)
	if err != nil {
		return fmt.Errorf("credentialService.issueOtp: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), otpCost)
	if err != nil {
		return fmt.Errorf("credentialService.issueOtp: hash otp: %w", err)
	}

	admin.SetOtp(string(hash), s.now().Add(s.otpTTL))
	if err := s.admins.Save(ctx, admin); err != nil {
		return fmt.Errorf("credentialService.issueOtp: %w", err)
	}

	if err := s.sender.SendOtp(ctx, admin, code); err != nil {
		slog.Error("credentialService.issueOtp()", "adminId", admin.ID, "error", err)
		return fmt.Errorf("credentialService.issueOtp: send: %w: %w", status.ErrUpstream, err)
	}
	return nil
}
