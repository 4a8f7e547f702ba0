package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"event-ticketing/internal/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestCredentialService(t *testing.T) (*CredentialService, *memoryAdmins, *MockOtpSender, *time.Time) {
	t.Helper()

	admins := newMemoryAdmins()
	sender := &MockOtpSender{}
	sender.On("SendOtp", mock.Anything, mock.Anything).Return(nil)

	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	service := NewCredentialService(admins, sender, nil, 5*time.Minute, 6)
	service.now = func() time.Time { return clock }

	_, err := service.Create(context.Background(), CreateAdminInput{
		FullName: "Ada Lovelace",
		Email:    "Ada@Example.com ",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	return service, admins, sender, &clock
}

func TestCredentialService_CreateNormalizesAndHashes(t *testing.T) {
	service, _, _, _ := setupTestCredentialService(t)

	admin, err := service.FindByEmail(context.Background(), "  ADA@example.COM")
	require.NoError(t, err)
	require.NotNil(t, admin)

	assert.Equal(t, "ada@example.com", admin.Email)
	assert.NotEqual(t, "correct-horse", admin.PasswordHash)
	assert.True(t, len(admin.PasswordHash) > 50)
}

func TestCredentialService_CreateDuplicateEmail(t *testing.T) {
	service, _, _, _ := setupTestCredentialService(t)

	_, err := service.Create(context.Background(), CreateAdminInput{
		FullName: "Impostor",
		Email:    "ada@example.com",
		Password: "another-pass",
	})
	assert.ErrorIs(t, err, status.ErrDuplicateEmail)
}

func TestCredentialService_CreateValidation(t *testing.T) {
	service, _, _, _ := setupTestCredentialService(t)

	_, err := service.Create(context.Background(), CreateAdminInput{FullName: "X", Email: "not-an-email", Password: "12345678"})
	assert.Equal(t, status.KindValidation, status.KindOf(err))

	_, err = service.Create(context.Background(), CreateAdminInput{FullName: "X", Email: "x@example.com", Password: "short"})
	assert.Equal(t, status.KindValidation, status.KindOf(err))
}

func TestCredentialService_FindByEmailAbsentIsNotAnError(t *testing.T) {
	service, _, _, _ := setupTestCredentialService(t)

	admin, err := service.FindByEmail(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, admin)
}

func TestCredentialService_BeginLoginUniformFailure(t *testing.T) {
	service, _, sender, _ := setupTestCredentialService(t)
	ctx := context.Background()

	unknown := service.BeginLogin(ctx, "nobody@example.com", "correct-horse")
	wrong := service.BeginLogin(ctx, "ada@example.com", "wrong-horse")

	assert.ErrorIs(t, unknown, status.ErrInvalidCredentials)
	assert.ErrorIs(t, wrong, status.ErrInvalidCredentials)
	assert.Equal(t, status.Message(unknown), status.Message(wrong))
	sender.AssertNotCalled(t, "SendOtp", mock.Anything, mock.Anything)
}

func TestCredentialService_LoginAndVerifyOtp(t *testing.T) {
	service, admins, sender, _ := setupTestCredentialService(t)
	ctx := context.Background()

	require.NoError(t, service.BeginLogin(ctx, "ada@example.com", "correct-horse"))
	code := sender.lastCode()
	require.Len(t, code, 6)

	stored, _ := admins.FindByEmail(ctx, "ada@example.com")
	assert.False(t, stored.OtpVerified)
	assert.True(t, stored.HasOtp())
	assert.NotEqual(t, code, stored.OtpHash)

	admin, err := service.VerifyOtp(ctx, "ada@example.com", code)
	require.NoError(t, err)
	assert.True(t, admin.OtpVerified)

	stored, _ = admins.FindByEmail(ctx, "ada@example.com")
	assert.False(t, stored.HasOtp())
	assert.Nil(t, stored.OtpExpiresAt)

	_, err = service.VerifyOtp(ctx, "ada@example.com", code)
	assert.ErrorIs(t, err, status.ErrInvalidOtp)
}

func TestCredentialService_VerifyOtpWrongCode(t *testing.T) {
	service, _, sender, _ := setupTestCredentialService(t)
	ctx := context.Background()

	require.NoError(t, service.BeginLogin(ctx, "ada@example.com", "correct-horse"))

	wrong := "000000"
	if sender.lastCode() == wrong {
		wrong = "111111"
	}
	_, err := service.VerifyOtp(ctx, "ada@example.com", wrong)
	assert.ErrorIs(t, err, status.ErrInvalidOtp)
}

func TestCredentialService_VerifyOtpExpired(t *testing.T) {
	service, _, sender, clock := setupTestCredentialService(t)
	ctx := context.Background()

	require.NoError(t, service.BeginLogin(ctx, "ada@example.com", "correct-horse"))
	*clock = clock.Add(5 * time.Minute)

	_, err := service.VerifyOtp(ctx, "ada@example.com", sender.lastCode())
	assert.ErrorIs(t, err, status.ErrOtpExpired)
}

func TestCredentialService_ResendOtpCooldown(t *testing.T) {
	service, _, sender, clock := setupTestCredentialService(t)
	ctx := context.Background()

	require.NoError(t, service.ResendOtp(ctx, "ada@example.com"))
	first := sender.lastCode()

	*clock = clock.Add(2 * time.Minute)
	assert.ErrorIs(t, service.ResendOtp(ctx, "ada@example.com"), status.ErrTooManyRequests)
	assert.Equal(t, first, sender.lastCode())

	*clock = clock.Add(3 * time.Minute)
	require.NoError(t, service.ResendOtp(ctx, "ada@example.com"))
	assert.Len(t, sender.codes, 2)
}

func TestCredentialService_ResendUnknownEmail(t *testing.T) {
	service, _, _, _ := setupTestCredentialService(t)

	err := service.ResendOtp(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, status.ErrInvalidCredentials)
}

func TestCredentialService_SendFailureIsUpstream(t *testing.T) {
	admins := newMemoryAdmins()
	sender := &MockOtpSender{}
	sender.On("SendOtp", mock.Anything, "ada@example.com").Return(errors.New("smtp down"))

	service := NewCredentialService(admins, sender, nil, 5*time.Minute, 6)
	_, err := service.Create(context.Background(), CreateAdminInput{FullName: "Ada", Email: "ada@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	err = service.BeginLogin(context.Background(), "ada@example.com", "correct-horse")
	assert.ErrorIs(t, err, status.ErrUpstream)
	sender.AssertExpectations(t)
}
