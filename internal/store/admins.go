package store

import (
	"context"
	"errors"
	"strings"

	"event-ticketing/internal/status"
	"event-ticketing/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

type AdminRepository struct {
	app core.App
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	record, err := findOne(ctx, r.app, collectionAdmins, dbx.HashExp{"email": email})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return adminFromRecord(record), nil
}

func (r *AdminRepository) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	record, err := findOne(ctx, r.app, collectionAdmins, dbx.HashExp{"id": id})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return adminFromRecord(record), nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	record, err := newRecord(r.app, collectionAdmins)
	if err != nil {
		return err
	}
	applyAdmin(record, admin)

	if err := r.app.SaveWithContext(ctx, record); err != nil {
		if isDuplicateEmail(err) {
			return status.ErrDuplicateEmail
		}
		return err
	}

	admin.ID = record.Id
	admin.Created = record.GetDateTime("created").Time()
	return nil
}

func (r *AdminRepository) Save(ctx context.Context, admin *models.Admin) error {
	record, err := findOne(ctx, r.app, collectionAdmins, dbx.HashExp{"id": admin.ID})
	if err != nil {
		return err
	}
	applyAdmin(record, admin)
	return r.app.SaveWithContext(ctx, record)
}

func applyAdmin(record *core.Record, admin *models.Admin) {
	record.Set("full_name", admin.FullName)
	record.Set("brand_name", admin.BrandName)
	record.Set("email", admin.Email)
	record.Set("phone", admin.Phone)
	record.Set("password_hash", admin.PasswordHash)
	record.Set("two_factor", admin.TwoFactor)
	record.Set("otp_hash", admin.OtpHash)
	record.Set("otp_verified", admin.OtpVerified)
	if admin.OtpExpiresAt != nil {
		record.Set("otp_expires_at", *admin.OtpExpiresAt)
	} else {
		record.Set("otp_expires_at", "")
	}
}

func adminFromRecord(record *core.Record) *models.Admin {
	admin := &models.Admin{
		ID:           record.Id,
		FullName:     record.GetString("full_name"),
		BrandName:    record.GetString("brand_name"),
		Email:        record.GetString("email"),
		Phone:        record.GetString("phone"),
		PasswordHash: record.GetString("password_hash"),
		TwoFactor:    record.GetBool("two_factor"),
		OtpHash:      record.GetString("otp_hash"),
		OtpVerified:  record.GetBool("otp_verified"),
		Created:      record.GetDateTime("created").Time(),
	}
	if exp := record.GetDateTime("otp_expires_at"); !exp.IsZero() {
		t := exp.Time()
		admin.OtpExpiresAt = &t
	}
	return admin
}

func isDuplicateEmail(err error) bool {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		if _, ok := verrs["email"]; ok {
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed: admins.email")
}
