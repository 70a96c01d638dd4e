package service

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"wedding-invitation/internal/apperr"
	"wedding-invitation/internal/models"
)

const (
	MsgRequiredFields = "Semua field yang wajib harus diisi!"
	MsgInvalidPhone   = "Nomor WhatsApp harus berupa 10-15 digit angka"
	MsgInvalidAttend  = "Status kehadiran tidak valid"
	MsgInvalidGuests  = "Jumlah tamu harus antara 1 dan 10"
	MsgDuplicatePhone = "Nomor WhatsApp ini sudah terdaftar. Silakan update data Anda jika ingin berubah."
	MsgWishRequired   = "Nama dan pesan harus diisi!"
	MsgRSVPNotFound   = "RSVP tidak ditemukan"
	MsgInvalidJSON    = "Format data tidak valid"
)

var phonePattern = regexp.MustCompile(`^\d{10,15}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", validatePhone)
	_ = v.RegisterValidation("attendance", validateAttendance)
	return v
}

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

func validateAttendance(fl validator.FieldLevel) bool {
	return models.Attendance(fl.Field().String()).Valid()
}

// RSVPInput carries the mutable RSVP fields for create and update.
type RSVPInput struct {
	Name       string            `json:"name" validate:"required"`
	Phone      string            `json:"phone" validate:"required,phone"`
	Email      string            `json:"email"`
	Attendance models.Attendance `json:"attendance" validate:"required,attendance"`
	Guests     models.GuestCount `json:"guests" validate:"required,min=1,max=10"`
	Allergies  string            `json:"allergies"`
	Message    string            `json:"message"`
}

func (in *RSVPInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Attendance = models.Attendance(strings.TrimSpace(string(in.Attendance)))
	// same matching as the list filter; unknown values are left for validation
	if a, err := models.ParseAttendance(string(in.Attendance)); err == nil {
		in.Attendance = a
	}
	in.Allergies = strings.TrimSpace(in.Allergies)
	in.Message = strings.TrimSpace(in.Message)
}

// WishInput carries a new wish.
type WishInput struct {
	Name    string `json:"name" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (in *WishInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Message = strings.TrimSpace(in.Message)
}

// validateRSVP reports missing fields before format problems, so a half
// filled form gets the generic "required" message.
func validateRSVP(ctx context.Context, in RSVPInput) error {
	errs := structErrors(ctx, in)
	if len(errs) == 0 {
		return nil
	}

	for _, fe := range errs {
		if fe.Tag() == "required" {
			return apperr.Validation(MsgRequiredFields).WithDetail("missing field %q", fe.Field())
		}
	}

	fe := errs[0]
	var msg string
	switch fe.Field() {
	case "phone":
		msg = MsgInvalidPhone
	case "attendance":
		msg = MsgInvalidAttend
	case "guests":
		msg = MsgInvalidGuests
	default:
		msg = MsgRequiredFields
	}
	return apperr.Validation(msg).WithDetail("field %q failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
}

func validateWish(ctx context.Context, in WishInput) error {
	errs := structErrors(ctx, in)
	if len(errs) == 0 {
		return nil
	}
	return apperr.Validation(MsgWishRequired).WithDetail("missing field %q", errs[0].Field())
}

func structErrors(ctx context.Context, s any) validator.ValidationErrors {
	err := validate.StructCtx(ctx, s)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		return vErrs
	}
	return nil
}
