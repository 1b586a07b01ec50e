package app

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/ordernotify/golang_services/internal/notification_service/domain"
)

const (
	msgCustomersRequired     = "Invalid request: customers array is required"
	msgAtLeastOneCustomer    = "Invalid request: at least one customer is required"
	msgOrderReadyFields      = "Each customer must have name, phoneNumber, orderNumber, and date fields"
	msgReminderFields        = "Each customer must have name, phoneNumber, orderNumber, and initialPickupDate fields"
	msgInvalidPhoneFor       = "Invalid phone number for %s. Must be in format: +1XXXXXXXXXX"
	msgCustomerPhoneRequired = "Invalid request: customer phoneNumber is required"
	msgInvalidPhone          = "Invalid phone number. Must be in format: +1XXXXXXXXXX"
)

// BatchValidator checks a whole batch before any entry is processed.
type BatchValidator struct {
	validate *validator.Validate
}

func NewBatchValidator() *BatchValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("nanp_phone", func(fl validator.FieldLevel) bool {
		return domain.IsCanonicalPhoneNumber(fl.Field().String())
	})
	return &BatchValidator{validate: v}
}

// ValidateOrderReady rejects a nil batch, an empty batch, and any entry missing a field or
// carrying a non-canonical phone number. Entries are checked in order; the first problem wins.
func (b *BatchValidator) ValidateOrderReady(entries []domain.OrderReadyEntry) error {
	return validateBatch(b, entries, msgOrderReadyFields, func(e domain.OrderReadyEntry) string { return e.Name })
}

func (b *BatchValidator) ValidateReminders(entries []domain.ReminderEntry) error {
	return validateBatch(b, entries, msgReminderFields, func(e domain.ReminderEntry) string { return e.Name })
}

// ValidatePhoneNumber is used where a single phone number identifies the target.
func (b *BatchValidator) ValidatePhoneNumber(phone string) error {
	if phone == "" {
		return domain.NewValidationError(msgCustomerPhoneRequired)
	}
	if err := b.validate.Var(phone, "nanp_phone"); err != nil {
		return domain.NewValidationError(msgInvalidPhone)
	}
	return nil
}

func validateBatch[T any](b *BatchValidator, entries []T, fieldsMsg string, nameOf func(T) string) error {
	if entries == nil {
		return domain.NewValidationError(msgCustomersRequired)
	}
	if len(entries) == 0 {
		return domain.NewValidationError(msgAtLeastOneCustomer)
	}
	for i := range entries {
		err := b.validate.Struct(entries[i])
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return domain.NewValidationError(fieldsMsg)
		}
		for _, fe := range fieldErrs {
			if fe.Tag() == "required" {
				return domain.NewValidationError(fieldsMsg)
			}
		}
		return domain.NewValidationError(msgInvalidPhoneFor, nameOf(entries[i]))
	}
	return nil
}
