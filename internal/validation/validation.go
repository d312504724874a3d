// Package validation checks user input before any store or remote call is made.
package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/models"
)

// Validator wraps go-playground/validator with the app's date tags and error kinds.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// New creates a validator with the date and notfuture tags registered.
func New() *Validator {
	val := &Validator{v: validator.New(), now: time.Now}

	val.v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" || name == "-" {
			return fld.Name
		}
		if i := strings.IndexByte(name, ','); i >= 0 {
			return name[:i]
		}
		return name
	})

	// Registration only fails on an empty tag name or nil func
	_ = val.v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(constants.DateFormat, fl.Field().String())
		return err == nil
	})
	_ = val.v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		t, err := time.Parse(constants.DateFormat, fl.Field().String())
		return err == nil && !t.After(val.now())
	})

	return val
}

var (
	defaultOnce sync.Once
	defaultVal  *Validator
)

// Default returns a shared validator instance.
func Default() *Validator {
	defaultOnce.Do(func() { defaultVal = New() })
	return defaultVal
}

// Struct validates s and returns a KindInvalidInput error describing every failed field.
func (v *Validator) Struct(op string, s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.E(op, errors.KindInvalidInput, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Field()+" "+friendlyMessage(fe))
	}
	sort.Strings(msgs)
	return errors.Ef(op, errors.KindInvalidInput, "%s", strings.Join(msgs, "; "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "date":
		return "must be a date in YYYY-MM-DD format"
	case "notfuture":
		return "must not be in the future"
	case "oneof":
		return "must be one of: " + e.Param()
	case "uuid":
		return "must be a valid id"
	default:
		return "is invalid"
	}
}

// ValidateDate checks a YYYY-MM-DD date string.
func ValidateDate(date string) error {
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return errors.Ef("validation.ValidateDate", errors.KindInvalidInput, "invalid date %q (expected YYYY-MM-DD)", date)
	}
	return nil
}

// ValidateYearMonth parses a YYYY-MM string.
func ValidateYearMonth(s string) (models.YearMonth, error) {
	ym, err := models.ParseYearMonth(s)
	if err != nil {
		return models.YearMonth{}, errors.E("validation.ValidateYearMonth", errors.KindInvalidInput, err)
	}
	return ym, nil
}

// ValidateNoteContent trims content and rejects empty or oversized notes.
func ValidateNoteContent(content string) (string, error) {
	const op = "validation.ValidateNoteContent"
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", errors.Ef(op, errors.KindInvalidInput, "note content cannot be empty")
	}
	if n := len([]rune(trimmed)); n > constants.MaxNoteLength {
		return "", errors.Ef(op, errors.KindInvalidInput, "note content is %d characters, limit is %d", n, constants.MaxNoteLength)
	}
	return trimmed, nil
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
