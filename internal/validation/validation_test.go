package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/moonlit/internal/errors"
)

type signup struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Birthdate string `json:"birthdate" validate:"required,date,notfuture"`
}

func TestStruct(t *testing.T) {
	v := New()
	v.now = func() time.Time { return time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name    string
		in      signup
		wantErr []string
	}{
		{
			name: "valid",
			in:   signup{Email: "luna@example.com", Password: "moonlight", Birthdate: "1990-07-25"},
		},
		{
			name:    "bad email",
			in:      signup{Email: "luna", Password: "moonlight", Birthdate: "1990-07-25"},
			wantErr: []string{"email must be a valid email address"},
		},
		{
			name:    "short password",
			in:      signup{Email: "luna@example.com", Password: "short", Birthdate: "1990-07-25"},
			wantErr: []string{"password must be at least 8 characters"},
		},
		{
			name:    "malformed birthdate",
			in:      signup{Email: "luna@example.com", Password: "moonlight", Birthdate: "1990-13-01"},
			wantErr: []string{"birthdate must be a date in YYYY-MM-DD format"},
		},
		{
			name:    "future birthdate",
			in:      signup{Email: "luna@example.com", Password: "moonlight", Birthdate: "2030-01-01"},
			wantErr: []string{"birthdate must not be in the future"},
		},
		{
			name:    "everything missing",
			in:      signup{},
			wantErr: []string{"email is required", "password is required", "birthdate is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct("test", tt.in)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("Struct() error = %v, want nil", err)
				}
				return
			}
			if !errors.IsKind(err, errors.KindInvalidInput) {
				t.Fatalf("Struct() error = %v, want invalid input", err)
			}
			for _, want := range tt.wantErr {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("Struct() error = %q, want it to mention %q", err, want)
				}
			}
		})
	}
}

func TestValidateDate(t *testing.T) {
	for _, d := range []string{"2024-02-29", "1990-07-25"} {
		if err := ValidateDate(d); err != nil {
			t.Errorf("ValidateDate(%q) = %v", d, err)
		}
	}
	for _, d := range []string{"", "2023-02-29", "2024/02/01", "24-02-01"} {
		if err := ValidateDate(d); !errors.IsKind(err, errors.KindInvalidInput) {
			t.Errorf("ValidateDate(%q) = %v, want invalid input", d, err)
		}
	}
}

func TestValidateYearMonth(t *testing.T) {
	ym, err := ValidateYearMonth("2024-02")
	if err != nil || ym.DaysIn() != 29 {
		t.Errorf("ValidateYearMonth(2024-02) = %v, %v", ym, err)
	}
	if _, err := ValidateYearMonth("2024-13"); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("ValidateYearMonth(2024-13) error = %v, want invalid input", err)
	}
}

func TestValidateNoteContent(t *testing.T) {
	got, err := ValidateNoteContent("  hello \n")
	if err != nil || got != "hello" {
		t.Errorf("ValidateNoteContent() = %q, %v; want hello", got, err)
	}
	if _, err := ValidateNoteContent(" \t "); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("blank content error = %v, want invalid input", err)
	}
	if _, err := ValidateNoteContent(strings.Repeat("x", 4001)); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("oversized content error = %v, want invalid input", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Luna@Example.COM "); got != "luna@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}
