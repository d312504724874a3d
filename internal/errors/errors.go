package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/moonlit/internal/logger"
)

// Kind classifies a failure so the presentation layer can choose what to show.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransient
	KindInvalidInput
	KindAuth
	KindPartial
	KindNotFound
	KindStorage
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindInvalidInput:
		return "invalid input"
	case KindAuth:
		return "authentication"
	case KindPartial:
		return "partial"
	case KindNotFound:
		return "not found"
	case KindStorage:
		return "storage"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a classified failure raised at a component boundary.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with an operation name and kind. A nil err yields nil.
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Ef builds a classified error from a format string.
func Ef(op string, kind Kind, format string, args ...interface{}) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindUnknown {
			return KindOf(e.Err)
		}
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Is, As and New mirror the standard library so callers need a single import.
func Is(err, target error) bool { return errors.Is(err, target) }
func As(err error, target interface{}) bool { return errors.As(err, target) }
func New(text string) error { return errors.New(text) }
func Join(errs ...error) error { return errors.Join(errs...) }

// UserMessage maps an error to the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch KindOf(err) {
	case KindTransient:
		return "service unavailable, please try again later"
	case KindAuth:
		return "invalid email or password"
	case KindPartial:
		return "some data could not be loaded: " + err.Error()
	case KindInvalidInput, KindNotFound, KindConflict:
		return err.Error()
	case KindStorage:
		return "local storage error: " + err.Error()
	default:
		return err.Error()
	}
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err, "kind", KindOf(err).String())
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
