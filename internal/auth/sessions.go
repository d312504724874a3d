package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/moonlit/internal/keyring"
)

// ErrNoSession is returned when no session token is stored on this machine.
var ErrNoSession = errors.New("no session stored")

// Sessions persists the current session token between invocations.
type Sessions interface {
	Load() (string, error)
	Save(token string) error
	Delete() error
}

// KeyringSessions keeps the session token in the OS keyring.
type KeyringSessions struct{}

func (KeyringSessions) Load() (string, error) {
	token, err := keyring.GetSessionToken()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoSession
	}
	return token, err
}

func (KeyringSessions) Save(token string) error {
	return keyring.SetSessionToken(token)
}

func (KeyringSessions) Delete() error {
	if err := keyring.DeleteSessionToken(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// FileSessions keeps the session token in a 0600 file, for systems without a keyring.
type FileSessions struct {
	Path string
}

func (f FileSessions) Load() (string, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}

func (f FileSessions) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(f.Path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

func (f FileSessions) Delete() error {
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}

// DefaultSessions picks the keyring when it is usable and a file under
// configDir otherwise.
func DefaultSessions(configDir string) Sessions {
	if keyring.IsAvailable() {
		return KeyringSessions{}
	}
	return FileSessions{Path: filepath.Join(configDir, "session")}
}
