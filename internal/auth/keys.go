package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/moonlit/internal/keyring"
	"github.com/julianstephens/moonlit/internal/logger"
)

const keyFileName = "session.key"

// LoadOrGenerateKey resolves the hex-encoded session key. A configured key wins;
// otherwise the key is read from the OS keyring, or from <configDir>/session.key
// when no keyring is available. A missing key is generated and stored.
func LoadOrGenerateKey(configured, configDir string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	key, err := keyring.GetSessionKey()
	switch {
	case err == nil:
		return key, nil
	case errors.Is(err, keyring.ErrNotFound):
		key, err = generateKey()
		if err != nil {
			return "", err
		}
		if err := keyring.SetSessionKey(key); err != nil {
			logger.Warn("failed to store session key in keyring, using key file", "error", err)
			return loadOrGenerateKeyFile(configDir)
		}
		return key, nil
	default:
		logger.Debug("keyring unavailable, using key file", "error", err)
		return loadOrGenerateKeyFile(configDir)
	}
}

func loadOrGenerateKeyFile(configDir string) (string, error) {
	keyPath := filepath.Join(configDir, keyFileName)

	if data, err := os.ReadFile(keyPath); err == nil {
		key := strings.TrimSpace(string(data))
		if len(key) != keyHexSize {
			return "", fmt.Errorf("invalid session key length: expected %d hex chars, got %d", keyHexSize, len(key))
		}
		if _, err := hex.DecodeString(key); err != nil {
			return "", fmt.Errorf("invalid session key format: not valid hex: %w", err)
		}
		return key, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read session key: %w", err)
	}

	key, err := generateKey()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(key+"\n"), 0600); err != nil {
		return "", fmt.Errorf("failed to write session key: %w", err)
	}
	return key, nil
}

func generateKey() (string, error) {
	b := make([]byte, keyBytesSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session key: %w", err)
	}
	return hex.EncodeToString(b), nil
}
