package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestConnectionStringRoundTrip(t *testing.T) {
	gokeyring.MockInit()

	connStr := "postgres://moonlit@localhost:5432/moonlit?sslmode=disable"
	if err := SetConnectionString(connStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if got != connStr {
		t.Errorf("GetConnectionString() = %q, want %q", got, connStr)
	}

	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete, GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestSetRejectsEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString(""); err == nil {
		t.Error("SetConnectionString(\"\") should return an error")
	}
	if err := SetSessionToken(""); err == nil {
		t.Error("SetSessionToken(\"\") should return an error")
	}
	if err := SetSessionKey(""); err == nil {
		t.Error("SetSessionKey(\"\") should return an error")
	}
}

func TestSessionEntriesAreIndependent(t *testing.T) {
	gokeyring.MockInit()

	if err := SetSessionToken("v4.local.token"); err != nil {
		t.Fatal(err)
	}
	if err := SetSessionKey("abcd"); err != nil {
		t.Fatal(err)
	}

	if err := DeleteSessionToken(); err != nil {
		t.Fatalf("DeleteSessionToken() failed: %v", err)
	}
	if _, err := GetSessionToken(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSessionToken() error = %v, want %v", err, ErrNotFound)
	}
	if key, err := GetSessionKey(); err != nil || key != "abcd" {
		t.Errorf("GetSessionKey() = %q, %v; want abcd", key, err)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false with mock keyring, want true")
	}
}

func TestUnavailableKeyring(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("dbus not running"))
	defer gokeyring.MockInit()

	if _, err := GetSessionToken(); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("GetSessionToken() error = %v, want %v", err, ErrKeyringUnavailable)
	}
	if IsAvailable() {
		t.Error("IsAvailable() = true with failing keyring")
	}
}
