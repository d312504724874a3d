package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/models"
	"github.com/julianstephens/moonlit/internal/profile"
)

// TestStore_Integration tests the PostgreSQL profile store with a real database
// Set POSTGRES_TEST_URL environment variable to run this test
// Example: POSTGRES_TEST_URL="postgres://moonlit_user@localhost:5432/moonlit_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	store := New(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	email := "it-" + uuid.NewString()[:8] + "@example.com"
	var user models.Profile

	t.Run("Users", func(t *testing.T) {
		var err error
		user, err = store.CreateUser(ctx, profile.NewUser{
			Email:        email,
			PasswordHash: "hash",
			Birthdate:    "1990-07-25",
			ZodiacSign:   models.Leo,
		})
		if err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if user.Birthdate != "1990-07-25" || user.ZodiacSign != models.Leo {
			t.Errorf("unexpected profile %+v", user)
		}

		if _, err := store.CreateUser(ctx, profile.NewUser{Email: email, PasswordHash: "x", Birthdate: "2000-01-01", ZodiacSign: models.Capricorn}); !errors.IsKind(err, errors.KindConflict) {
			t.Errorf("duplicate email error = %v, want conflict", err)
		}

		_, hash, err := store.Credentials(ctx, email)
		if err != nil || hash != "hash" {
			t.Errorf("Credentials = %q, %v", hash, err)
		}

		if _, err := store.GetProfile(ctx, "not-a-uuid"); !errors.IsKind(err, errors.KindNotFound) {
			t.Errorf("GetProfile(bad id) error = %v, want not found", err)
		}
	})

	t.Run("SavedDays", func(t *testing.T) {
		saved, err := store.ToggleSavedDay(ctx, user.UID, "2024-03-10")
		if err != nil || !saved {
			t.Fatalf("ToggleSavedDay = %v, %v", saved, err)
		}
		saved, err = store.ToggleSavedDay(ctx, user.UID, "2024-03-10")
		if err != nil || saved {
			t.Fatalf("second ToggleSavedDay = %v, %v", saved, err)
		}
		days, err := store.SavedDays(ctx, user.UID)
		if err != nil || len(days) != 0 {
			t.Errorf("SavedDays = %v, %v", days, err)
		}
	})

	t.Run("Notes", func(t *testing.T) {
		note, err := store.AddNote(ctx, user.UID, models.Note{Date: "2024-03-10", Content: "hello"})
		if err != nil {
			t.Fatalf("AddNote failed: %v", err)
		}
		notes, err := store.NotesForDate(ctx, user.UID, "2024-03-10")
		if err != nil || len(notes) != 1 || notes[0].Content != "hello" {
			t.Fatalf("NotesForDate = %+v, %v", notes, err)
		}
		if _, err := store.UpdateNote(ctx, user.UID, note.ID, "edited"); err != nil {
			t.Errorf("UpdateNote failed: %v", err)
		}
		deleted, err := store.DeleteNote(ctx, user.UID, note.ID)
		if err != nil || deleted.Content != "edited" {
			t.Errorf("DeleteNote = %+v, %v", deleted, err)
		}
	})
}
