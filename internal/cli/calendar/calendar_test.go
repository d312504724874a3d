package calendar

import (
	"strings"
	"testing"

	"github.com/julianstephens/moonlit/internal/auth"
	"github.com/julianstephens/moonlit/internal/cli/clitest"
	"github.com/julianstephens/moonlit/internal/constants"
	"github.com/julianstephens/moonlit/internal/errors"
	"github.com/julianstephens/moonlit/internal/models"
)

func signUp(t *testing.T, env *clitest.Env) models.Profile {
	t.Helper()
	p, err := env.Ctx.Auth.Register(t.Context(), auth.RegisterInput{
		Email:     "luna@example.com",
		Password:  "correct horse",
		Birthdate: "1990-08-01",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return p
}

func TestMonthShowCmd_Grid(t *testing.T) {
	env := clitest.New(t)

	cmd := &MonthShowCmd{Month: "2024-02"}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("month command failed: %v", err)
	}

	out := env.Out.String()
	if !strings.Contains(out, "February 2024") {
		t.Errorf("output missing title:\n%s", out)
	}
	if !strings.Contains(out, "29") {
		t.Errorf("leap day missing:\n%s", out)
	}
	records, err := env.Ctx.Content.RecordsForMonth(t.Context(), models.YearMonth{Year: 2024, Month: 2})
	if err != nil {
		t.Fatalf("RecordsForMonth() error = %v", err)
	}
	if len(records) != 29 {
		t.Errorf("RecordsForMonth() = %d records, want 29", len(records))
	}
}

func TestMonthShowCmd_CachedMonthMakesNoCalls(t *testing.T) {
	env := clitest.New(t)
	cmd := &MonthShowCmd{Month: "2024-03", List: true}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("first month command failed: %v", err)
	}
	calls := env.API.Calls.Load()

	env.API.Fail.Store(true)
	env.Out.Reset()
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("cached month command failed: %v", err)
	}
	if got := env.API.Calls.Load(); got != calls {
		t.Errorf("API calls = %d, want %d (month already cached)", got, calls)
	}
	if !strings.Contains(env.Out.String(), "2024-03-15  🌕 Full Moon") {
		t.Errorf("list output:\n%s", env.Out.String())
	}
}

func TestMonthShowCmd_Unavailable(t *testing.T) {
	env := clitest.New(t)
	env.API.Fail.Store(true)

	err := (&MonthShowCmd{Month: "2024-04"}).Run(env.Ctx)
	if !errors.IsKind(err, errors.KindTransient) {
		t.Errorf("month command error = %v, want transient", err)
	}
}

func TestMonthShowCmd_MarksFavoritesAndNotes(t *testing.T) {
	env := clitest.New(t)
	p := signUp(t, env)

	if _, err := env.Ctx.Sync.ToggleFavorite(t.Context(), p.UID, "2024-05-04"); err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	if _, err := env.Ctx.Sync.AddNote(t.Context(), p.UID, "2024-05-10", "plant seeds"); err != nil {
		t.Fatalf("AddNote() error = %v", err)
	}

	if err := (&MonthShowCmd{Month: "2024-05", List: true}).Run(env.Ctx); err != nil {
		t.Fatalf("month command failed: %v", err)
	}
	out := env.Out.String()
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "2024-05-04") && !strings.Contains(line, "★"):
			t.Errorf("saved day not marked: %q", line)
		case strings.HasPrefix(line, "2024-05-10") && !strings.Contains(line, "✎"):
			t.Errorf("note day not marked: %q", line)
		case strings.HasPrefix(line, "2024-05-11") && (strings.Contains(line, "★") || strings.Contains(line, "✎")):
			t.Errorf("plain day marked: %q", line)
		}
	}
}

func TestMonthShowCmd_InvalidMonth(t *testing.T) {
	env := clitest.New(t)
	if err := (&MonthShowCmd{Month: "2024-13"}).Run(env.Ctx); err == nil {
		t.Error("month command should reject 2024-13")
	}
}

func TestMonthRepairCmd(t *testing.T) {
	env := clitest.New(t)
	ym := models.YearMonth{Year: 2024, Month: 6}

	// One stored day satisfies the default completeness policy
	rec := models.MoonPhase{Date: "2024-06-01", Phase: "New Moon", Illumination: 0.01}
	if err := env.Ctx.Content.InsertOrReplace(t.Context(), []models.MoonPhase{rec}); err != nil {
		t.Fatalf("InsertOrReplace() error = %v", err)
	}
	if env.Ctx.Config.MonthCompleteness != constants.CompletenessAny {
		t.Fatalf("MonthCompleteness = %q, want any", env.Ctx.Config.MonthCompleteness)
	}

	if err := (&MonthRepairCmd{Month: "2024-06"}).Run(env.Ctx); err != nil {
		t.Fatalf("repair command failed: %v", err)
	}
	if !strings.Contains(env.Out.String(), "Fetched 29 day(s)") {
		t.Errorf("output = %q", env.Out.String())
	}
	records, err := env.Ctx.Content.RecordsForMonth(t.Context(), ym)
	if err != nil {
		t.Fatalf("RecordsForMonth() error = %v", err)
	}
	if len(records) != 30 {
		t.Errorf("RecordsForMonth() = %d, want 30", len(records))
	}

	env.Out.Reset()
	if err := (&MonthRepairCmd{Month: "2024-06"}).Run(env.Ctx); err != nil {
		t.Fatalf("second repair failed: %v", err)
	}
	if !strings.Contains(env.Out.String(), "nothing to fetch") {
		t.Errorf("output = %q", env.Out.String())
	}
}

func TestDayCmd(t *testing.T) {
	env := clitest.New(t)
	p := signUp(t, env)
	if err := env.Ctx.Sync.SaveFavorite(t.Context(), p.UID, "2024-07-15"); err != nil {
		t.Fatalf("SaveFavorite() error = %v", err)
	}
	if _, err := env.Ctx.Sync.AddNote(t.Context(), p.UID, "2024-07-15", "moon bath"); err != nil {
		t.Fatalf("AddNote() error = %v", err)
	}

	if err := (&DayCmd{Date: "2024-07-15"}).Run(env.Ctx); err != nil {
		t.Fatalf("day command failed: %v", err)
	}
	out := env.Out.String()
	for _, want := range []string{"Full Moon", "Illumination: 48%", "Saved:        ★", "moon bath"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDayCmd_SignedOut(t *testing.T) {
	env := clitest.New(t)
	if err := (&DayCmd{Date: "2024-07-02"}).Run(env.Ctx); err != nil {
		t.Fatalf("day command failed: %v", err)
	}
	if strings.Contains(env.Out.String(), "Notes") {
		t.Errorf("signed-out output shows notes:\n%s", env.Out.String())
	}
}

func TestFavoriteCmds(t *testing.T) {
	env := clitest.New(t)
	if err := (&FavoriteToggleCmd{Date: "2024-08-01"}).Run(env.Ctx); !errors.IsKind(err, errors.KindAuth) {
		t.Errorf("toggle while signed out error = %v, want auth error", err)
	}

	p := signUp(t, env)

	if err := (&FavoriteToggleCmd{Date: "2024-08-01"}).Run(env.Ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if err := (&FavoriteAddCmd{Date: "2024-08-03"}).Run(env.Ctx); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := (&FavoriteAddCmd{Date: "2024-08-03"}).Run(env.Ctx); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	days, err := env.Ctx.Sync.FetchFavorites(t.Context(), p.UID)
	if err != nil {
		t.Fatalf("FetchFavorites() error = %v", err)
	}
	if len(days) != 2 {
		t.Errorf("saved days = %v, want 2 entries", days)
	}

	if err := (&FavoriteToggleCmd{Date: "2024-08-01"}).Run(env.Ctx); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if err := (&FavoriteRemoveCmd{Date: "2024-08-09"}).Run(env.Ctx); err != nil {
		t.Fatalf("remove of unsaved day failed: %v", err)
	}

	env.Out.Reset()
	if err := (&FavoriteListCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if got := strings.TrimSpace(env.Out.String()); got != "2024-08-03" {
		t.Errorf("list output = %q, want 2024-08-03", got)
	}
}

func TestFavoriteToggleCmd_InvalidDate(t *testing.T) {
	env := clitest.New(t)
	signUp(t, env)
	if err := (&FavoriteToggleCmd{Date: "2024-02-30"}).Run(env.Ctx); err == nil {
		t.Error("toggle should reject 2024-02-30")
	}
}
