package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/moonlit/internal/cli"
	"github.com/julianstephens/moonlit/internal/cli/clitest"
	"github.com/julianstephens/moonlit/internal/config"
	"github.com/julianstephens/moonlit/internal/models"
)

func setupTestInitDB(t *testing.T) (*cli.Context, *config.Config) {
	t.Helper()
	gokeyring.MockInit()

	cfg := config.Default()
	if err := cfg.SetConfigDir(filepath.Join(t.TempDir(), "moonlit")); err != nil {
		t.Fatalf("SetConfigDir() error = %v", err)
	}
	cfg.SessionKey = clitest.TestKey

	ctx, err := cli.New(cfg)
	if err != nil {
		t.Fatalf("cli.New() error = %v", err)
	}
	ctx.Out = &strings.Builder{}
	t.Cleanup(func() { _ = ctx.Close() })
	return ctx, cfg
}

func TestInitCmd_Success(t *testing.T) {
	ctx, cfg := setupTestInitDB(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}

	for _, p := range []string{cfg.ContentDB, cfg.ProfileDSN} {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			t.Errorf("database file was not created at %s", p)
		}
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _ := setupTestInitDB(t)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceResetsContentOnly(t *testing.T) {
	env := clitest.New(t)
	rec := models.MoonPhase{Date: "2024-03-01", Phase: "New Moon", Illumination: 0.01}
	if err := env.Ctx.Content.InsertOrReplace(t.Context(), []models.MoonPhase{rec}); err != nil {
		t.Fatalf("InsertOrReplace() error = %v", err)
	}
	if _, err := env.Ctx.Auth.Register(t.Context(), registerInput("keep@example.com")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	cmd := &InitCmd{Force: true}
	if err := cmd.Run(env.Ctx); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}

	records, err := env.Ctx.Content.AllRecords(t.Context())
	if err != nil {
		t.Fatalf("AllRecords() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("AllRecords() after --force = %d records, want 0", len(records))
	}
	if _, err := env.Ctx.Auth.Current(t.Context()); err != nil {
		t.Errorf("Current() after --force error = %v, want the account to survive", err)
	}
	if !strings.Contains(env.Out.String(), "Deleted existing database") {
		t.Errorf("output = %q, want deletion notice", env.Out.String())
	}
}
