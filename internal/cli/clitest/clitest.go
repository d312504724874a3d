// Package clitest builds a fully wired cli.Context over temporary databases
// and a fake phase and horoscope API.
package clitest

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/moonlit/internal/cli"
	"github.com/julianstephens/moonlit/internal/config"
)

// TestKey is a fixed 32-byte session key.
const TestKey = "7f3c1e9a2b4d6f8091a3c5e7f9b1d3f5a7c9e1b3d5f7a9c1e3b5d7f9a1c3e5b7"

// API is a fake moon phase and horoscope server.
type API struct {
	*httptest.Server
	// Fail makes every request return 503.
	Fail atomic.Bool
	// Calls counts requests to either API.
	Calls atomic.Int64
}

func NewAPI(t *testing.T) *API {
	t.Helper()
	api := &API{}
	mux := http.NewServeMux()
	mux.HandleFunc("/moonphases/", func(w http.ResponseWriter, r *http.Request) {
		if !api.serve(w) {
			return
		}
		ts, err := strconv.ParseInt(r.URL.Query().Get("d"), 10, 64)
		if err != nil {
			// Ping
			_, _ = w.Write([]byte(`[{"Error":1,"ErrorMsg":"missing date"}]`))
			return
		}
		day := time.Unix(ts, 0).UTC().Day()
		fmt.Fprintf(w, `[{"Error":0,"ErrorMsg":"success","Moon":["Test Moon"],"Age":%d,"Phase":%q,"Illumination":%.2f}]`,
			day, PhaseForDay(day), float64(day)/31)
	})
	mux.HandleFunc("/get-horoscope/", func(w http.ResponseWriter, r *http.Request) {
		if !api.serve(w) {
			return
		}
		q := r.URL.Query()
		period := r.URL.Path[len("/get-horoscope/"):]
		fmt.Fprintf(w, `{"data":{"date":%q,"horoscope_data":"%s reading for %s"},"status":200,"success":true}`,
			q.Get("day"), period, q.Get("sign"))
	})
	api.Server = httptest.NewServer(mux)
	t.Cleanup(api.Close)
	return api
}

func (a *API) serve(w http.ResponseWriter) bool {
	a.Calls.Add(1)
	if a.Fail.Load() {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// PhaseForDay is the phase name the fake API reports for a day of the month.
func PhaseForDay(day int) string {
	switch {
	case day < 8:
		return "Waxing Crescent"
	case day < 15:
		return "Waxing Gibbous"
	case day == 15:
		return "Full Moon"
	default:
		return "Waning Gibbous"
	}
}

// Env is a wired context plus its fake API and captured output.
type Env struct {
	Ctx      *cli.Context
	API      *API
	Out      *bytes.Buffer
	Prompter *cli.StaticPrompter
}

// New initializes both stores under a temporary config directory. The OS
// keyring is replaced by an in-memory mock.
func New(t *testing.T) *Env {
	t.Helper()
	gokeyring.MockInit()

	api := NewAPI(t)
	cfg := config.Default()
	if err := cfg.SetConfigDir(t.TempDir()); err != nil {
		t.Fatalf("SetConfigDir() error = %v", err)
	}
	cfg.MoonAPIURL = api.URL
	cfg.HoroscopeAPIURL = api.URL
	cfg.SessionKey = TestKey
	cfg.RatePerSecond = 1000
	cfg.RateBurst = 1000

	ctx, err := cli.New(cfg)
	if err != nil {
		t.Fatalf("cli.New() error = %v", err)
	}
	if err := ctx.Content.Init(); err != nil {
		t.Fatalf("content Init() error = %v", err)
	}
	if err := ctx.Profiles.Init(); err != nil {
		t.Fatalf("profile Init() error = %v", err)
	}
	t.Cleanup(func() { _ = ctx.Close() })

	out := &bytes.Buffer{}
	prompter := &cli.StaticPrompter{}
	ctx.Out = out
	ctx.Prompter = prompter
	ctx.Timeout = 30 * time.Second

	return &Env{Ctx: ctx, API: api, Out: out, Prompter: prompter}
}
