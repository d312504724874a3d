package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julianstephens/moonlit/internal/errors"
)

func newTestClient(url string, failures uint32) *Client {
	return NewClient(Options{
		Name:            "test",
		BaseURL:         url,
		Timeout:         2 * time.Second,
		RatePerSecond:   1000,
		RateBurst:       100,
		BreakerFailures: failures,
		BreakerTimeout:  time.Minute,
	})
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/thing" || r.URL.Query().Get("id") != "7" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"moon"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)
	var out struct {
		Name string `json:"name"`
	}
	if err := c.GetJSON(context.Background(), "test.Get", "/thing", map[string]string{"id": "7"}, &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if out.Name != "moon" {
		t.Errorf("Name = %q, want moon", out.Name)
	}
}

func TestGetJSONClassifiesStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   errors.Kind
	}{
		{"server error", http.StatusInternalServerError, "boom", errors.KindTransient},
		{"rate limited", http.StatusTooManyRequests, "", errors.KindTransient},
		{"bad request", http.StatusBadRequest, "bad sign", errors.KindInvalidInput},
		{"garbage body", http.StatusOK, "not json", errors.KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			var out map[string]any
			err := newTestClient(srv.URL, 10).GetJSON(context.Background(), "test.Get", "/", nil, &out)
			if got := errors.KindOf(err); got != tt.want {
				t.Errorf("KindOf(GetJSON()) = %v, want %v (err = %v)", got, tt.want, err)
			}
		})
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 2)
	ctx := context.Background()
	var out map[string]any
	for i := 0; i < 2; i++ {
		_ = c.GetJSON(ctx, "test.Get", "/", nil, &out)
	}

	err := c.GetJSON(ctx, "test.Get", "/", nil, &out)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("third call error = %v, want ErrCircuitOpen", err)
	}
	if !errors.IsKind(err, errors.KindTransient) {
		t.Errorf("open circuit kind = %v, want transient", errors.KindOf(err))
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2 (open breaker must not call out)", got)
	}
	if c.State() != "open" {
		t.Errorf("State() = %q, want open", c.State())
	}
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 1)
	var out map[string]any
	for i := 0; i < 3; i++ {
		if err := c.GetJSON(context.Background(), "test.Get", "/", nil, &out); errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("call %d hit an open circuit", i)
		}
	}
}

func TestGetJSONHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out map[string]any
	if err := newTestClient(srv.URL, 5).GetJSON(ctx, "test.Get", "/", nil, &out); !errors.IsKind(err, errors.KindTransient) {
		t.Errorf("GetJSON(cancelled) error = %v, want transient", err)
	}
}

func TestAbandonedRequestsDoNotTripBreaker(t *testing.T) {
	var slow atomic.Bool
	slow.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slow.Load() {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		_, _ = w.Write([]byte(`{"name":"moon"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 2)
	var out map[string]any
	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		err := c.GetJSON(ctx, "test.Get", "/", nil, &out)
		cancel()
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("call %d error = %v, want deadline exceeded", i, err)
		}
	}
	if c.State() != "closed" {
		t.Fatalf("State() = %q after abandoned calls, want closed", c.State())
	}

	slow.Store(false)
	if err := c.GetJSON(context.Background(), "test.Get", "/", nil, &out); err != nil {
		t.Errorf("GetJSON() after abandoned calls error = %v", err)
	}
}
