package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/lumina/internal/ai"
	"github.com/starford/lumina/internal/cli"
	"github.com/starford/lumina/internal/kv"
	"github.com/starford/lumina/internal/notes"
)

func testConfig(t *testing.T, backend string) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.AI.APIKey = ""
	cfg.Storage.Backend = backend
	cfg.Storage.Path = ""
	if backend != kv.BackendMemory {
		cfg.Storage.Path = filepath.Join(t.TempDir(), "lumina.db")
	}
	return cfg
}

func echoGenerator() ai.Generator {
	return ai.GeneratorFunc(func(context.Context, ai.Request) (string, error) {
		return "echo", nil
	})
}

func TestNewApplication_RequiresConfig(t *testing.T) {
	if _, err := newApplication(nil); err == nil {
		t.Fatal("expected error without config")
	}

	cfg := NewDefaultConfig()
	cfg.Storage.Backend = "redis"
	if _, err := newApplication([]Option{WithConfig(cfg)}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestRunCLI_SeedsAndPersists(t *testing.T) {
	cfg := testConfig(t, kv.BackendSQLite)
	out := &bytes.Buffer{}
	opts := []Option{
		WithConfig(cfg),
		WithLogOutput(io.Discard),
		WithGenerator(echoGenerator()),
		WithIO(strings.NewReader(""), out),
	}

	var created string
	err := RunCLI(context.Background(), func(_ context.Context, r *cli.Runner) error {
		n, err := r.Create("Persisted", "body")
		created = n.ID
		return err
	}, opts...)
	if err != nil {
		t.Fatalf("RunCLI: %v", err)
	}

	out.Reset()
	err = RunCLI(context.Background(), func(_ context.Context, r *cli.Runner) error {
		return r.List("")
	}, opts...)
	if err != nil {
		t.Fatalf("RunCLI: %v", err)
	}
	if !strings.Contains(out.String(), created) || !strings.Contains(out.String(), notes.WelcomeTitle) {
		t.Errorf("second run should see both notes:\n%s", out)
	}
}

func TestRunCLI_TransformUsesGenerator(t *testing.T) {
	cfg := testConfig(t, kv.BackendMemory)
	out := &bytes.Buffer{}

	err := RunCLI(context.Background(), func(ctx context.Context, r *cli.Runner) error {
		_, err := r.Transform(ctx, notes.WelcomeID, "summarize", false)
		return err
	}, WithConfig(cfg), WithLogOutput(io.Discard), WithGenerator(echoGenerator()), WithIO(nil, out))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "echo") {
		t.Errorf("output = %q", out)
	}
}

func TestRunCLI_NoKeyFallsBack(t *testing.T) {
	cfg := testConfig(t, kv.BackendMemory)
	out := &bytes.Buffer{}

	err := RunCLI(context.Background(), func(ctx context.Context, r *cli.Runner) error {
		_, err := r.Transform(ctx, notes.WelcomeID, "summarize", false)
		return err
	}, WithConfig(cfg), WithLogOutput(io.Discard), WithIO(nil, out))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), ai.MsgFailed) {
		t.Errorf("expected failure message, got %q", out)
	}
}

func TestHTTPHandler(t *testing.T) {
	cfg := testConfig(t, kv.BackendMemory)
	cfg.Auth = AuthConfig{Mode: AuthModeToken, Token: "secret"}
	app, err := newApplication([]Option{WithConfig(cfg), WithLogOutput(io.Discard), WithGenerator(echoGenerator())})
	if err != nil {
		t.Fatal(err)
	}
	rt, err := app.bootstrap(context.Background(), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	defer rt.Close()

	srv := httptest.NewServer(newHTTPHandler(rt, cfg, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health/live")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/api/notes")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/notes", nil)
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Notes    []json.RawMessage `json:"notes"`
		ActiveID string            `json:"activeId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Notes) != 1 || body.ActiveID != notes.WelcomeID {
		t.Errorf("body = %+v", body)
	}
}
