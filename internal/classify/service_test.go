package classify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type stubGenerator struct {
	answer string
	err    error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, []byte, error) {
	return s.answer, nil, s.err
}

func newTestService(answer string, err error) *Service {
	return NewService(&stubGenerator{answer: answer, err: err}, slog.New(slog.NewTextHandler(testWriter{}, nil)))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

// TestDetectExactAnswer checks a clean model answer passes through.
func TestDetectExactAnswer(t *testing.T) {
	result := newTestService("Transport", nil).Detect(context.Background(), "uber to office", 250)
	if result.Category != "Transport" {
		t.Fatalf("expected Transport, got %q", result.Category)
	}
	if result.Confidence != confidenceExternal {
		t.Fatalf("expected external confidence, got %v", result.Confidence)
	}
}

// TestDetectHintOverridesExternal checks the grocery hint wins over a
// conflicting external answer, even a valid one.
func TestDetectHintOverridesExternal(t *testing.T) {
	result := newTestService("Shopping", nil).Detect(context.Background(), "milk from supermarket", 80)
	if result.Category != "Food" {
		t.Fatalf("expected Food from grocery hint, got %q", result.Category)
	}
}

// TestDetectQuotedAnswer checks quotes and whitespace are stripped before
// matching.
func TestDetectQuotedAnswer(t *testing.T) {
	result := newTestService("  \"Bills\"\n", nil).Detect(context.Background(), "electricity due", 1200)
	if result.Category != "Bills" {
		t.Fatalf("expected Bills, got %q", result.Category)
	}
}

// TestDetectPartialAnswer checks the substring match over catalog names.
func TestDetectPartialAnswer(t *testing.T) {
	result := newTestService("Category: Healthcare.", nil).Detect(context.Background(), "pharmacy visit", 300)
	if result.Category != "Healthcare" {
		t.Fatalf("expected Healthcare, got %q", result.Category)
	}
}

// TestDetectUnusableAnswer checks an answer with no catalog match falls back
// to the hint, then to Other.
func TestDetectUnusableAnswer(t *testing.T) {
	result := newTestService("no idea", nil).Detect(context.Background(), "curd and paneer", 60)
	if result.Category != "Food" {
		t.Fatalf("expected hint Food, got %q", result.Category)
	}

	result = newTestService("no idea", nil).Detect(context.Background(), "mystery spend", 60)
	if result.Category != "Other" {
		t.Fatalf("expected Other, got %q", result.Category)
	}
}

// TestDetectFallbackOnError checks any generator error yields the full
// keyword classification, not just the grocery hint.
func TestDetectFallbackOnError(t *testing.T) {
	svc := newTestService("", errors.New("connection refused"))

	result := svc.Detect(context.Background(), "taxi to airport", 500)
	if result.Category != ClassifyKeywords("taxi to airport", 500) {
		t.Fatalf("fallback mismatch: got %q", result.Category)
	}
	if result.Category != "Transport" {
		t.Fatalf("expected Transport, got %q", result.Category)
	}
	if result.Confidence != confidenceFallback {
		t.Fatalf("expected fallback confidence, got %v", result.Confidence)
	}
}

// TestDetectFallbackOnBadStatus checks a non-2xx Ollama response triggers the
// keyword fallback end to end.
func TestDetectFallbackOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3.2", time.Second, 0.1, 0.9)
	svc := NewService(client, slog.New(slog.NewTextHandler(testWriter{}, nil)))

	result := svc.Detect(context.Background(), "dinner at restaurant", 900)
	if result.Category != "Food" {
		t.Fatalf("expected Food fallback, got %q", result.Category)
	}
	if result.Confidence != confidenceFallback {
		t.Fatalf("expected fallback confidence, got %v", result.Confidence)
	}
}

// TestDetectFallbackOnTimeout checks a slow endpoint falls back cleanly.
func TestDetectFallbackOnTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "llama3.2", 20*time.Millisecond, 0.1, 0.9)
	svc := NewService(client, slog.New(slog.NewTextHandler(testWriter{}, nil)))

	result := svc.Detect(context.Background(), "movie night", 400)
	if result.Category != "Entertainment" {
		t.Fatalf("expected Entertainment fallback, got %q", result.Category)
	}
}

// TestOllamaClientRequestShape checks the request payload and response
// parsing against a fake Ollama server.
func TestOllamaClientRequestShape(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"Food"}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL+"/", "llama3.2", time.Second, 0.1, 0.9)
	answer, raw, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Food" {
		t.Fatalf("expected Food, got %q", answer)
	}
	if len(raw) == 0 {
		t.Fatal("expected raw body")
	}
	if gotPath != "/api/generate" {
		t.Fatalf("expected /api/generate, got %s", gotPath)
	}
}

// TestBuildPrompt checks the prompt enumerates the catalog and embeds the
// description.
func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt("chai at kirana")
	for _, fragment := range []string{"Food", "Other", `Description: "chai at kirana"`} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt missing %q", fragment)
		}
	}
}
