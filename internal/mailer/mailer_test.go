package mailer

import (
	"strings"
	"testing"
)

// TestVerificationEmail checks the token lands in the link as a query param.
func TestVerificationEmail(t *testing.T) {
	subject, body := VerificationEmail("http://localhost:3000/verify-email", "Alice", "tok+en")

	if subject == "" {
		t.Fatal("expected non-empty subject")
	}
	if !strings.Contains(body, "http://localhost:3000/verify-email?token=tok%2Ben") {
		t.Fatalf("expected escaped verification link, got body:\n%s", body)
	}
	if !strings.Contains(body, "Hi Alice") {
		t.Fatalf("expected greeting, got body:\n%s", body)
	}
}

// TestVerificationEmailExistingQuery checks base URLs that already carry a
// query string get the token appended with an ampersand.
func TestVerificationEmailExistingQuery(t *testing.T) {
	_, body := VerificationEmail("http://localhost:3000/verify?lang=en", "Bob", "abc")

	if !strings.Contains(body, "http://localhost:3000/verify?lang=en&token=abc") {
		t.Fatalf("expected appended token param, got body:\n%s", body)
	}
}
