package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	confidenceExternal = 0.95
	confidenceFallback = 0.75
)

// Result is the transient outcome of one classification request. It is never
// persisted; only the category name ends up on an expense.
type Result struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Service assigns a catalog category to a free-text expense description. It
// prefers the external text classifier and degrades to the deterministic
// keyword chain on any failure, so callers always get a valid category.
type Service struct {
	generator Generator
	logger    *slog.Logger
}

// NewService creates the classification service around a generator backend.
func NewService(generator Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{generator: generator, logger: logger}
}

// Detect classifies the description. It never fails: an external classifier
// error of any kind (transport, timeout, bad status, unusable payload) is
// logged and converted into the full keyword fallback.
func (s *Service) Detect(ctx context.Context, description string, amount float64) Result {
	category, err := s.classifyExternal(ctx, description)
	if err != nil {
		s.logger.Warn("external classifier unavailable, using keyword fallback",
			slog.String("error", err.Error()))
		return Result{
			Category:   ClassifyKeywords(description, amount),
			Confidence: confidenceFallback,
			Reasoning:  "Matched by deterministic keyword rules",
		}
	}

	return Result{
		Category:   category,
		Confidence: confidenceExternal,
		Reasoning:  fmt.Sprintf("AI detected '%s' using Ollama LLM", category),
	}
}

// classifyExternal runs the external classifier and reconciles its answer
// against the grocery hint. The hint is the restricted grocery-only rule, not
// the full keyword chain, and it wins whenever it disagrees with the model.
func (s *Service) classifyExternal(ctx context.Context, description string) (string, error) {
	answer, _, err := s.generator.Generate(ctx, buildPrompt(description))
	if err != nil {
		return "", err
	}

	answer = strings.TrimSpace(answer)
	answer = strings.ReplaceAll(answer, `"`, "")
	answer = strings.ReplaceAll(answer, "'", "")
	answer = strings.TrimSpace(answer)

	hint, hasHint := GroceryHint(description)

	// Exact catalog name.
	if IsCategoryName(answer) {
		if hasHint && answer != hint {
			return hint, nil
		}
		return answer, nil
	}

	// Partial match in either direction, e.g. "Category: Transport".
	lowerAnswer := strings.ToLower(answer)
	for _, name := range CategoryNames() {
		lowerName := strings.ToLower(name)
		if strings.Contains(lowerAnswer, lowerName) || strings.Contains(lowerName, lowerAnswer) {
			if hasHint {
				return hint, nil
			}
			return name, nil
		}
	}

	if hasHint {
		return hint, nil
	}
	return DefaultCategory, nil
}

func buildPrompt(description string) string {
	return fmt.Sprintf(`Classify the expense description into ONE of:
%s.

Rules:
- Return ONLY the category name.
- Groceries (milk, curd/yogurt, paneer, bread, butter, cheese, vegetables, fruits, banana, apple, eggs, rice, wheat/flour/atta, dal/lentils/pulses, oil, spices, sugar, tea, coffee, grocery/supermarket/kirana) => Food.
- Restaurant, meal, delivery, cafe, snack => Food.
- If unsure between Food and Shopping, choose Food.

Description: "%s"
Category:`, strings.Join(CategoryNames(), ", "), description)
}
