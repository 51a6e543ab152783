package utils

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

var nonDigit = regexp.MustCompile(`\D`)

// UUID Generation
func GenerateUUID() string {
	return uuid.New().String()
}

// TruncateString cuts s to maxLength runes, marking the cut with "...".
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	return string(runes[:maxLength]) + "..."
}

func IntPtr(i int) *int {
	return &i
}

func Float64Ptr(f float64) *float64 {
	return &f
}

func FormatDuration(duration time.Duration) string {
	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// Phone Number Utilities

// NormalizePhoneNumber converts a contact number to E.164. Bare national
// numbers get the default country code. It returns "" for anything that
// cannot be a phone number.
func NormalizePhoneNumber(phone, defaultCountryCode string) string {
	trimmed := strings.TrimSpace(phone)
	cleaned := nonDigit.ReplaceAllString(trimmed, "")
	switch {
	case cleaned == "":
		return ""
	case strings.HasPrefix(trimmed, "+"):
	case strings.HasPrefix(cleaned, "00"):
		cleaned = cleaned[2:]
	default:
		cleaned = strings.TrimPrefix(cleaned, "0")
		if len(cleaned) == 10 && defaultCountryCode != "" {
			cleaned = strings.TrimPrefix(defaultCountryCode, "+") + cleaned
		}
	}
	if len(cleaned) < 8 || len(cleaned) > 15 {
		return ""
	}
	return "+" + cleaned
}

func MaskPhoneNumber(phone string) string {
	cleaned := nonDigit.ReplaceAllString(phone, "")
	if len(cleaned) < 4 {
		return phone
	}

	visible := cleaned[len(cleaned)-4:]
	masked := strings.Repeat("*", len(cleaned)-4) + visible
	return "+" + masked
}

// Retry Utilities

// RetryWithBackoff calls fn up to maxAttempts times, doubling the delay after
// each failure. It returns the number of attempts made and the last error.
// A cancelled context stops the loop between attempts; an error wrapped with
// backoff.Permanent stops it at once.
func RetryWithBackoff(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func(attempt int) error) (int, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = baseDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxInterval = time.Minute
	policy.MaxElapsedTime = 0

	attempts := 0
	var lastErr error
	err := backoff.Retry(func() error {
		attempts++
		lastErr = fn(attempts)
		return lastErr
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(maxAttempts-1)), ctx))

	if err != nil && ctx.Err() != nil && lastErr != nil && !errors.Is(err, lastErr) {
		return attempts, fmt.Errorf("%w (retry aborted: %v)", lastErr, ctx.Err())
	}
	return attempts, err
}

// Name matching

// NormalizeName lowercases s and collapses punctuation and whitespace.
func NormalizeName(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space && b.Len() > 0 {
			b.WriteRune(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// NameSimilarity returns 1 - distance/maxLen over normalized names, in [0, 1].
func NameSimilarity(a, b string) float64 {
	a, b = NormalizeName(a), NormalizeName(b)
	if a == "" && b == "" {
		return 1
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

// BestMatch returns the index of the candidate most similar to name, or -1
// when none reaches threshold.
func BestMatch(name string, candidates []string, threshold float64) (int, float64) {
	best, bestScore := -1, 0.0
	for i, candidate := range candidates {
		score := NameSimilarity(name, candidate)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if bestScore < threshold {
		return -1, bestScore
	}
	return best, bestScore
}
