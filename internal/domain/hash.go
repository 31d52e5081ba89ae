package domain

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// NormalizeContent joins the card's content fields after cleaning each
// one: lowercased, whitespace-trimmed, line endings normalized. The
// newline separator keeps adjacent fields from running together.
func NormalizeContent(card Card) string {
	clean := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		return strings.ReplaceAll(p, "\r\n", "\n")
	}
	return strings.Join([]string{clean(card.Question), clean(card.Answer), clean(card.Context)}, "\n")
}

// ContentHash returns the SHA-256 of the normalized card content as a hex
// string. It is stable across formatting and casing differences, so a
// re-imported card keeps its scheduling state.
func ContentHash(card Card) string {
	sum := sha256.Sum256([]byte(NormalizeContent(card)))
	return fmt.Sprintf("%x", sum)
}
