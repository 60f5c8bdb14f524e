package cache

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// AnswerKey builds the cache key for a rendered answer. The question is
// normalized so trivial whitespace and casing differences share an entry.
func AnswerKey(question string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(question)), " ")
	sum := sha256.Sum256([]byte(norm))
	return fmt.Sprintf("answer:%x", sum)
}

func RateLimitKey(client string) string {
	return fmt.Sprintf("ratelimit:%s", client)
}
