package service

import (
	"fmt"
	"math/rand"
	"strings"
)

const (
	usernameSuffixRange = 10000
	maxUsernameAttempts = 5
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// deriveUsername builds "<local-part>-<suffix>" from an email address.
// The result is not guaranteed unique; callers retry on collision.
func deriveUsername(email string, suffix int) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		local = "user"
	}
	return fmt.Sprintf("%s-%d", local, suffix)
}

func randomSuffix() int {
	return rand.Intn(usernameSuffixRange)
}
