// Package identity generates and validates the two identifier formats used
// throughout the pipeline:
//
//	user identifier:    user_<12 lowercase hex chars>
//	session identifier: session_<12 lowercase hex chars>_<unix seconds>
//
// Identifiers are opaque strings; equality is exact string match.
package identity

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	userPrefix    = "user_"
	sessionPrefix = "session_"
	tokenLen      = 12
)

// NewUserID returns a fresh user identifier. The random token is the first
// 12 hex chars of a v4 UUID, which keeps collision probability negligible.
func NewUserID() string {
	return userPrefix + randomToken()
}

// NewSessionID returns a fresh session identifier carrying its creation time.
func NewSessionID() string {
	return fmt.Sprintf("%s%s_%d", sessionPrefix, randomToken(), time.Now().Unix())
}

func randomToken() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:tokenLen]
}

// IsValidUserID reports whether s matches the user identifier grammar.
// Pure predicate: never panics on malformed input.
func IsValidUserID(s string) bool {
	if !strings.HasPrefix(s, userPrefix) {
		return false
	}
	return isHexToken(strings.TrimPrefix(s, userPrefix))
}

// IsValidSessionID reports whether s matches the session identifier grammar.
func IsValidSessionID(s string) bool {
	if !strings.HasPrefix(s, sessionPrefix) {
		return false
	}
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return false
	}
	if !isHexToken(parts[1]) {
		return false
	}
	_, err := strconv.ParseInt(parts[2], 10, 64)
	return err == nil
}

func isHexToken(tok string) bool {
	if len(tok) != tokenLen {
		return false
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
