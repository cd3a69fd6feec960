// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// # Opaque Tokens

/*
GenerateSecureToken returns a cryptographically random token of byteLength
random bytes, hex-encoded.

Description: Used for refresh tokens, password reset tokens, and email
verification tokens. A 32-byte input yields a 256-bit, 64-character token.

Parameters:
  - byteLength: int

Returns:
  - string: Hex-encoded token
  - error: Entropy source failures
*/
func GenerateSecureToken(byteLength int) (string, error) {
	raw := make([]byte, byteLength)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// HashToken returns the hex-encoded SHA-256 digest of a token.
//
// # Security
//
// Only digests are persisted; a database leak never exposes live token values.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
