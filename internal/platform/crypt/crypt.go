// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

/*
Package crypt provides authenticated encryption for secrets at rest.

It protects MFA secrets and backup codes stored in PostgreSQL, so a database
leak alone never exposes live TOTP material.

Architecture:

  - Cipher: AES-256-GCM (confidentiality + integrity tag).
  - Key derivation: PBKDF2-SHA256 with a per-call random salt, so the same
    plaintext and key material never produce the same ciphertext, and a
    captured blob cannot be attacked without also paying the KDF cost.
  - Format: four ':'-joined lowercase-hex fields — salt, iv, tag, ciphertext.

The 100k-iteration KDF on every call is intentional defense-in-depth, not an
oversight. Callers encrypt rarely (MFA setup/enable) and decrypt on MFA login
only, so the cost stays off the hot path.
*/
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// # Parameters

const (
	// kdfIterations is the PBKDF2 iteration count for key derivation.
	kdfIterations = 100_000

	// saltLength is the byte length of the per-call random KDF salt.
	saltLength = 16

	// ivLength is the standard GCM nonce length.
	ivLength = 12

	// keyLength yields an AES-256 key.
	keyLength = 32

	// tagLength is the GCM authentication tag length.
	tagLength = 16

	// fieldSeparator joins the hex fields. ':' is not a valid hex character,
	// so the format is unambiguous.
	fieldSeparator = ":"

	// blobFieldCount is the expected number of fields in an encrypted blob.
	blobFieldCount = 4
)

// # Errors

var (
	// ErrDecrypt is returned when a blob fails authentication (tampering,
	// wrong key) or cannot be processed. Callers must surface this as an
	// opaque internal error — never the underlying detail.
	ErrDecrypt = errors.New("crypt: decryption failed")

	// ErrMalformed is returned when a blob does not have the expected
	// salt:iv:tag:ciphertext layout. It matches errors.Is(err, ErrDecrypt).
	ErrMalformed = fmt.Errorf("%w: malformed blob", ErrDecrypt)
)

// # Operations

/*
Encrypt seals plaintext under key material using AES-256-GCM.

Description: Generates a fresh random salt and IV per call, derives the AES
key via PBKDF2-SHA256 (100k iterations) from the key material and salt, and
returns the four hex fields joined by ':'.

Parameters:
  - plaintext: string
  - keyMaterial: string (long-lived application secret)

Returns:
  - string: salt:iv:tag:ciphertext (lowercase hex)
  - error: Entropy or cipher initialization failures
*/
func Encrypt(plaintext, keyMaterial string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("crypt: failed to generate salt: %w", err)
	}

	iv := make([]byte, ivLength)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("crypt: failed to generate iv: %w", err)
	}

	aead, err := newAEAD(keyMaterial, salt)
	if err != nil {
		return "", err
	}

	// Seal appends the 16-byte tag to the ciphertext; split it back out so
	// the stored format keeps tag and ciphertext as separate fields.
	sealed := aead.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagLength]
	tag := sealed[len(sealed)-tagLength:]

	fields := []string{
		hex.EncodeToString(salt),
		hex.EncodeToString(iv),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	}

	return strings.Join(fields, fieldSeparator), nil
}

/*
Decrypt opens a blob produced by [Encrypt].

Description: Re-derives the AES key from the embedded salt and verifies the
GCM tag. Any tampering, wrong key material, or format damage fails closed.

Parameters:
  - blob: string (salt:iv:tag:ciphertext)
  - keyMaterial: string

Returns:
  - string: Recovered plaintext
  - error: ErrMalformed on bad layout, ErrDecrypt on authentication failure
*/
func Decrypt(blob, keyMaterial string) (string, error) {
	fields := strings.Split(blob, fieldSeparator)
	if len(fields) != blobFieldCount {
		return "", ErrMalformed
	}

	salt, err := hex.DecodeString(fields[0])
	if err != nil || len(salt) != saltLength {
		return "", ErrMalformed
	}

	iv, err := hex.DecodeString(fields[1])
	if err != nil || len(iv) != ivLength {
		return "", ErrMalformed
	}

	tag, err := hex.DecodeString(fields[2])
	if err != nil || len(tag) != tagLength {
		return "", ErrMalformed
	}

	ciphertext, err := hex.DecodeString(fields[3])
	if err != nil {
		return "", ErrMalformed
	}

	aead, err := newAEAD(keyMaterial, salt)
	if err != nil {
		return "", err
	}

	sealed := append(ciphertext, tag...)
	plaintext, err := aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrDecrypt
	}

	return string(plaintext), nil
}

// newAEAD derives the AES-256 key from the key material and salt and
// constructs the GCM cipher.
func newAEAD(keyMaterial string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(keyMaterial), salt, kdfIterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypt: failed to initialize cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: failed to initialize gcm: %w", err)
	}

	return aead, nil
}
