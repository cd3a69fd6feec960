// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package sec

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// # Password Hashing (argon2id)

// Opinionated argon2id parameters for the Workhive workload.
//
// Memory-hard by design: 64 MiB per hash keeps GPU cracking expensive while
// staying well under one request's latency budget on server hardware.
const (
	argonMemoryKB    uint32 = 64 * 1024
	argonTime        uint32 = 3
	argonParallelism uint8  = 2
	argonSaltLength         = 16
	argonKeyLength   uint32 = 32
)

// dummySalt is a fixed salt used to burn a full KDF run when the stored hash
// is malformed, so that a corrupted-hash verify takes comparable time to a
// wrong-password verify and does not leak hash-format state.
var dummySalt = []byte("workhive-dummy-salt-")

/*
HashPassword hashes a plain-text password using argon2id.

Description: A fresh random salt is generated per call and embedded in the
PHC-formatted output string, so no separate salt storage is needed.

Parameters:
  - plainTextPassword: string

Returns:
  - string: PHC-encoded hash ($argon2id$v=19$m=...,t=...,p=...$salt$hash)
  - error: Entropy source failures
*/
func HashPassword(plainTextPassword string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("sec: failed to generate password salt: %w", err)
	}

	hash := argon2.IDKey(
		[]byte(plainTextPassword),
		salt,
		argonTime,
		argonMemoryKB,
		argonParallelism,
		argonKeyLength,
	)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemoryKB,
		argonTime,
		argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

/*
CheckPasswordHash compares a plain-text password with its stored argon2id hash.

Description: Never returns an error. A malformed stored hash yields false, but
only after a full KDF run against a dummy salt so the failure is not trivially
distinguishable from a wrong password by timing.

Parameters:
  - plainTextPassword: string
  - existingHash: string (PHC-encoded)

Returns:
  - bool: true only when the password matches
*/
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	parsed, err := parsePHC(existingHash)
	if err != nil {
		// Burn the KDF anyway. See dummySalt.
		_ = argon2.IDKey([]byte(plainTextPassword), dummySalt, argonTime, argonMemoryKB, argonParallelism, argonKeyLength)
		return false
	}

	computed := argon2.IDKey(
		[]byte(plainTextPassword),
		parsed.salt,
		parsed.time,
		parsed.memory,
		parsed.parallelism,
		uint32(len(parsed.hash)),
	)

	return subtle.ConstantTimeCompare(computed, parsed.hash) == 1
}

// parsedPHC holds the decoded components of a PHC-formatted argon2id string.
type parsedPHC struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

// parsePHC decodes a $argon2id$... string into its components.
func parsePHC(encodedHash string) (*parsedPHC, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, fmt.Errorf("sec: invalid PHC format")
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || version != argon2.Version {
		return nil, fmt.Errorf("sec: unsupported argon2 version")
	}

	var memory, timeCost uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &parallelism); err != nil {
		return nil, fmt.Errorf("sec: invalid argon2 parameters")
	}
	if memory == 0 || timeCost == 0 || parallelism == 0 {
		return nil, fmt.Errorf("sec: invalid argon2 parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, fmt.Errorf("sec: invalid salt encoding")
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return nil, fmt.Errorf("sec: invalid hash encoding")
	}

	return &parsedPHC{
		memory:      memory,
		time:        timeCost,
		parallelism: parallelism,
		salt:        salt,
		hash:        hash,
	}, nil
}
