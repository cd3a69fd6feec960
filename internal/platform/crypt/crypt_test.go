// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package crypt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workhive/workhive/internal/platform/crypt"
)

const testKey = "unit-test-key-material"

/*
TestEncrypt_RoundTrip verifies that any plaintext survives an
encrypt/decrypt cycle exactly.
*/
func TestEncrypt_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext string
	}{
		{"totp_secret", "JBSWY3DPEHPK3PXP"},
		{"backup_code", "A7K2M9XQ4T"},
		{"empty", ""},
		{"unicode", "日本語のテキスト🔐"},
		{"contains_separator", "left:right:colon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := crypt.Encrypt(tt.plaintext, testKey)
			require.NoError(t, err)

			recovered, err := crypt.Decrypt(blob, testKey)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, recovered)
		})
	}
}

/*
TestEncrypt_BlobFormat verifies the persisted salt:iv:tag:ciphertext layout.
*/
func TestEncrypt_BlobFormat(t *testing.T) {
	blob, err := crypt.Encrypt("JBSWY3DPEHPK3PXP", testKey)
	require.NoError(t, err)

	fields := strings.Split(blob, ":")
	require.Len(t, fields, 4)

	// salt(16B) iv(12B) tag(16B), each hex-encoded.
	assert.Len(t, fields[0], 32)
	assert.Len(t, fields[1], 24)
	assert.Len(t, fields[2], 32)
	assert.NotEmpty(t, fields[3])
}

/*
TestEncrypt_NonDeterministic verifies that the same plaintext/key yields a
fresh blob per call (random salt and IV).
*/
func TestEncrypt_NonDeterministic(t *testing.T) {
	first, err := crypt.Encrypt("JBSWY3DPEHPK3PXP", testKey)
	require.NoError(t, err)

	second, err := crypt.Encrypt("JBSWY3DPEHPK3PXP", testKey)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

/*
TestDecrypt_WrongKey verifies that the authentication tag rejects a blob
opened under different key material.
*/
func TestDecrypt_WrongKey(t *testing.T) {
	blob, err := crypt.Encrypt("JBSWY3DPEHPK3PXP", testKey)
	require.NoError(t, err)

	_, err = crypt.Decrypt(blob, "some-other-key")
	assert.ErrorIs(t, err, crypt.ErrDecrypt)
}

/*
TestDecrypt_Tampered verifies that flipping ciphertext bits fails closed.
*/
func TestDecrypt_Tampered(t *testing.T) {
	blob, err := crypt.Encrypt("JBSWY3DPEHPK3PXP", testKey)
	require.NoError(t, err)

	fields := strings.Split(blob, ":")
	require.Len(t, fields, 4)

	// Flip one hex digit in the ciphertext field.
	ct := []byte(fields[3])
	if ct[0] == 'a' {
		ct[0] = 'b'
	} else {
		ct[0] = 'a'
	}
	fields[3] = string(ct)

	_, err = crypt.Decrypt(strings.Join(fields, ":"), testKey)
	assert.ErrorIs(t, err, crypt.ErrDecrypt)
}

/*
TestDecrypt_Malformed verifies that structurally damaged blobs are reported
as malformed, and that malformed implies the decrypt error class.
*/
func TestDecrypt_Malformed(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"empty", ""},
		{"too_few_fields", "aabb:ccdd:eeff"},
		{"too_many_fields", "aa:bb:cc:dd:ee"},
		{"not_hex", "zz:zz:zz:zz"},
		{"short_salt", "aabb:000000000000000000000000:00000000000000000000000000000000:aabb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := crypt.Decrypt(tt.blob, testKey)
			assert.ErrorIs(t, err, crypt.ErrMalformed)
			assert.ErrorIs(t, err, crypt.ErrDecrypt)
		})
	}
}
