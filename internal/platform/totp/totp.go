// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

/*
Package totp implements time-based one-time password enrollment and
verification for multi-factor authentication.

It wraps the RFC 6238 implementation from pquerna/otp and adds backup-code
generation. Window tolerance is a caller decision: login and setup verify
with ±1 time step, while the explicit enable flow verifies with ±2 to
tolerate device clock skew during first-time enrollment.
*/
package totp

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"image/png"
	"math/big"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// # Tuning

const (
	// period is the TOTP time-step in seconds (RFC 6238 default).
	period = 30

	// secretSize is the random secret length in bytes before base32 encoding.
	secretSize = 20

	// backupCodeLength is the character length of each backup code.
	backupCodeLength = 10

	// backupCodeAlphabet is uppercase alphanumeric without lookalike pruning;
	// codes are copy-pasted, not transcribed.
	backupCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// qrImageSize is the pixel width/height of the generated QR code.
	qrImageSize = 256
)

// # Enrollment

// Enrollment is the material handed to a user during MFA setup.
type Enrollment struct {
	// Secret is the base32-encoded shared secret.
	Secret string `json:"secret"`

	// ProvisioningURI is the otpauth:// URI encoding issuer, account, and secret.
	ProvisioningURI string `json:"otpauth_uri"`

	// QRDataURI is the provisioning URI rendered as a PNG QR code,
	// base64-embedded in a data: URI ready for an <img> tag.
	QRDataURI string `json:"qr_data_uri"`
}

// Engine generates and verifies TOTP codes and backup codes.
type Engine struct {
	issuer string
}

// NewEngine constructs an Engine that labels enrollments with the given issuer.
func NewEngine(issuer string) *Engine {
	return &Engine{issuer: issuer}
}

/*
GenerateSecret creates a fresh TOTP secret for the given account label.

Parameters:
  - account: string (user email, shown in the authenticator app)

Returns:
  - *Enrollment: Secret, provisioning URI, and QR data-URI
  - error: Entropy or QR rendering failures
*/
func (engine *Engine) GenerateSecret(account string) (*Enrollment, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      engine.issuer,
		AccountName: account,
		Period:      period,
		SecretSize:  secretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("totp: failed to generate secret: %w", err)
	}

	qrImage, err := key.Image(qrImageSize, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("totp: failed to render qr code: %w", err)
	}

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, qrImage); err != nil {
		return nil, fmt.Errorf("totp: failed to encode qr png: %w", err)
	}

	return &Enrollment{
		Secret:          key.Secret(),
		ProvisioningURI: key.URL(),
		QRDataURI:       "data:image/png;base64," + base64.StdEncoding.EncodeToString(buffer.Bytes()),
	}, nil
}

/*
VerifyCode checks a submitted 6-digit code against the shared secret.

Description: The window parameter is the number of 30-second time steps of
skew tolerated on either side of now. A malformed code or secret simply
fails verification — this function never errors.

Parameters:
  - secret: string (base32)
  - code: string
  - window: uint (time steps of tolerance, typically 1 or 2)

Returns:
  - bool: true only when the code is valid within the window
*/
func (engine *Engine) VerifyCode(secret, code string, window uint) bool {
	valid, err := totp.ValidateCustom(code, secret, time.Now(), totp.ValidateOpts{
		Period:    period,
		Skew:      window,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return valid
}

// VerifyCodeAt is [VerifyCode] against an explicit reference time.
// It exists so window-boundary behavior is testable without sleeping.
func (engine *Engine) VerifyCodeAt(secret, code string, window uint, at time.Time) bool {
	valid, err := totp.ValidateCustom(code, secret, at, totp.ValidateOpts{
		Period:    period,
		Skew:      window,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return valid
}

// # Backup Codes

/*
GenerateBackupCodes creates a batch of single-use fallback credentials.

Description: Each code is 10 uppercase alphanumeric characters drawn from
crypto/rand. Uniqueness within a batch is not enforced; the collision space
(36^10) makes duplicates negligible.

Parameters:
  - count: int (10 for a standard MFA enablement)

Returns:
  - []string: Plaintext codes — shown to the user exactly once
  - error: Entropy failures
*/
func (engine *Engine) GenerateBackupCodes(count int) ([]string, error) {
	codes := make([]string, 0, count)
	alphabetSize := big.NewInt(int64(len(backupCodeAlphabet)))

	for i := 0; i < count; i++ {
		code := make([]byte, backupCodeLength)
		for j := range code {
			index, err := rand.Int(rand.Reader, alphabetSize)
			if err != nil {
				return nil, fmt.Errorf("totp: failed to generate backup code: %w", err)
			}
			code[j] = backupCodeAlphabet[index.Int64()]
		}
		codes = append(codes, string(code))
	}

	return codes, nil
}
