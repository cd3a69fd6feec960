// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"

	"github.com/workhive/workhive/internal/platform/apperr"
	"github.com/workhive/workhive/internal/platform/crypt"
	"github.com/workhive/workhive/internal/platform/ctxutil"
	"github.com/workhive/workhive/internal/platform/sec"
)

// # MFA Challenge

// VerifyMFAInput completes a pending MFA challenge from login.
type VerifyMFAInput struct {
	TempToken string
	Code      string
	Client    ClientInfo
}

/*
VerifyMFA completes the MFA_PENDING half of a login.

Description: Resolves the temp token to a user (failing closed on invalid,
expired, or wrong-type tokens), verifies the TOTP code with a ±1 step window,
and falls back to the backup-code set before rejecting. Consuming a backup
code atomically removes exactly that one code.

Parameters:
  - context: context.Context
  - input: VerifyMFAInput

Returns:
  - *AuthSession: Established session
  - error: Unauthorized on any token or code failure
*/
func (service *Service) VerifyMFA(context context.Context, input VerifyMFAInput) (*AuthSession, error) {
	userID, err := service.tokens.VerifyTempToken(input.TempToken)
	if err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, apperr.Unauthorized(genericCredentialsMessage)
	}
	if !user.MFAEnabled || user.MFASecretEnc == "" {
		return nil, apperr.Unauthorized(genericCredentialsMessage)
	}

	secret, err := crypt.Decrypt(user.MFASecretEnc, service.encryptionKey)
	if err != nil {
		// Tampered or corrupted at-rest data. Never leak detail to the client.
		return nil, apperr.Internal(fmt.Errorf("auth_service_mfa_secret_decrypt_failed: %w", err))
	}

	if !service.totpEngine.VerifyCode(secret, input.Code, LoginTOTPWindow) {
		if !service.consumeBackupCode(context, user, input.Code) {
			return nil, apperr.Unauthorized(genericCredentialsMessage)
		}
	}

	if err := service.userRepository.UpdateLastLogin(context, user.ID); err != nil {
		return nil, fmt.Errorf("auth_service_mfa_last_login_failed: %w", err)
	}

	return service.issueSession(context, user, input.Client)
}

// consumeBackupCode checks the submitted code against the stored encrypted
// set and, on a match, atomically removes that one code. Returns false when
// no code matches or the matched code was consumed by a concurrent request.
func (service *Service) consumeBackupCode(context context.Context, user *User, code string) bool {
	submitted := strings.ToUpper(strings.TrimSpace(code))
	if submitted == "" {
		return false
	}

	for _, blob := range user.BackupCodesEnc {
		plaintext, err := crypt.Decrypt(blob, service.encryptionKey)
		if err != nil {
			ctxutil.GetLogger(context).ErrorContext(context, "backup_code_decrypt_failed",
				slog.String("user_id", user.ID))
			continue
		}

		if subtle.ConstantTimeCompare([]byte(plaintext), []byte(submitted)) != 1 {
			continue
		}

		// Removal is keyed by the exact stored blob; a concurrent replay of
		// the same code loses the row-condition race.
		if err := service.userRepository.ConsumeBackupCode(context, user.ID, blob); err != nil {
			return false
		}
		return true
	}

	return false
}

// # MFA Enrollment (two-phase: setup -> enable)

// MFASetup is the enrollment material returned by SetupMFA.
type MFASetup struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
	QRCode          string `json:"qr_code"` // PNG data URI
}

/*
SetupMFA generates and stages a TOTP secret without enabling MFA.

Description: First half of the two-phase commit. The encrypted secret is
stored but mfaEnabled stays false, so a user who abandons setup never has
MFA accidentally required. Re-running setup replaces the staged secret.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *MFASetup: Secret, provisioning URI, and QR payload for the authenticator app
  - error: Conflict when MFA is already enabled, or storage failures
*/
func (service *Service) SetupMFA(context context.Context, userID string) (*MFASetup, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	if user.MFAEnabled {
		return nil, apperr.Conflict("MFA is already enabled")
	}

	enrollment, err := service.totpEngine.GenerateSecret(user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_mfa_setup_failed: %w", err)
	}

	secretEnc, err := crypt.Encrypt(enrollment.Secret, service.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("auth_service_mfa_secret_encrypt_failed: %w", err)
	}

	if err := service.userRepository.SetMFASecret(context, user.ID, secretEnc); err != nil {
		return nil, fmt.Errorf("auth_service_mfa_secret_store_failed: %w", err)
	}

	return &MFASetup{
		Secret:          enrollment.Secret,
		ProvisioningURI: enrollment.ProvisioningURI,
		QRCode:          enrollment.QRDataURI,
	}, nil
}

/*
EnableMFA commits the second half of enrollment.

Description: Requires a correct code against the staged secret, verified with
the wider ±2 step window to tolerate clock skew on a freshly enrolled device.
On success it flips the enabled flag, stores a fresh encrypted backup-code
set, and emails the plaintext codes exactly once — they are never retrievable
again.

Parameters:
  - context: context.Context
  - userID: string
  - code: string

Returns:
  - []string: Plaintext backup codes, shown once
  - error: Unauthorized on a bad code, or storage failures
*/
func (service *Service) EnableMFA(context context.Context, userID, code string) ([]string, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}
	if user.MFAEnabled {
		return nil, apperr.Conflict("MFA is already enabled")
	}
	if user.MFASecretEnc == "" {
		return nil, apperr.ValidationError("MFA setup has not been started")
	}

	secret, err := crypt.Decrypt(user.MFASecretEnc, service.encryptionKey)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_mfa_secret_decrypt_failed: %w", err))
	}

	if !service.totpEngine.VerifyCode(secret, code, EnableTOTPWindow) {
		return nil, apperr.Unauthorized("Invalid verification code")
	}

	codes, err := service.totpEngine.GenerateBackupCodes(BackupCodeCount)
	if err != nil {
		return nil, fmt.Errorf("auth_service_backup_codes_failed: %w", err)
	}

	codesEnc := make([]string, 0, len(codes))
	for _, plaintext := range codes {
		blob, err := crypt.Encrypt(plaintext, service.encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("auth_service_backup_code_encrypt_failed: %w", err)
		}
		codesEnc = append(codesEnc, blob)
	}

	if err := service.userRepository.EnableMFA(context, user.ID, codesEnc); err != nil {
		return nil, fmt.Errorf("auth_service_enable_mfa_failed: %w", err)
	}

	if err := service.mail.SendBackupCodes(context, user.Email, codes); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "backup_codes_mail_failed", slog.String("error", err.Error()))
	}

	return codes, nil
}

/*
DisableMFA turns off multi-factor authentication.

Description: Requires the current password AND a valid code, so a bare stolen
access token cannot strip the account's second factor. Clears the secret,
backup codes, and the enabled flag.

Parameters:
  - context: context.Context
  - userID: string
  - password: string
  - code: string

Returns:
  - error: Unauthorized on bad password or code, or storage failures
*/
func (service *Service) DisableMFA(context context.Context, userID, password, code string) error {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}
	if !user.MFAEnabled || user.MFASecretEnc == "" {
		return apperr.ValidationError("MFA is not enabled")
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return apperr.Unauthorized(genericCredentialsMessage)
	}

	secret, err := crypt.Decrypt(user.MFASecretEnc, service.encryptionKey)
	if err != nil {
		return apperr.Internal(fmt.Errorf("auth_service_mfa_secret_decrypt_failed: %w", err))
	}

	if !service.totpEngine.VerifyCode(secret, code, LoginTOTPWindow) {
		return apperr.Unauthorized(genericCredentialsMessage)
	}

	if err := service.userRepository.DisableMFA(context, user.ID); err != nil {
		return fmt.Errorf("auth_service_disable_mfa_failed: %w", err)
	}

	return nil
}
