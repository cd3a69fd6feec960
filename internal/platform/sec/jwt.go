// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing,
// opaque token generation) from the domain logic. It acts as an
// Infrastructure service injected into the Application layer via the
// [TokenProvider] interface.
package sec

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Token Types

// Signed JWTs carry an explicit type tag so an MFA-pending temporary token
// can never be replayed as an access token, and vice versa.
const (
	// TokenTypeAccess marks a fully authenticated access token.
	TokenTypeAccess = "access"

	// TokenTypeMFATemp marks the short-lived token bridging password
	// verification and MFA-code verification. It grants no API access.
	TokenTypeMFATemp = "mfa_temp"
)

// AuthClaims represents the payload embedded inside a Workhive JWT.
//
// # Why custom claims?
//
// By embedding the UserID and Email directly inside the JWT, the
// authentication middleware can reconstruct the active user context
// WITHOUT querying the database on every single API request.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID    string `json:"uid"`
	Email     string `json:"eml"`
	TokenType string `json:"typ"`
}

// TokenService handles generation and verification of JWT tokens using RS256.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

// NewTokenService creates a new TokenService.
// It reads RSA keys from the provided filesystem paths.
func NewTokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse private key: %w", err)
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
	}, nil
}

// NewTokenServiceFromKey creates a TokenService directly from an in-memory
// RSA private key. Intended for tests and ephemeral environments.
func NewTokenServiceFromKey(privateKey *rsa.PrivateKey, issuer string) *TokenService {
	return &TokenService{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
	}
}

// GenerateAccessToken creates a new JWT access token for a user.
func (service *TokenService) GenerateAccessToken(userID, email string, timeToLive time.Duration) (string, error) {
	return service.sign(userID, email, TokenTypeAccess, timeToLive)
}

// GenerateTempToken creates a short-lived MFA-pending token for a user.
//
// The token carries only the user ID and the mfa_temp type tag; it is
// stateless and valid purely by signature + expiry.
func (service *TokenService) GenerateTempToken(userID string, timeToLive time.Duration) (string, error) {
	return service.sign(userID, "", TokenTypeMFATemp, timeToLive)
}

// sign builds and signs a typed claim set.
func (service *TokenService) sign(userID, email, tokenType string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(service.privateKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature, validity, and type of an access token.
//
// Tokens of any other type (including mfa_temp) are rejected.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	claims, err := service.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.TokenType != TokenTypeAccess {
		return nil, fmt.Errorf("sec: token is not an access token")
	}

	return claims, nil
}

// VerifyTempToken checks the signature, validity, and type of an MFA-pending
// token and returns the user ID it was issued for.
func (service *TokenService) VerifyTempToken(tokenString string) (string, error) {
	claims, err := service.parse(tokenString)
	if err != nil {
		return "", err
	}

	if claims.TokenType != TokenTypeMFATemp {
		return "", fmt.Errorf("sec: token is not an mfa_temp token")
	}

	return claims.UserID, nil
}

// parse verifies the RS256 signature and standard validity window.
func (service *TokenService) parse(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.publicKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
