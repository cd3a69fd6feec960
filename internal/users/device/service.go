// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/workhive/workhive/internal/platform/sec"
	"github.com/workhive/workhive/pkg/uuid"
)

// # Contracts & Types

// SessionRevoker cascades session revocation when a device is removed.
// Implemented by the auth package's TokenService.
type SessionRevoker interface {
	// RevokeByDevice deletes all of a user's sessions bound to one device.
	RevokeByDevice(context context.Context, userID, deviceID string) error
}

// Service implements the device registry use cases.
type Service struct {
	repository Repository
	sessions   SessionRevoker
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(repository Repository, sessions SessionRevoker) *Service {
	return &Service{repository: repository, sessions: sessions}
}

/*
Record upserts the device seen in an authenticated request.

Description: When the client supplies no device identifier, a stable
fingerprint is derived from the IP and user agent so repeat visits from the
same browser collapse onto one row. Returns the resolved identifier for the
session being issued.

Parameters:
  - context: context.Context
  - userID: string
  - deviceID: string (client-supplied; may be empty)
  - ipAddress: string
  - userAgent: string

Returns:
  - string: Resolved device identifier
  - error: Persistence failures
*/
func (service *Service) Record(context context.Context, userID, deviceID, ipAddress, userAgent string) (string, error) {
	if deviceID == "" {
		deviceID = fingerprint(ipAddress, userAgent)
	}

	platform := inferPlatform(userAgent)
	device := &Device{
		ID:       uuid.New(),
		UserID:   userID,
		DeviceID: deviceID,
		Platform: platform,
		Name:     defaultName(platform),
	}

	if err := service.repository.Upsert(context, device); err != nil {
		return "", fmt.Errorf("device_service_record_failed: %w", err)
	}

	return deviceID, nil
}

/*
List returns every device registered to the user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Device: Most recently used first
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, userID string) ([]*Device, error) {
	devices, err := service.repository.ListByUser(context, userID)
	if err != nil {
		return nil, fmt.Errorf("device_service_list_failed: %w", err)
	}
	return devices, nil
}

/*
Remove deletes a device and revokes every session bound to it.

Description: Sessions go first; a failure between the two steps leaves an
orphaned device row rather than live sessions on a removed device.

Parameters:
  - context: context.Context
  - userID: string
  - deviceID: string

Returns:
  - error: apperr.NotFound or revocation failures
*/
func (service *Service) Remove(context context.Context, userID, deviceID string) error {
	if err := service.sessions.RevokeByDevice(context, userID, deviceID); err != nil {
		return fmt.Errorf("device_service_revoke_failed: %w", err)
	}

	if err := service.repository.Delete(context, userID, deviceID); err != nil {
		return err
	}

	return nil
}

// # Helpers

// fingerprint derives a stable identifier for clients that do not supply one.
func fingerprint(ipAddress, userAgent string) string {
	return sec.HashToken(ipAddress + "|" + userAgent)
}

// inferPlatform maps a user agent onto the closed platform set.
func inferPlatform(userAgent string) Platform {
	agent := strings.ToLower(userAgent)
	switch {
	case strings.Contains(agent, "iphone"), strings.Contains(agent, "ipad"), strings.Contains(agent, "ios"):
		return PlatformIOS
	case strings.Contains(agent, "android"):
		return PlatformAndroid
	default:
		return PlatformWeb
	}
}

// defaultName picks a friendly label for a first-seen device.
func defaultName(platform Platform) string {
	switch platform {
	case PlatformIOS:
		return "iOS device"
	case PlatformAndroid:
		return "Android device"
	case PlatformWeb:
		return "Web browser"
	default:
		return "Unknown device"
	}
}
