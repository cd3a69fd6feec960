// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

/*
Package device implements the client device registry.

A device is a client-identified endpoint (browser or app install) tracked
independently of any single session: sessions come and go with token
rotation, while the device row persists and only refreshes its lastusedat.

# Architecture

The registry is upsert-driven: every successful authentication records the
device seen in the request, keyed by the unique (userID, deviceID) pair.
Removal cascades revocation of the device's sessions.
*/
package device

import "time"

// # Platforms

// Platform is the closed set of client platform labels inferred from the
// user agent.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

// # Domain Entities

// Device represents one (user, deviceID) pair.
type Device struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	DeviceID   string    `json:"device_id"`
	Platform   Platform  `json:"platform"`
	Name       string    `json:"name"`
	LastUsedAt time.Time `json:"last_used_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// # Field Identifiers

const (
	FieldDeviceID = "device_id"
	FieldDevices  = "devices"
	FieldMessage  = "message"
)
