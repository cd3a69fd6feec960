// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

package device

import "context"

// # Device Data Access

// Repository defines the data access contract for the device registry.
type Repository interface {

	/*
		Upsert inserts the device or, when the (userID, deviceID) pair
		already exists, refreshes its lastusedat in a single atomic
		statement. Concurrent logins from the same device never produce
		duplicate rows.

		Parameters:
		  - context: context.Context
		  - device: *Device

		Returns:
		  - error: Persistence failures
	*/
	Upsert(context context.Context, device *Device) error

	/*
		ListByUser returns every device registered to the user, most
		recently used first.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []*Device: Hydrated entities
		  - error: Retrieval failures
	*/
	ListByUser(context context.Context, userID string) ([]*Device, error)

	/*
		Delete removes one device by its (userID, deviceID) pair.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - deviceID: string

		Returns:
		  - error: apperr.NotFound when the pair does not exist
	*/
	Delete(context context.Context, userID, deviceID string) error
}
