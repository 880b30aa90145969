// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"time"

	"github.com/google/uuid"
)

// Assignment holds the fields which decide who serves a job.
// They are filled by the assignment resolver and never edited
// independently of it.
type Assignment struct {
	SupplierID    *uuid.UUID `json:"supplier_id"`
	DriverID      *uuid.UUID `json:"driver_id"`
	DriverName    string     `json:"driver_name"`
	AssignedPlate string     `json:"assigned_plate"`
}

// Assigned reports if a supplier is present.
func (a Assignment) Assigned() bool {
	return a.SupplierID != nil
}

// ClearDriver drops the own-fleet driver details.
func (a *Assignment) ClearDriver() {
	a.DriverID = nil
	a.DriverName = ""
	a.AssignedPlate = ""
}

// Job is a single transport request which flows through the pool.
type Job struct {
	ID       uuid.UUID `json:"id"`
	ClientID uuid.UUID `json:"client_id"`

	GuestName      string    `json:"guest_name"`
	GuestContact   string    `json:"guest_contact"`
	PickupLocation string    `json:"pickup_location"`
	DropLocation   string    `json:"drop_location"`
	Flight         string    `json:"flight"`
	PickupTime     time.Time `json:"pickup_time"`
	Adults         int       `json:"adults"`

	Category     string `json:"category"`
	VehicleModel string `json:"vehicle_model"`
	Assignment

	Price       float64 `json:"price"`
	TaxAmount   float64 `json:"tax_amount"`
	TotalAmount float64 `json:"total_amount"`

	Status        JobStatus `json:"status"`
	FailureReason string    `json:"failure_reason"`

	EnteredBy uuid.UUID `json:"entered_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Deletion  Deletion  `json:"deleted_at"`

	// Version is incremented by every write of the job. A write which
	// carries an older Version than the stored one is rejected.
	Version int64 `json:"version"`
}

// InCustodyOf reports if the job is assigned to the driverID driver.
func (j *Job) InCustodyOf(driverID uuid.UUID) bool {
	return j.DriverID != nil && *j.DriverID == driverID
}

// JobFilter narrows down a jobs listing. Nil fields do not filter.
type JobFilter struct {
	Status     *JobStatus
	ClientID   *uuid.UUID
	SupplierID *uuid.UUID
	DriverID   *uuid.UUID
	Limit      int
	Offset     int
}

// LogAction is the kind of a JobLog entry.
type LogAction string

// Known LogAction values.
const (
	LogActionCreated       LogAction = "CREATED"
	LogActionStatusChanged LogAction = "STATUS_CHANGED"
	LogActionUpdated       LogAction = "UPDATED"
	LogActionDeleted       LogAction = "DELETED"
)

// JobLog is an append-only audit row of a job.
type JobLog struct {
	ID        uuid.UUID `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	ActorID   uuid.UUID `json:"actor_id"`
	Action    LogAction `json:"action"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusChangeNotes formats the notes of a STATUS_CHANGED log entry.
func StatusChangeNotes(from, to JobStatus, notes string) string {
	s := "Status changed from " + from.String() + " to " + to.String()
	if notes != "" {
		s += ": " + notes
	}
	return s
}
