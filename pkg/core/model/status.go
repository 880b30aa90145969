// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

import (
	"errors"
	"fmt"
)

// JobStatus specifies the lifecycle state of a job. Although this enum
// is numeric, it is (de)serialized as an upper-case string in both of
// the database and REST API representations.
type JobStatus int

// Valid values for the JobStatus enum.
const (
	JobStatusInvalid JobStatus = iota // zero value is invalid

	JobStatusInPool    // waiting for a supplier
	JobStatusAssigned  // a supplier (and maybe a driver) is assigned
	JobStatusStarted   // driver is heading to the pickup location
	JobStatusPicked    // guest is on board
	JobStatusCompleted // terminal
	JobStatusCancelled // terminal
	JobStatusFailed    // terminal, carries a failure reason
)

// ErrUnknownJobStatus indicates that a given string may not be parsed
// as a known job status.
var ErrUnknownJobStatus = errors.New("unknown job status")

// JobStatusError indicates an invalid job status integer.
type JobStatusError int

// Error implements the error interface.
func (e JobStatusError) Error() string {
	return fmt.Sprintf("invalid job status: %d", e)
}

// transitions lists the statuses which may follow each status.
// Terminal statuses have no entry.
var transitions = map[JobStatus][]JobStatus{
	JobStatusInPool: {
		JobStatusAssigned, JobStatusCancelled, JobStatusFailed,
	},
	JobStatusAssigned: {
		JobStatusStarted, JobStatusCancelled, JobStatusFailed,
	},
	JobStatusStarted: {
		JobStatusPicked, JobStatusCancelled, JobStatusFailed,
	},
	JobStatusPicked: {
		JobStatusCompleted, JobStatusCancelled, JobStatusFailed,
	},
}

// Validate returns nil if JobStatus value is valid. For invalid
// values, an instance of the JobStatusError will be returned.
func (s JobStatus) Validate() error {
	if s < JobStatusInPool || s > JobStatusFailed {
		return JobStatusError(s)
	}
	return nil
}

// String converts the JobStatus enum to its canonical upper-case name.
// Invalid job status causes a panic.
func (s JobStatus) String() string {
	switch s {
	case JobStatusInPool:
		return "IN_POOL"
	case JobStatusAssigned:
		return "ASSIGNED"
	case JobStatusStarted:
		return "STARTED"
	case JobStatusPicked:
		return "PICKED"
	case JobStatusCompleted:
		return "COMPLETED"
	case JobStatusCancelled:
		return "CANCELLED"
	case JobStatusFailed:
		return "FAILED"
	default:
		panic(JobStatusError(s))
	}
}

// ParseJobStatus parses the given string and returns a JobStatus.
// For invalid strings, JobStatusInvalid and ErrUnknownJobStatus
// will be returned.
func ParseJobStatus(s string) (JobStatus, error) {
	switch s {
	case "IN_POOL":
		return JobStatusInPool, nil
	case "ASSIGNED":
		return JobStatusAssigned, nil
	case "STARTED":
		return JobStatusStarted, nil
	case "PICKED":
		return JobStatusPicked, nil
	case "COMPLETED":
		return JobStatusCompleted, nil
	case "CANCELLED":
		return JobStatusCancelled, nil
	case "FAILED":
		return JobStatusFailed, nil
	default:
		return JobStatusInvalid, ErrUnknownJobStatus
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s JobStatus) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *JobStatus) UnmarshalText(data []byte) error {
	ss, err := ParseJobStatus(string(data))
	if err != nil {
		return err
	}
	*s = ss
	return nil
}

// Terminal reports if s admits no further transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusCancelled, JobStatusFailed:
		return true
	default:
		return false
	}
}

// CanTransition reports if the lifecycle table permits moving a job
// from the s status to the target status. It ignores the actor role.
func (s JobStatus) CanTransition(target JobStatus) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Next returns a fresh slice of the statuses which may follow s.
func (s JobStatus) Next() []JobStatus {
	return append([]JobStatus(nil), transitions[s]...)
}

// JobStatuses returns all valid statuses in their lifecycle order.
func JobStatuses() []JobStatus {
	return []JobStatus{
		JobStatusInPool, JobStatusAssigned, JobStatusStarted,
		JobStatusPicked, JobStatusCompleted, JobStatusCancelled,
		JobStatusFailed,
	}
}
