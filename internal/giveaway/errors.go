package giveaway

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that the referenced giveaway id does not exist
// under the organizer's key. Handlers recover from it with a user-facing
// notice and a state reset.
var ErrNotFound = errors.New("giveaway not found")

// ErrNoParticipants reports a draw attempt on an empty pool. The record
// is left untouched.
var ErrNoParticipants = errors.New("giveaway has no participants")

// StorageError wraps a failure to reach or round-trip the record store.
// It aborts the current update; nothing is partially persisted.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Code identifies the error kind in handler summary logs.
func (e *StorageError) Code() string { return "STORAGE_ERROR" }

// TransportError wraps a failed outbound Telegram call. No retry happens
// at this layer; the sender dispatcher owns transient-retry policy.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Code identifies the error kind in handler summary logs.
func (e *TransportError) Code() string { return "TRANSPORT_ERROR" }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

func transportErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}
