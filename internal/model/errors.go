package model

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrRoomConflict          = errors.New("room is already booked for this time")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrEventFull             = errors.New("event is full")
	ErrEventNotActive        = errors.New("event is not active")
	ErrDuplicateRegistration = errors.New("student is already registered for this event")

	ErrNotPermitted    = errors.New("action not permitted for this user")
	ErrInvalidInterval = errors.New("start time must be before end time")
	ErrInvalidCapacity = errors.New("capacity must be at least 1")
	ErrInvalidInput    = errors.New("invalid input")
	ErrRoomInUse       = errors.New("room still holds bookings")
)
