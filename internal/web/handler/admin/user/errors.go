package user

import "errors"

var (
	// ErrUnknownStatus is returned when listing users by an unknown status.
	ErrUnknownStatus = errors.New("unknown account status")

	// ErrSelfStatusChange is returned when an account tries to disable itself.
	ErrSelfStatusChange = errors.New("an account cannot change its own status")
)
