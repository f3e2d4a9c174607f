package userint

import (
	apperrors "github.com/odvcencio/userint/pkg/errors"
)

// Failures are never fatal. Every one of them leaves the State unchanged and may be
// retried once the reported condition no longer holds.

func errWrongMode(op string, mode Mode) error {
	return apperrors.Newf(apperrors.ErrCodeWrongMode, "%s refused while %s", op, mode).
		WithContext("op", op).
		WithContext("mode", mode.String()).
		WithRetryable(true)
}

func errDestroyed(op, what string) error {
	return apperrors.Newf(apperrors.ErrCodeInvalidHandle, "%s on destroyed %s", op, what).
		WithContext("op", op)
}

func errInvalidHandle(op, reason string) error {
	return apperrors.Newf(apperrors.ErrCodeInvalidHandle, "%s: %s", op, reason).
		WithContext("op", op)
}

func errOutOfRange(op string, where, size int) error {
	return apperrors.Newf(apperrors.ErrCodeOutOfRange, "%s: index %d out of range", op, where).
		WithContext("op", op).
		WithContext("where", where).
		WithContext("size", size)
}

func errInvalidInput(op, reason string) error {
	return apperrors.Newf(apperrors.ErrCodeInvalidInput, "%s: %s", op, reason).
		WithContext("op", op)
}

// IsWrongMode reports whether err was caused by calling an operation in a mode that forbids it.
func IsWrongMode(err error) bool {
	return apperrors.IsCode(err, apperrors.ErrCodeWrongMode)
}

// IsOutOfRange reports whether err was caused by an index outside the item sequence.
func IsOutOfRange(err error) bool {
	return apperrors.IsCode(err, apperrors.ErrCodeOutOfRange)
}

// IsInvalidHandle reports whether err was caused by a nil, foreign or destroyed object.
func IsInvalidHandle(err error) bool {
	return apperrors.IsCode(err, apperrors.ErrCodeInvalidHandle)
}
