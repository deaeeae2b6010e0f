package models

import (
	"errors"
	"fmt"
)

// Reason identifies why the booking core refused an operation.
type Reason string

const (
	ReasonNotFound          Reason = "NotFound"
	ReasonInactive          Reason = "Inactive"
	ReasonExpired           Reason = "Expired"
	ReasonFull              Reason = "Full"
	ReasonSelfBooking       Reason = "SelfBooking"
	ReasonDuplicateBooking  Reason = "DuplicateBooking"
	ReasonInsufficientFunds Reason = "InsufficientFunds"
	ReasonInvalidAmount     Reason = "InvalidAmount"
	ReasonUserNotFound      Reason = "UserNotFound"
	ReasonUserInactive      Reason = "UserInactive"
	ReasonBookingNotFound   Reason = "BookingNotFound"
	ReasonForbidden         Reason = "Forbidden"
	ReasonInvalidTransition Reason = "InvalidTransition"
	ReasonAlreadyReviewed   Reason = "AlreadyReviewed"
	ReasonInvalidRating     Reason = "InvalidRating"
	ReasonInvalidRole       Reason = "InvalidRole"
	ReasonInvalidSlot       Reason = "InvalidSlot"
	ReasonSlotLocked        Reason = "SlotLocked"
	ReasonDuplicateRequest  Reason = "DuplicateRequest"
	ReasonTransientConflict Reason = "TransientConflict"
	ReasonInvalidInput      Reason = "InvalidInput"
	ReasonUsernameTaken     Reason = "UsernameTaken"
)

// RejectionError is returned for every refused operation. Two rejections are
// considered equal by errors.Is when their reasons match.
type RejectionError struct {
	Reason  Reason
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *RejectionError) Is(target error) bool {
	t, ok := target.(*RejectionError)
	return ok && t.Reason == e.Reason
}

// Reject builds a RejectionError with a formatted message.
func Reject(reason Reason, format string, args ...any) error {
	return &RejectionError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from err, if any.
func ReasonOf(err error) (Reason, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound          = &RejectionError{Reason: ReasonNotFound}
	ErrInactive          = &RejectionError{Reason: ReasonInactive}
	ErrExpired           = &RejectionError{Reason: ReasonExpired}
	ErrFull              = &RejectionError{Reason: ReasonFull}
	ErrSelfBooking       = &RejectionError{Reason: ReasonSelfBooking}
	ErrDuplicateBooking  = &RejectionError{Reason: ReasonDuplicateBooking}
	ErrInsufficientFunds = &RejectionError{Reason: ReasonInsufficientFunds}
	ErrInvalidAmount     = &RejectionError{Reason: ReasonInvalidAmount}
	ErrUserNotFound      = &RejectionError{Reason: ReasonUserNotFound}
	ErrUserInactive      = &RejectionError{Reason: ReasonUserInactive}
	ErrBookingNotFound   = &RejectionError{Reason: ReasonBookingNotFound}
	ErrForbidden         = &RejectionError{Reason: ReasonForbidden}
	ErrInvalidTransition = &RejectionError{Reason: ReasonInvalidTransition}
	ErrAlreadyReviewed   = &RejectionError{Reason: ReasonAlreadyReviewed}
	ErrInvalidRating     = &RejectionError{Reason: ReasonInvalidRating}
	ErrInvalidRole       = &RejectionError{Reason: ReasonInvalidRole}
	ErrInvalidSlot       = &RejectionError{Reason: ReasonInvalidSlot}
	ErrSlotLocked        = &RejectionError{Reason: ReasonSlotLocked}
	ErrDuplicateRequest  = &RejectionError{Reason: ReasonDuplicateRequest}
	ErrTransientConflict = &RejectionError{Reason: ReasonTransientConflict}
	ErrInvalidInput      = &RejectionError{Reason: ReasonInvalidInput}
	ErrUsernameTaken     = &RejectionError{Reason: ReasonUsernameTaken}
)
