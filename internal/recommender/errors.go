package recommender

import (
	"errors"
	"fmt"
)

// InsufficientDataError is returned when there is nothing to draw neighbours from:
// either no observations at all or none for the target user.
type InsufficientDataError struct {
	UserID int64
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for user %d: %s", e.UserID, e.Reason)
}

// InvalidObservationError reports a rating that is not a usable number or falls
// outside the configured bounds.
type InvalidObservationError struct {
	Index       int
	Observation Observation
	Reason      string
}

func (e *InvalidObservationError) Error() string {
	return fmt.Sprintf("invalid observation #%d (user=%d item=%d rating=%v): %s",
		e.Index, e.Observation.UserID, e.Observation.ItemID, e.Observation.Rating, e.Reason)
}

// IsInsufficientData checks whether err is (or wraps) an InsufficientDataError
func IsInsufficientData(err error) bool {
	var target *InsufficientDataError
	return errors.As(err, &target)
}

// IsInvalidObservation checks whether err is (or wraps) an InvalidObservationError
func IsInvalidObservation(err error) bool {
	var target *InvalidObservationError
	return errors.As(err, &target)
}
