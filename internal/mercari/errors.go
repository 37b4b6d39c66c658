package mercari

import "fmt"

// LoginError means authentication itself failed, as opposed to a page
// breaking mid-flow. It routes to a distinct notification title.
type LoginError struct {
	Reason string
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login failed: %s", e.Reason)
}

// LaunchError wraps a browser-launch failure. Launch failures are
// fatal for the whole run and are never retried.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("browser launch failed: %v", e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// PriceRetrievalError means the price input field could not be read.
type PriceRetrievalError struct{}

func (e *PriceRetrievalError) Error() string {
	return "failed to read the price input"
}

// PriceChangedError means the displayed price changed between listing
// enumeration and the edit page load, so the computed discount no
// longer applies.
type PriceChangedError struct {
	Expected int
	Actual   int
}

func (e *PriceChangedError) Error() string {
	return fmt.Sprintf("price changed during navigation (expected %d, got %d)", e.Expected, e.Actual)
}

// PriceVerificationError means the price shown after submitting the
// edit does not match what was submitted.
type PriceVerificationError struct {
	Expected int
	Actual   int
}

func (e *PriceVerificationError) Error() string {
	return fmt.Sprintf("price after edit does not match (expected %d, got %d)", e.Expected, e.Actual)
}
