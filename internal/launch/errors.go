// internal/launch/errors.go
package launch

import "fmt"

// ImageFetchError means the image URL the user supplied could not be
// downloaded. It is terminal: a dead link fails identically on every
// attempt, and silently launching with the placeholder image instead
// of the requested one would be worse than stopping.
type ImageFetchError struct {
	URL string
	Err error
}

func (e *ImageFetchError) Error() string {
	return fmt.Sprintf("failed to fetch token image from %s: %v", e.URL, e.Err)
}

func (e *ImageFetchError) Unwrap() error {
	return e.Err
}

// StepError reports which stage of the launch sequence failed. The
// sequence never rolls back, so the step tells the operator what has
// already happened on-chain by the time the error surfaced.
type StepError struct {
	Step State
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("launch failed at %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
