package device

import (
	"fmt"

	"emurig/internal/catalog"
)

// InvalidQueryError reports a device query that fails the grammar.
type InvalidQueryError struct {
	Query string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid device query %q", e.Query)
}

// NoCandidateError reports a resolution that matched no scanned binary.
type NoCandidateError struct {
	Search catalog.AppSearch
}

func (e *NoCandidateError) Error() string {
	return fmt.Sprintf("no app candidate matches %s", e.Search)
}

// LaunchError reports an emulator process that terminated before it became
// ready.
type LaunchError struct {
	ID  string
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("emulator %s exited before readiness: %v (check that the emulator image is pulled and the app binary matches the device model)", e.ID, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// TeardownError reports a failed removal of the external emulator process.
// The registry entry is gone regardless.
type TeardownError struct {
	ID  string
	Err error
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("teardown of %s failed: %v", e.ID, e.Err)
}

func (e *TeardownError) Unwrap() error { return e.Err }

// DestroyedError reports a lookup against an identifier that is not (or no
// longer) registered.
type DestroyedError struct {
	ID string
}

func (e *DestroyedError) Error() string {
	return fmt.Sprintf("device instance %s has been destroyed", e.ID)
}
