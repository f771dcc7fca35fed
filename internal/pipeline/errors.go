package pipeline

import (
	"fmt"

	"github.com/joseph-ayodele/rfp-desk/constants"
)

// RunError is the single terminal failure of an aborted run.
type RunError struct {
	RunID string
	Stage constants.Stage
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run %s aborted at %s: %v", e.RunID, e.Stage, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }
