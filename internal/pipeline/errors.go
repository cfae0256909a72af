package pipeline

import (
	"fmt"

	"github.com/cosbuild/composer/internal/system"
)

// ComponentError is a generation or write failure attributed to one
// component.
type ComponentError struct {
	ID   system.ComponentID
	Name string
	Err  error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("component %s (%s): %v", e.Name, e.ID, e.Err)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}

// Component returns the component variable name.
func (e *ComponentError) Component() string {
	return e.Name
}

// PhaseError records which phase of the pipeline failed.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
