package entities

import "fmt"

// LogicError is raised (as a panic value) when an aggregate invariant is violated
type LogicError struct {
	Op     string
	Detail string
}

func (e *LogicError) Error() string {
	return fmt.Sprintf("logic error in %s: %s", e.Op, e.Detail)
}
