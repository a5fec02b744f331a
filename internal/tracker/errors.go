package tracker

import "fmt"

// NotFoundError reports an operation referencing a vehicle or record ID
// that does not exist. It is raised at the point of lookup and always
// surfaced to the caller.
type NotFoundError struct {
	Kind string // "vehicle" or "record"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ImportError reports import input that cannot be parsed into the
// snapshot shape.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string {
	return "invalid format for import"
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// ValidationError reports rejected operation input, such as a
// non-positive fuel amount on record creation.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %v", e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
