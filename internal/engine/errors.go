package engine

import "fmt"

// ValidationError reports a rejected input. The write it guarded never ran.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// PartialWriteError reports a multi-step mutation that applied its first
// write but failed before the rest. The whole operation is safe to retry.
type PartialWriteError struct {
	Op  string
	Err error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s: partially applied: %v", e.Op, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// OrderCorruptionError reports a display_order sequence that is not a
// dense permutation of 1..N. Callers repair with ReconcileProjects.
type OrderCorruptionError struct {
	Orders []int
}

func (e *OrderCorruptionError) Error() string {
	return fmt.Sprintf("project ordering corrupted: %v is not dense", e.Orders)
}
