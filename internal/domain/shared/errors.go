package shared

import "fmt"

// PersistenceError reports a load or save failure at the storage boundary
type PersistenceError struct {
	Op         string // "load" or "save"
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s of %s failed: %v", e.Op, e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is matches any PersistenceError when the target carries no Op
func (e *PersistenceError) Is(target error) bool {
	t, ok := target.(*PersistenceError)
	if !ok {
		return false
	}
	return t.Op == "" || (t.Op == e.Op && (t.Collection == "" || t.Collection == e.Collection))
}
