package effects

import "errors"

// ErrAlreadyCommitted is returned when trying to add effects or commit
// after the Batch has already been committed.
var ErrAlreadyCommitted = errors.New("effect batch already committed")
