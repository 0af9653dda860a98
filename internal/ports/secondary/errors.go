package secondary

import (
	"errors"
	"fmt"
)

// NotFoundError reports a broken referential precondition, such as
// upserting drift for a service id that does not exist. It signals a
// caller bug, not a normal sync outcome.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
