package core

import "fmt"

// DomainError reports an operation applied outside its mathematical domain,
// such as normalizing the zero vector.
type DomainError struct {
	Op    string
	Value Vec3
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: undefined for vector (%g, %g, %g)", e.Op, e.Value.X, e.Value.Y, e.Value.Z)
}
