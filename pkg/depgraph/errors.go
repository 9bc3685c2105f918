package depgraph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrCycle is matched by every *CycleError.
	ErrCycle = errors.New("dependency cycle")
	// ErrDanglingEdge is matched by every *DanglingEdgeError.
	ErrDanglingEdge = errors.New("dangling dependency edge")
)

// CycleError lists the node names along a detected cycle; the first and last
// entries are the same node.
type CycleError struct {
	Names []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Names, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// DanglingEdgeError reports an edge whose target node does not exist.
type DanglingEdgeError struct {
	From uuid.UUID
	Id   uuid.UUID
}

func (e *DanglingEdgeError) Error() string {
	if e.From == uuid.Nil {
		return fmt.Sprintf("dependency %s does not exist", e.Id)
	}
	return fmt.Sprintf("dependency %s of %s does not exist", e.Id, e.From)
}

func (e *DanglingEdgeError) Unwrap() error { return ErrDanglingEdge }
