package enrich

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrCyclicParentChain is matched by every *CycleError.
var ErrCyclicParentChain = errors.New("cyclic parent chain")

// CycleError reports a parent chain that revisits a card.
type CycleError struct {
	CardID int
	// Chain lists the ids walked, starting at CardID and ending with the
	// repeated id.
	Chain []int
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, id := range e.Chain {
		parts[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("card %d: %s: %s", e.CardID, ErrCyclicParentChain, strings.Join(parts, " -> "))
}

func (e *CycleError) Is(target error) bool { return target == ErrCyclicParentChain }

// BrokenChainError reports a parent chain that stops at an ancestor the
// backend no longer knows. The card keeps the fields gathered before it.
type BrokenChainError struct {
	CardID   int
	ParentID int
	Err      error
}

func (e *BrokenChainError) Error() string {
	return fmt.Sprintf("card %d: parent %d: %v", e.CardID, e.ParentID, e.Err)
}

func (e *BrokenChainError) Unwrap() error { return e.Err }
