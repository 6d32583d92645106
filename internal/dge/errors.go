package dge

import (
	"errors"
	"fmt"

	"github.com/kabilan108/cabid/internal/dataset"
)

// InsufficientGroupsError reports a group too small for a two-sample test.
// The statistical precondition is checked before any computation runs, and
// the failure aborts analysis for this dataset only.
type InsufficientGroupsError struct {
	Dataset string
	Group   dataset.GroupLabel
	Count   int
	Min     int
}

func (e *InsufficientGroupsError) Error() string {
	if e.Dataset != "" {
		return fmt.Sprintf("dataset %s: group %q has %d sample(s), need at least %d",
			e.Dataset, e.Group, e.Count, e.Min)
	}
	return fmt.Sprintf("group %q has %d sample(s), need at least %d", e.Group, e.Count, e.Min)
}

// IsInsufficientGroups returns true if the error is an
// InsufficientGroupsError. Uses errors.As to handle wrapped errors.
func IsInsufficientGroups(err error) bool {
	var ie *InsufficientGroupsError
	return errors.As(err, &ie)
}
