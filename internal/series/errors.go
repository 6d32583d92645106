package series

import (
	"errors"
	"fmt"
)

// Reason categorizes why a raw artifact failed to parse.
type Reason string

const (
	// ReasonBadHeader indicates a missing or unrecognized header row.
	ReasonBadHeader Reason = "BAD_HEADER"

	// ReasonRaggedRow indicates a row with the wrong number of fields.
	ReasonRaggedRow Reason = "RAGGED_ROW"

	// ReasonSampleCountMismatch indicates the declared sample count does not
	// match the number of parsed rows.
	ReasonSampleCountMismatch Reason = "SAMPLE_COUNT_MISMATCH"

	// ReasonNonNumericValue indicates an expression cell that is not a number
	// after whitespace trimming.
	ReasonNonNumericValue Reason = "NON_NUMERIC_VALUE"

	// ReasonMissingValue indicates an empty or NaN expression cell.
	// Missing values fail parsing rather than being silently imputed.
	ReasonMissingValue Reason = "MISSING_VALUE"

	// ReasonDuplicateSample indicates a repeated sample identifier.
	ReasonDuplicateSample Reason = "DUPLICATE_SAMPLE"

	// ReasonInsufficientGroups indicates fewer than two groups are present.
	ReasonInsufficientGroups Reason = "INSUFFICIENT_GROUPS"
)

// MalformedError reports a data integrity violation in a raw artifact.
// Never retried: the failure is recorded against this dataset only.
type MalformedError struct {
	Dataset string
	Reason  Reason
	Detail  string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Dataset, e.Reason, e.Detail)
}

// IsMalformed returns true if the error is a MalformedError.
// Uses errors.As to handle wrapped errors.
func IsMalformed(err error) bool {
	var me *MalformedError
	return errors.As(err, &me)
}

// MalformedReason extracts the reason code from a MalformedError, or "" if
// the error is something else.
func MalformedReason(err error) Reason {
	var me *MalformedError
	if errors.As(err, &me) {
		return me.Reason
	}
	return ""
}
