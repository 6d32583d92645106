package catalogue

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

// SchemaError represents a catalogue schema violation with source position.
type SchemaError struct {
	Message string
	Pos     token.Pos
}

func (e *SchemaError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// validateEntries checks the entries against the embedded CUE schema.
// Uses the CUE SDK's Go API directly (not CLI subprocess).
func validateEntries(entries []Entry) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return formatCUEError(err)
	}

	def := schema.LookupPath(cue.ParsePath("#Catalogue"))
	if err := def.Err(); err != nil {
		return formatCUEError(err)
	}

	doc := ctx.Encode(catalogueFile{Datasets: entries})
	if err := doc.Err(); err != nil {
		return formatCUEError(err)
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}

	return nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors; report the first with position.
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &SchemaError{
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return &SchemaError{Message: firstErr.Error()}
}
