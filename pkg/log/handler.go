package log

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrAttrKey is the field name errors are recorded under.
const ErrAttrKey = "error"

// field is one normalized key/value pair.
type field struct {
	key   string
	value any
}

// normalizeFields turns the variadic key/value list into pairs. A leading
// error with an odd number of fields is keyed as ErrAttrKey; a trailing key
// without value is dropped.
func normalizeFields(fields []any) []field {
	if len(fields)%2 == 1 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{ErrAttrKey, err}, fields[1:]...)
		}
	}
	out := make([]field, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		out = append(out, field{key: fmt.Sprint(fields[i]), value: fields[i+1]})
	}
	return out
}

// extractStacktrace returns the stack trace recorded by cockroachdb/errors on
// the outermost layer of err, or "" when there is none.
func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
