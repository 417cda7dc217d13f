package schema

import (
	"fmt"
	"strings"
)

// GenerateFixPrompt renders the deterministic repair instruction sent back
// to the model when its output fails validation. Every violation is listed
// as "path: message" and the malformed output is embedded verbatim so the
// model can correct in place.
func GenerateFixPrompt(schemaName, originalOutput string, errs []FieldError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Your previous response failed validation against the %q schema.\n\n", schemaName)

	b.WriteString("Validation errors:\n")
	for _, e := range errs {
		path := e.Path
		if path == "" {
			path = "(root)"
		}
		fmt.Fprintf(&b, "- %s: %s\n", path, e.Message)
	}

	b.WriteString("\nOriginal response:\n")
	b.WriteString(originalOutput)
	b.WriteString("\n\nReturn only the corrected JSON. Do not include explanations, markdown fences, or any text outside the JSON value.")

	return b.String()
}
