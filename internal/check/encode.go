package check

import (
	"encoding/json"
	"io"
)

// WriteJSON writes report to w as a JSON object followed by a newline.
// Each nesting level is indented by indent; an empty indent produces
// compact output. HTML characters in selectors are not escaped.
func WriteJSON(w io.Writer, report *Report, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(report)
}
