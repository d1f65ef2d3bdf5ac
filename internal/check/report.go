package check

import (
	"bytes"
	"encoding/json"
)

// Report is an ordered mapping from selector to presence.
// Keys are unique and kept in insertion order, which Evaluate makes the
// ascending selector order.
type Report struct {
	keys    []string
	results map[string]bool
	invalid map[string]error
}

// NewReport returns an empty Report.
func NewReport() *Report {
	return &Report{
		keys:    make([]string, 0),
		results: make(map[string]bool),
		invalid: make(map[string]error),
	}
}

// Set records the result for selector. A selector that is already present
// keeps its position and takes the new value.
func (r *Report) Set(selector string, present bool) {
	if _, ok := r.results[selector]; !ok {
		r.keys = append(r.keys, selector)
	}
	r.results[selector] = present
}

// markInvalid records that selector failed to compile.
func (r *Report) markInvalid(selector string, err error) {
	r.invalid[selector] = err
}

// Get returns the result for selector and whether it is in the Report.
func (r *Report) Get(selector string) (present, ok bool) {
	present, ok = r.results[selector]
	return present, ok
}

// Keys returns the selectors in report order.
func (r *Report) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// Len returns the number of selectors in the Report.
func (r *Report) Len() int {
	return len(r.keys)
}

// Passed returns the selectors that matched at least one element, in report order.
func (r *Report) Passed() []string {
	return r.filter(true)
}

// Failed returns the selectors that matched nothing, in report order.
// Invalid selectors are included.
func (r *Report) Failed() []string {
	return r.filter(false)
}

func (r *Report) filter(want bool) []string {
	out := make([]string, 0)
	for _, k := range r.keys {
		if r.results[k] == want {
			out = append(out, k)
		}
	}
	return out
}

// Invalid returns the selectors that failed to compile, in report order.
func (r *Report) Invalid() []string {
	out := make([]string, 0, len(r.invalid))
	for _, k := range r.keys {
		if _, ok := r.invalid[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// InvalidError returns the compile error recorded for selector, if any.
func (r *Report) InvalidError(selector string) error {
	return r.invalid[selector]
}

// AllPassed reports whether every selector matched. An empty Report passes.
func (r *Report) AllPassed() bool {
	for _, k := range r.keys {
		if !r.results[k] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the Report as a JSON object with keys in report order.
// Characters such as '<', '>' and '&' in selectors are written as-is.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalString(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if r.results[k] {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of selector to boolean. The decoded
// keys are kept in sorted order, matching how Evaluate builds a Report.
func (r *Report) UnmarshalJSON(data []byte) error {
	var m map[string]bool
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*r = *NewReport()
	for _, k := range sortedKeys(m) {
		r.Set(k, m[k])
	}
	return nil
}

// marshalString encodes s as a JSON string without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
