package mustache

import "strings"

// delimiters holds the currently active opening/closing tag markers.
// Mutated only by a set-delimiter tag, with effect strictly after that
// tag (component B of the scanner/parser pipeline).
type delimiters struct {
	open  string
	close string
}

// defaultDelimiters are the delimiters a template starts with.
var defaultDelimiters = delimiters{open: "{{", close: "}}"}

// parseSetDelimiters parses the trimmed inner body of a `{{=...=}}` tag,
// which must look like "open close" (single run of whitespace between
// the two markers, no leading/trailing `=`). Returns ErrInvalidDelimiters
// if the body is malformed or either marker is empty, contains '=', or
// contains whitespace.
func parseSetDelimiters(body string) (delimiters, error) {
	fields := strings.Fields(body)
	if len(fields) != 2 {
		return delimiters{}, &ParseError{
			Kind:    ErrInvalidDelimiters,
			Message: "set-delimiter tag must contain exactly two markers",
		}
	}
	open, close := fields[0], fields[1]
	if !validDelimiterMarker(open) || !validDelimiterMarker(close) {
		return delimiters{}, &ParseError{
			Kind:    ErrInvalidDelimiters,
			Message: "delimiter markers must be non-empty and must not contain '=' or whitespace",
		}
	}
	return delimiters{open: open, close: close}, nil
}

func validDelimiterMarker(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r == '=' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return false
		}
	}
	return true
}
