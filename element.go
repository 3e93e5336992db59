package mustache

// element is one node of a parsed template's tree. The concrete types
// below are the only implementations.
type element interface {
	elementNode()
}

// staticText is verbatim output.
type staticText struct {
	text []byte
}

func (*staticText) elementNode() {}

// escapeMode records whether an interpolation's value should be passed
// through the Escaper before being written.
type escapeMode int

const (
	escaped escapeMode = iota
	unescaped
)

// interpolation renders a single resolved value.
type interpolation struct {
	path   string
	escape escapeMode
}

func (*interpolation) elementNode() {}

// section is a `{{#x}}...{{/x}}` or `{{^x}}...{{/x}}` block. innerSource
// holds the exact byte range between the opening and closing tags in the
// original template, needed to re-parse the body when the resolved value
// is a lambda.
type section struct {
	path        string
	inverted    bool
	innerSource []byte
	children    []element
	delims      delimiters // delimiters active at the opening tag
}

func (*section) elementNode() {}

// partialElem inlines a named external template. indent is the
// whitespace prefix of the line containing the partial tag, captured
// only when that line was standalone.
type partialElem struct {
	name   string
	indent string
}

func (*partialElem) elementNode() {}

// parentElem is a `{{<name}}...{{/name}}` inheritance tag: parsed for
// source fidelity, never rendered.
type parentElem struct {
	name     string
	children []element
}

func (*parentElem) elementNode() {}

// blockElem is a `{{$name}}...{{/name}}` inheritance block: parsed for
// source fidelity, never rendered.
type blockElem struct {
	name     string
	children []element
}

func (*blockElem) elementNode() {}

// setDelimsElem records a delimiter change so that a lambda-returned
// fragment, re-scanned at render time with the caller's current
// delimiters, replays the same changes a top-level parse would have
// made. It carries no output of its own.
type setDelimsElem struct {
	open  string
	close string
}

func (*setDelimsElem) elementNode() {}
