package mustache

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// renderState is the renderer's entire mutable state, threaded explicitly
// through the walk rather than kept on *Template: a render must not
// mutate the template it was given, since one parsed, cached Template
// is rendered concurrently from many goroutines.
type renderState struct {
	stack       []ContextValue
	indent      string
	atLineStart bool
	delims      delimiters
	budget      *Budget
	escape      EscapeMode
	stringer    ValueStringer
	partials    PartialProvider
	cache       *Cache
	strict      bool // errorOnMissing: fail instead of rendering empty on a missing path
}

// renderElements walks one element slice against state, writing to w.
func renderElements(elements []element, w io.Writer, state *renderState) error {
	for i, e := range elements {
		if err := renderElement(e, i, w, state); err != nil {
			return err
		}
	}
	return nil
}

func renderElement(e element, idx int, w io.Writer, state *renderState) error {
	switch el := e.(type) {
	case *staticText:
		return writeStaticIndented(w, el.text, state)

	case *interpolation:
		return renderInterpolation(el, idx, w, state)

	case *section:
		return renderSection(el, idx, w, state)

	case *partialElem:
		return renderPartial(el, idx, w, state)

	case *setDelimsElem:
		state.delims = delimiters{open: el.open, close: el.close}
		return nil

	case *parentElem, *blockElem:
		return &RenderError{Kind: ErrFeatureUnsupported, ElementIndex: idx, Message: "inheritance tags are not rendered"}

	default:
		return &RenderError{Kind: ErrFeatureUnsupported, ElementIndex: idx, Message: fmt.Sprintf("unknown element %T", e)}
	}
}

// resolve charges the path's byte length against the budget for the
// duration of the lookup.
func (state *renderState) resolve(path string) (resolution, error) {
	if err := state.budget.reserve(len(path)); err != nil {
		return resolution{}, err
	}
	defer state.budget.release(len(path))
	res := resolvePath(state.stack, path)
	if state.strict && res.kind != resolvedKind && res.kind != lambdaKind {
		return resolution{}, &RenderError{Kind: ErrMissingVariable, Message: fmt.Sprintf("missing variable %q", path)}
	}
	return res, nil
}

func renderInterpolation(el *interpolation, idx int, w io.Writer, state *renderState) error {
	res, err := state.resolve(el.path)
	if err != nil {
		return withElementIndex(err, idx)
	}

	switch res.kind {
	case notFoundKind, chainBrokenKind, iteratorConsumedKind:
		return nil

	case lambdaKind:
		text, err := state.invokeLambda(res.value, "", el.escape)
		if err != nil {
			return withElementIndex(err, idx)
		}
		return writeScalar(w, state, el.escape, text)

	default: // resolvedKind
		s := stringifyValue(res.value, state.stringer)
		return writeScalar(w, state, el.escape, s)
	}
}

func renderSection(el *section, idx int, w io.Writer, state *renderState) error {
	res, err := state.resolve(el.path)
	if err != nil {
		return withElementIndex(err, idx)
	}

	switch res.kind {
	case notFoundKind, chainBrokenKind, iteratorConsumedKind:
		if el.inverted {
			return renderElements(el.children, w, state)
		}
		return nil

	case lambdaKind:
		if el.inverted {
			// A lambda value is never falsy, so an inverted section never fires.
			return nil
		}
		text, err := state.invokeLambda(res.value, string(el.innerSource), unescaped)
		if err != nil {
			return withElementIndex(err, idx)
		}
		subElements, perr := parseTemplateSource(text, state.delims)
		if perr != nil {
			// A lambda that returns an unparsable fragment contributes no output.
			return nil
		}
		return renderElements(subElements, w, state)

	default: // resolvedKind
		truthy := isTruthy(res.value)
		if el.inverted {
			if !truthy {
				return renderElements(el.children, w, state)
			}
			return nil
		}
		if !truthy {
			return nil
		}
		return renderTruthySection(el, res.value, w, state)
	}
}

func renderTruthySection(el *section, val ContextValue, w io.Writer, state *renderState) error {
	switch val.Kind() {
	case KindSequence, KindTuple:
		n := val.Len()
		saved := state.stack
		for i := 0; i < n; i++ {
			item, ok := val.Index(i)
			if !ok {
				continue
			}
			state.stack = append(saved, item)
			if err := renderElements(el.children, w, state); err != nil {
				state.stack = saved
				return err
			}
		}
		state.stack = saved
		return nil

	default:
		saved := state.stack
		state.stack = append(saved, val)
		err := renderElements(el.children, w, state)
		state.stack = saved
		return err
	}
}

func renderPartial(el *partialElem, idx int, w io.Writer, state *renderState) error {
	if state.partials == nil {
		if state.strict {
			return withElementIndex(&RenderError{Kind: ErrMissingVariable, Message: fmt.Sprintf("no partial provider configured for %q", el.name)}, idx)
		}
		return nil
	}
	part, err := state.partials.Get(el.name)
	if err != nil {
		return withElementIndex(&RenderError{Kind: ErrSinkWriteFailed, Message: "partial provider: " + err.Error(), Cause: err}, idx)
	}
	if !part.Found {
		if state.strict {
			return withElementIndex(&RenderError{Kind: ErrMissingVariable, Message: fmt.Sprintf("missing partial %q", el.name)}, idx)
		}
		return nil
	}

	childElements, err := resolvePartialElements(el.name, part, state)
	if err != nil {
		return withElementIndex(err, idx)
	}

	if err := state.budget.reserve(len(el.indent)); err != nil {
		return withElementIndex(err, idx)
	}
	savedIndent := state.indent
	state.indent += el.indent
	err = renderElements(childElements, w, state)
	state.indent = savedIndent
	state.budget.release(len(el.indent))
	return err
}

// resolvePartialElements returns a partial's element tree, parsing and
// caching raw source on first use. Partials always parse at the default
// delimiters, independent of the referencing template's current ones:
// a partial is a fresh template, not a textual splice.
func resolvePartialElements(name string, part PartialResult, state *renderState) ([]element, error) {
	if part.Template != nil {
		return part.Template.elements, nil
	}
	if cached, ok := state.cache.getPartial(name); ok {
		return cached.elements, nil
	}
	elements, perr := parseTemplateSource(part.Source, defaultDelimiters)
	if perr != nil {
		return nil, perr
	}
	state.cache.storePartial(name, &Template{
		elements: elements,
		escape:   state.escape,
		stringer: state.stringer,
		partials: state.partials,
		cache:    state.cache,
	})
	return elements, nil
}

// invokeLambda calls a KindLambda value with tagBody as its raw text,
// charging the budget for the fragment held in flight and swallowing any
// error the lambda itself returns: a failing lambda contributes empty
// output, it does not fail the render.
func (state *renderState) invokeLambda(val ContextValue, tagBody string, esc escapeMode) (string, error) {
	if err := state.budget.reserve(len(tagBody)); err != nil {
		return "", err
	}
	defer state.budget.release(len(tagBody))

	lc := &LambdaContext{
		Text:       tagBody,
		Escaped:    esc == escaped,
		OpenDelim:  state.delims.open,
		CloseDelim: state.delims.close,
		Render: func(text string) (string, error) {
			elements, err := parseTemplateSource(text, state.delims)
			if err != nil {
				return "", err
			}
			var buf bytes.Buffer
			sub := &renderState{
				stack:       state.stack,
				indent:      state.indent,
				atLineStart: true,
				delims:      state.delims,
				budget:      state.budget,
				escape:      state.escape,
				stringer:    state.stringer,
				partials:    state.partials,
				cache:       state.cache,
			}
			if err := renderElements(elements, &buf, sub); err != nil {
				return "", err
			}
			return buf.String(), nil
		},
	}

	out, err := val.Invoke(lc)
	if err != nil {
		return "", nil
	}
	return out, nil
}

// writeScalar writes a single resolved/lambda text value, escaping it
// unless the tag requested raw output. When the value lands at the start
// of a line inside an indented partial, the indent is written first; the
// value's own interior newlines are not re-indented.
func writeScalar(w io.Writer, state *renderState, mode escapeMode, s string) error {
	if s == "" {
		return nil
	}
	if err := state.budget.reserve(len(s)); err != nil {
		return err
	}
	defer state.budget.release(len(s))

	if state.indent != "" && state.atLineStart {
		if _, err := io.WriteString(w, state.indent); err != nil {
			return &RenderError{Kind: ErrSinkWriteFailed, Message: "sink write failed", Cause: err}
		}
	}

	var buf bytes.Buffer
	if mode == unescaped {
		buf.WriteString(s)
	} else if err := escapeWrite(&buf, state.escape, s); err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return &RenderError{Kind: ErrSinkWriteFailed, Message: "sink write failed", Cause: err}
	}
	if buf.Len() > 0 {
		state.atLineStart = buf.Bytes()[buf.Len()-1] == '\n'
	}
	return nil
}

// writeStaticIndented writes a StaticText element's bytes, re-prefixing
// every non-blank line with the current partial indentation, applied at
// render time line-by-line so nested partials compose without having to
// re-derive a combined prefix. Blank lines are left unindented.
func writeStaticIndented(w io.Writer, text []byte, state *renderState) error {
	if len(text) == 0 {
		return nil
	}
	if state.indent == "" {
		if _, err := w.Write(text); err != nil {
			return &RenderError{Kind: ErrSinkWriteFailed, Message: "sink write failed", Cause: err}
		}
		state.atLineStart = text[len(text)-1] == '\n'
		return nil
	}

	remaining := text
	for len(remaining) > 0 {
		nl := bytes.IndexByte(remaining, '\n')
		var line []byte
		if nl >= 0 {
			line = remaining[:nl+1]
		} else {
			line = remaining
		}
		hasContent := (nl > 0) || (nl < 0 && len(line) > 0)
		if state.atLineStart && hasContent {
			if _, err := io.WriteString(w, state.indent); err != nil {
				return &RenderError{Kind: ErrSinkWriteFailed, Message: "sink write failed", Cause: err}
			}
		}
		if _, err := w.Write(line); err != nil {
			return &RenderError{Kind: ErrSinkWriteFailed, Message: "sink write failed", Cause: err}
		}
		if nl >= 0 {
			state.atLineStart = true
			remaining = remaining[nl+1:]
		} else {
			state.atLineStart = false
			remaining = nil
		}
	}
	return nil
}

// stringifyValue converts a resolved scalar to its textual form. A custom
// ValueStringer, when set, is tried first so a host can format enums,
// dates, or numbers its own way before the built-in fallback applies.
func stringifyValue(v ContextValue, stringer ValueStringer) string {
	if stringer != nil {
		if s, err := stringer(v.Interface()); err == nil {
			return s
		}
	}
	switch v.Kind() {
	case KindString:
		return v.StringValue()
	case KindEnum:
		return v.EnumValue()
	case KindBool:
		if v.BoolValue() {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(v.IntValue(), 10)
	case KindFloat:
		return strconv.FormatFloat(v.FloatValue(), 'g', -1, 64)
	default:
		if x := v.Interface(); x != nil {
			return fmt.Sprint(x)
		}
		return ""
	}
}

func withElementIndex(err error, idx int) error {
	if re, ok := err.(*RenderError); ok {
		if re.ElementIndex == 0 {
			re.ElementIndex = idx
		}
		return re
	}
	return err
}
