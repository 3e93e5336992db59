package mustache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// ValueStringer converts a resolved, non-lambda scalar value to its
// rendered text, letting a host format enums, dates, or numbers its own
// way before the built-in fallback (booleans as true/false, integers in
// base 10, floats in decimal) applies.
type ValueStringer func(value any) (string, error)

// Compiler builds Templates with a shared set of options: a partial
// resolver, an escape mode, a value stringer, a strictness flag, a
// resource budget, and a cache for interning parsed source.
type Compiler struct {
	partials    PartialProvider
	escape      EscapeMode
	stringer    ValueStringer
	strict      bool
	budgetLimit int64
	cache       *Cache
	delims      delimiters
}

// New returns a Compiler with default options: HTML escaping, no
// partials, no resource cap, missing paths render as empty text.
func New() *Compiler {
	return &Compiler{}
}

// WithPartials adds a partial provider and enables support for partials.
func (c *Compiler) WithPartials(pp PartialProvider) *Compiler {
	c.partials = pp
	return c
}

// WithEscapeMode sets the output mode to HTML (default), JSON, or raw.
func (c *Compiler) WithEscapeMode(m EscapeMode) *Compiler {
	c.escape = m
	return c
}

// WithValueStringer sets a function used to convert resolved values to
// their rendered text, ahead of the engine's built-in conversions.
func (c *Compiler) WithValueStringer(vs ValueStringer) *Compiler {
	c.stringer = vs
	return c
}

// WithErrors enables errors when a path, partial, or partial provider is
// missing. Otherwise (the default) a missing reference renders as an
// empty string instead of failing the render.
func (c *Compiler) WithErrors(b bool) *Compiler {
	c.strict = b
	return c
}

// WithBudget installs a resource cap: once more than limit bytes of
// intermediate render allocation are live at once, rendering fails with
// a RenderError of kind ErrOutOfBudget rather than continuing unbounded.
// Each render call accounts against its own fresh Budget, so concurrent
// renders of one template do not share (or race on) a counter.
func (c *Compiler) WithBudget(limit int64) *Compiler {
	c.budgetLimit = limit
	return c
}

// WithCache installs a Cache used to intern this compiler's parsed
// templates and any partials it resolves, so repeated CompileString
// calls on identical source, or repeated partial lookups by name, reuse
// one immutable parsed tree.
func (c *Compiler) WithCache(cache *Cache) *Compiler {
	c.cache = cache
	return c
}

// WithDelimiters sets the delimiter pair templates start with, in place
// of the default "{{" and "}}". Markers must be non-empty and must not
// contain '=' or whitespace; CompileString reports ErrInvalidDelimiters
// otherwise. A set-delimiter tag inside the template still switches
// delimiters from that point on, exactly as it does under the defaults.
func (c *Compiler) WithDelimiters(open, close string) *Compiler {
	c.delims = delimiters{open: open, close: close}
	return c
}

func (c *Compiler) startDelimiters() (delimiters, error) {
	if c.delims == (delimiters{}) {
		return defaultDelimiters, nil
	}
	if !validDelimiterMarker(c.delims.open) || !validDelimiterMarker(c.delims.close) {
		return delimiters{}, &ParseError{
			Kind:    ErrInvalidDelimiters,
			Message: "delimiter markers must be non-empty and must not contain '=' or whitespace",
		}
	}
	return c.delims, nil
}

func (c *Compiler) cacheKey(data string) templateKey {
	return templateKey{
		source:      data,
		escape:      c.escape,
		strict:      c.strict,
		budgetLimit: c.budgetLimit,
		delims:      c.delims,
	}
}

// CompileString compiles a Mustache template from a string.
func (c *Compiler) CompileString(data string) (*Template, error) {
	key := c.cacheKey(data)
	if t, ok := c.cache.getTemplate(key); ok {
		return t, nil
	}
	start, err := c.startDelimiters()
	if err != nil {
		return nil, err
	}
	elements, err := parseTemplateSource(data, start)
	if err != nil {
		return nil, err
	}
	t := &Template{
		elements:    elements,
		startDelims: start,
		escape:      c.escape,
		stringer:    c.stringer,
		partials:    c.partials,
		strict:      c.strict,
		budgetLimit: c.budgetLimit,
		cache:       c.cache,
	}
	c.cache.storeTemplate(key, t)
	return t, nil
}

// CompileFile compiles a Mustache template from a file.
func (c *Compiler) CompileFile(filename string) (*Template, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return c.CompileString(string(data))
}

// Template represents a compiled mustache template which can be used to
// render data. A *Template is immutable after CompileString/CompileFile
// returns, so one parsed Template may be rendered concurrently by many
// goroutines, each supplying its own context.
type Template struct {
	elements    []element
	startDelims delimiters
	escape      EscapeMode
	stringer    ValueStringer
	partials    PartialProvider
	strict      bool
	budgetLimit int64
	cache       *Cache
}

// newRenderState builds the per-call renderState a render walk threads
// through instead of mutating the Template, so a shared cached Template
// stays safe to render from multiple goroutines at once.
func (tmpl *Template) newRenderState(stack []ContextValue) *renderState {
	delims := tmpl.startDelims
	if delims == (delimiters{}) {
		delims = defaultDelimiters
	}
	return &renderState{
		stack:       stack,
		atLineStart: true,
		delims:      delims,
		budget:      NewBudget(tmpl.budgetLimit),
		escape:      tmpl.escape,
		stringer:    tmpl.stringer,
		partials:    tmpl.partials,
		cache:       tmpl.cache,
		strict:      tmpl.strict,
	}
}

// Frender renders the compiled template against one or more data
// sources - generally maps or structs - writing to out. Multiple
// context values are pushed bottom-to-top, so a later one shadows an
// earlier one's same-named members.
func (tmpl *Template) Frender(out io.Writer, context ...interface{}) error {
	stack := make([]ContextValue, len(context))
	for i, c := range context {
		stack[i] = NewContextValue(c)
	}
	state := tmpl.newRenderState(stack)
	return renderElements(tmpl.elements, out, state)
}

// Render renders the compiled template against one or more data sources
// and returns the output.
func (tmpl *Template) Render(context ...interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Frender(&buf, context...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderInLayout renders the template, then renders layout with the
// result bound to "content" ahead of context, and returns the output.
// A layout is "just" a partial whose content is the pre-rendered child.
func (tmpl *Template) RenderInLayout(layout *Template, context ...interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.FRenderInLayout(&buf, layout, context...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FRenderInLayout is RenderInLayout, writing to out instead of
// returning a string.
func (tmpl *Template) FRenderInLayout(out io.Writer, layout *Template, context ...interface{}) error {
	content, err := tmpl.Render(context...)
	if err != nil {
		return err
	}
	allContext := make([]interface{}, len(context)+1)
	copy(allContext, context)
	allContext[len(context)] = map[string]string{"content": content}
	return layout.Frender(out, allContext...)
}

// toJSONString is the ValueStringer JSONTemplate installs: every
// resolved value is marshaled as JSON rather than stringified, so a
// template can build up a JSON document field by field.
func toJSONString(data any) (string, error) {
	out, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// JSONTemplate compiles a template whose interpolations are rendered
// with each resolved value JSON-marshaled, unescaped, so the template
// body itself supplies the surrounding JSON punctuation.
func JSONTemplate(template string) (*Template, error) {
	return New().WithEscapeMode(EscapeRaw).WithValueStringer(toJSONString).CompileString(template)
}

// ParseString compiles a mustache template string with default options.
func ParseString(data string) (*Template, error) {
	return New().CompileString(data)
}

// ParseFile compiles a mustache template file with default options.
func ParseFile(filename string) (*Template, error) {
	return New().CompileFile(filename)
}

// Render compiles data as a template and renders it against context:
// the parse-and-render-from-a-string entry point.
func Render(data string, context ...interface{}) (string, error) {
	tmpl, err := ParseString(data)
	if err != nil {
		return "", err
	}
	return tmpl.Render(context...)
}

// RenderFile compiles the template at filename and renders it against
// context: the parse-and-render-from-a-file-path entry point.
func RenderFile(filename string, context ...interface{}) (string, error) {
	tmpl, err := ParseFile(filename)
	if err != nil {
		return "", err
	}
	return tmpl.Render(context...)
}

// RenderJSON compiles data as a template with JSONTemplate's
// value-stringer/escape-mode pairing and renders it against a single
// data value, returning raw JSON bytes as a string.
func RenderJSON(data string, value interface{}) (string, error) {
	tmpl, err := JSONTemplate(data)
	if err != nil {
		return "", err
	}
	return tmpl.Render(value)
}

// A TagType represents the specific type of mustache tag that a Tag
// represents. The zero TagType is not a valid type.
type TagType uint

// Defines representing the possible Tag types.
const (
	Invalid TagType = iota
	Variable
	Section
	InvertedSection
	Partial
)

func (t TagType) String() string {
	names := [...]string{"Invalid", "Variable", "Section", "InvertedSection", "Partial"}
	if int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("type%d", int(t))
}

// Tag represents the different mustache tag types.
//
// Not all methods apply to all kinds of tags. Tags returns nil, or
// panics for Variable tags, since a variable cannot contain children.
// Use the Type method to find out the type of tag before calling
// type-specific methods.
type Tag interface {
	// Type returns the type of the tag.
	Type() TagType
	// Name returns the tag's path or partial name.
	Name() string
	// Tags returns any child tags.
	Tags() []Tag
}

// Tags returns the top-level mustache tags of the compiled template,
// for introspection (e.g. static analysis of which paths a template
// references). Inheritance tags and comments are not represented.
func (tmpl *Template) Tags() []Tag {
	return extractTags(tmpl.elements)
}

func extractTags(elements []element) []Tag {
	var tags []Tag
	for _, e := range elements {
		switch el := e.(type) {
		case *interpolation:
			tags = append(tags, &varTag{name: el.path})
		case *section:
			tags = append(tags, &sectionTag{name: el.path, inverted: el.inverted, children: el.children})
		case *partialElem:
			tags = append(tags, &partialTag{name: el.name})
		}
	}
	return tags
}

type varTag struct{ name string }

func (t *varTag) Type() TagType { return Variable }
func (t *varTag) Name() string  { return t.name }
func (t *varTag) Tags() []Tag   { panic("mustache: Tags on Variable type") }

type sectionTag struct {
	name     string
	inverted bool
	children []element
}

func (t *sectionTag) Type() TagType {
	if t.inverted {
		return InvertedSection
	}
	return Section
}
func (t *sectionTag) Name() string { return t.name }
func (t *sectionTag) Tags() []Tag  { return extractTags(t.children) }

type partialTag struct{ name string }

func (t *partialTag) Type() TagType { return Partial }
func (t *partialTag) Name() string  { return t.name }
func (t *partialTag) Tags() []Tag   { return nil }
