package mustache

import "fmt"

// sectionFrame is a section awaiting its closing tag, held on an
// explicit stack instead of the call stack so one loop handles every
// nesting depth.
type sectionFrame struct {
	kind        tagKind // tagSectionOpen, tagInvertedOpen, tagParentOpen, or tagBlockOpen
	path        string
	children    []element
	startOffset int // byte offset in source, right after the opening tag was fully consumed
	delims      delimiters
}

// parser builds the element tree for one template from a scanner. The
// runtime and build-time parsers share this one algorithm; a build-time
// caller simply runs it over a constant string and keeps the resulting
// tree.
type parser struct {
	sc     *scanner
	delims delimiters
	stack  []*sectionFrame
	root   []element
}

func newParserForSource(data string) *parser {
	return newParserForSourceWithDelimiters(data, defaultDelimiters)
}

// newParserForSourceWithDelimiters starts a parser with delimiters other
// than the default. Used to re-parse a lambda's returned fragment at the
// delimiters active at its call site.
func newParserForSourceWithDelimiters(data string, d delimiters) *parser {
	sc := newScanner(data)
	sc.setDelimiters(d)
	return &parser{sc: sc, delims: d}
}

// parseTemplateSource parses data into an element tree starting from the
// given delimiters.
func parseTemplateSource(data string, d delimiters) ([]element, error) {
	return newParserForSourceWithDelimiters(data, d).parse()
}

// parse runs the parser to completion and returns the root element
// tree, or a ParseError.
func (p *parser) parse() ([]element, error) {
	for {
		t := p.sc.nextText()
		p.appendText(t.text)

		if t.eof {
			if len(p.stack) > 0 {
				top := p.stack[len(p.stack)-1]
				return nil, &ParseError{
					Kind:    ErrUnclosedSection,
					Line:    p.sc.line,
					Offset:  p.sc.pos,
					Message: fmt.Sprintf("section %q has no closing tag", top.path),
				}
			}
			return p.root, nil
		}

		tagOpenOffset := p.sc.pos - len(p.delims.open)

		tagRun, err := p.sc.nextTag(t.mayStandalone)
		if err != nil {
			return nil, err
		}
		if !tagRun.standalone {
			p.appendText(t.pad)
		}

		ct, err := classifyTag(tagRun.body)
		if err != nil {
			if perr, ok := err.(*ParseError); ok {
				perr.Offset, perr.Line = tagOpenOffset, p.sc.line
			}
			return nil, err
		}

		switch ct.kind {
		case tagComment:
			// dropped

		case tagSectionOpen, tagInvertedOpen, tagParentOpen, tagBlockOpen:
			p.stack = append(p.stack, &sectionFrame{
				kind:        ct.kind,
				path:        ct.path,
				startOffset: p.sc.pos,
				delims:      p.delims,
			})

		case tagSectionClose:
			if err := p.closeSection(ct.path, tagOpenOffset); err != nil {
				if perr, ok := err.(*ParseError); ok {
					perr.Offset = tagOpenOffset
				}
				return nil, err
			}

		case tagPartial:
			indent := ""
			if tagRun.standalone {
				indent = t.pad
			}
			p.appendElement(&partialElem{name: ct.path, indent: indent})

		case tagSetDelimiters:
			p.delims = ct.delims
			p.sc.setDelimiters(ct.delims)
			p.appendElement(&setDelimsElem{open: ct.delims.open, close: ct.delims.close})

		case tagInterpolation:
			p.appendElement(&interpolation{path: ct.path, escape: ct.escape})
		}
	}
}

func (p *parser) closeSection(name string, tagOpenOffset int) error {
	if len(p.stack) == 0 {
		return &ParseError{Kind: ErrMismatchedSection, Line: p.sc.line, Message: fmt.Sprintf("unmatched closing tag %q", name)}
	}
	top := p.stack[len(p.stack)-1]
	if top.path != name {
		return &ParseError{
			Kind:    ErrMismatchedSection,
			Line:    p.sc.line,
			Message: fmt.Sprintf("closing tag %q does not match open section %q", name, top.path),
		}
	}
	p.stack = p.stack[:len(p.stack)-1]

	innerSource := []byte(p.sc.data[top.startOffset:tagOpenOffset])
	var elem element
	switch top.kind {
	case tagSectionOpen:
		elem = &section{path: top.path, inverted: false, innerSource: innerSource, children: top.children, delims: top.delims}
	case tagInvertedOpen:
		elem = &section{path: top.path, inverted: true, innerSource: innerSource, children: top.children, delims: top.delims}
	case tagParentOpen:
		elem = &parentElem{name: top.path, children: top.children}
	case tagBlockOpen:
		elem = &blockElem{name: top.path, children: top.children}
	}
	p.appendElement(elem)
	return nil
}

func (p *parser) appendText(text string) {
	if text == "" {
		return
	}
	p.appendElement(&staticText{text: []byte(text)})
}

func (p *parser) appendElement(e element) {
	if len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		top.children = append(top.children, e)
		return
	}
	p.root = append(p.root, e)
}
