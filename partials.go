package mustache

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PartialResult is what a PartialProvider hands back for a name. Exactly one
// of Template or Source is meaningful when Found is true: a provider may
// return a pre-parsed template directly (skipping a re-parse on every
// render) or raw source text to be parsed and cached by the renderer.
// Found false (the zero value) means absence, which renders as nothing
// rather than failing the render.
type PartialResult struct {
	Found    bool
	Template *Template
	Source   string
}

// PartialProvider resolves a partial tag's name to its content, handing
// back either raw source text or an already-parsed Template.
type PartialProvider interface {
	Get(name string) (PartialResult, error)
}

// FileProvider implements PartialProvider by reading partials from a
// filesystem, searching each of Paths in turn for name plus each of
// Extensions. The default Paths is the current working directory; the
// default Extensions tries no extension, then ".mustache", then
// ".stache". If Unsafe is set, partial names are allowed to escape
// Paths via ".." after cleaning.
type FileProvider struct {
	Paths      []string
	Extensions []string
	Unsafe     bool
}

func (fp *FileProvider) Get(name string) (PartialResult, error) {
	cleanName := name
	if !fp.Unsafe {
		cleanName = path.Clean(name)
		if strings.HasPrefix(cleanName, ".") {
			return PartialResult{}, &RenderError{Kind: ErrSinkWriteFailed, Message: "unsafe partial name: " + name}
		}
	}

	paths := fp.Paths
	if paths == nil {
		paths = []string{""}
	}
	exts := fp.Extensions
	if exts == nil {
		exts = []string{"", ".mustache", ".stache"}
	}

	for _, p := range paths {
		for _, ext := range exts {
			candidate := filepath.Join(p, cleanName+ext)
			data, err := os.ReadFile(candidate)
			if err == nil {
				return PartialResult{Found: true, Source: string(data)}, nil
			}
		}
	}
	return PartialResult{}, nil
}

var _ PartialProvider = (*FileProvider)(nil)

// StaticProvider resolves partials from an in-memory map of name to
// template source.
type StaticProvider struct {
	Partials map[string]string
}

func (sp *StaticProvider) Get(name string) (PartialResult, error) {
	if sp.Partials == nil {
		return PartialResult{}, nil
	}
	src, ok := sp.Partials[name]
	if !ok {
		return PartialResult{}, nil
	}
	return PartialResult{Found: true, Source: src}, nil
}

var _ PartialProvider = (*StaticProvider)(nil)

// TemplateProvider resolves partials from an in-memory map of name to
// already-parsed templates, alongside the raw-source-bytes shape
// StaticProvider and FileProvider return.
type TemplateProvider struct {
	Templates map[string]*Template
}

func (tp *TemplateProvider) Get(name string) (PartialResult, error) {
	if tp.Templates == nil {
		return PartialResult{}, nil
	}
	t, ok := tp.Templates[name]
	if !ok {
		return PartialResult{}, nil
	}
	return PartialResult{Found: true, Template: t}, nil
}

var _ PartialProvider = (*TemplateProvider)(nil)
