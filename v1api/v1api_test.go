package v1api

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRender(t *testing.T) {
	out, err := Render("Hello, {{name}}!", map[string]interface{}{"name": "World"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "Hello, World!" {
		t.Fatalf("got %q", out)
	}
}

func TestRenderRawDisablesEscaping(t *testing.T) {
	out, err := RenderRaw("Hello, {{name}}!", true, map[string]interface{}{"name": "<b>World</b>"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "Hello, <b>World</b>!" {
		t.Fatalf("got %q", out)
	}
}

func TestRenderInLayout(t *testing.T) {
	out, err := RenderInLayout("{{name}}", "<p>{{content}}</p>", map[string]interface{}{"name": "World"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "<p>World</p>" {
		t.Fatalf("got %q", out)
	}
}

func TestParseStringReusesCachedTemplate(t *testing.T) {
	const src = "Hello, {{name}}!"

	first, err := ParseString(src)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ParseString(src)
	if err != nil {
		t.Fatal(err)
	}

	// The package-level cache interns templates by source text, so two
	// ParseString calls on identical source return the same parsed tree
	// rather than compiling it twice.
	if first != second {
		t.Fatalf("expected ParseString to return the cached template, got distinct instances")
	}
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "greeting.mustache")
	if err := os.WriteFile(path, []byte("Hi, {{name}}!"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := RenderFile(path, map[string]interface{}{"name": "World"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "Hi, World!" {
		t.Fatalf("got %q", out)
	}
}
