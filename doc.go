// Package mustache implements the logic-less Mustache template language.
//
// A template is parsed once into an immutable element tree and rendered
// any number of times against a data context. Parsing and rendering are
// split into the classic two halves: a byte-oriented scanner/parser pair
// that turns template source into a tree of tags, and a small stack-based
// renderer that walks that tree against a context stack, resolving dotted
// paths, deciding section truthiness, expanding lambdas, and escaping
// output.
//
//	tmpl, err := mustache.New().CompileString("Hello {{name}}!")
//	if err != nil {
//		log.Fatal(err)
//	}
//	out, err := tmpl.Render(map[string]string{"name": "World"})
//
// Host data is never type-asserted directly against Go's reflect package
// inside the renderer; instead the renderer talks to values through the
// narrow ContextValue capability interface (see context.go), with a
// reference reflection-based adapter provided for ordinary Go maps,
// structs, and slices.
package mustache
