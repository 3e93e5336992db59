package mustache

import "sync"

// Cache interns parsed templates and named partials for reuse. Entries
// are published immutably: once a *Template is stored it is never
// mutated, so it is safe to fetch and render concurrently from multiple
// goroutines, each with its own independent context stack.
//
// Templates are keyed by source text plus the compiler options that are
// baked into a compiled Template (escape mode, strictness, budget,
// starting delimiters), so
// compilers with different options can share one Cache without handing
// each other mismatched templates. Partial providers and value
// stringers are not part of the key; compilers sharing a Cache should
// share those too.
type Cache struct {
	templates sync.Map // templateKey -> *Template
	partials  sync.Map // partial name -> *Template
}

// templateKey identifies a compiled template in the cache.
type templateKey struct {
	source      string
	escape      EscapeMode
	strict      bool
	budgetLimit int64
	delims      delimiters
}

// NewCache returns an empty, ready-to-use Cache.
func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) getTemplate(key templateKey) (*Template, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.templates.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*Template), true
}

func (c *Cache) storeTemplate(key templateKey, t *Template) {
	if c == nil {
		return
	}
	c.templates.Store(key, t)
}

func (c *Cache) getPartial(name string) (*Template, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.partials.Load(name)
	if !ok {
		return nil, false
	}
	return v.(*Template), true
}

func (c *Cache) storePartial(name string, t *Template) {
	if c == nil {
		return
	}
	c.partials.Store(name, t)
}
