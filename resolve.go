package mustache

import "strconv"

// resolutionKind is the outcome of resolving a dotted path against a
// context stack.
type resolutionKind int

const (
	resolvedKind resolutionKind = iota
	lambdaKind
	iteratorConsumedKind
	chainBrokenKind
	notFoundKind
)

// resolution is the typed result of resolvePath.
type resolution struct {
	kind  resolutionKind
	value ContextValue
}

// intLiteral is a synthetic scalar used for the "len" member sequences
// and tuples expose.
type intLiteral int64

func (n intLiteral) Kind() Kind                            { return KindInt }
func (n intLiteral) Members() []string                     { return nil }
func (n intLiteral) Field(string) (ContextValue, bool)     { return nil, false }
func (n intLiteral) Len() int                              { return 0 }
func (n intLiteral) Index(int) (ContextValue, bool)        { return nil, false }
func (n intLiteral) Present() bool                         { return true }
func (n intLiteral) Unwrap() (ContextValue, bool)          { return n, true }
func (n intLiteral) Invoke(*LambdaContext) (string, error) { return "", nil }
func (n intLiteral) StringValue() string                   { return strconv.FormatInt(int64(n), 10) }
func (n intLiteral) BoolValue() bool                       { return n != 0 }
func (n intLiteral) IntValue() int64                       { return int64(n) }
func (n intLiteral) FloatValue() float64                   { return float64(n) }
func (n intLiteral) EnumValue() string                     { return "" }
func (n intLiteral) Interface() interface{}                { return int64(n) }

// stepOutcome distinguishes why a single path-segment step failed, so
// resolvePath can report distinct ChainBroken vs IteratorConsumed
// outcomes.
type stepOutcome int

const (
	stepOK stepOutcome = iota
	stepMissing
	stepOutOfRange
)

// stepInto descends one path segment into cur, transparently unwrapping
// a present optional first.
func stepInto(cur ContextValue, seg string) (ContextValue, stepOutcome) {
	if cur.Kind() == KindOptional {
		if !cur.Present() {
			return nil, stepMissing
		}
		inner, ok := cur.Unwrap()
		if !ok {
			return nil, stepMissing
		}
		cur = inner
	}

	switch cur.Kind() {
	case KindStruct:
		next, ok := cur.Field(seg)
		if !ok {
			return nil, stepMissing
		}
		return next, stepOK

	case KindSequence:
		if seg == "len" {
			return intLiteral(cur.Len()), stepOK
		}
		return nil, stepMissing

	case KindTuple:
		if seg == "len" {
			return intLiteral(cur.Len()), stepOK
		}
		idx, err := strconv.Atoi(seg)
		if err != nil {
			return nil, stepMissing
		}
		if idx < 0 || idx >= cur.Len() {
			return nil, stepOutOfRange
		}
		next, ok := cur.Index(idx)
		if !ok {
			return nil, stepMissing
		}
		return next, stepOK

	case KindLambda:
		// A lambda encountered mid-path is never traversed through.
		return nil, stepMissing

	default:
		return nil, stepMissing
	}
}

// resolvePath implements the path search policy: the implicit iterator,
// first-segment top-down search across the stack, and
// chain-broken-is-final semantics for the remainder of the path.
func resolvePath(stack []ContextValue, path string) resolution {
	if len(stack) == 0 {
		return resolution{kind: notFoundKind}
	}

	if path == "." {
		top := stack[len(stack)-1]
		if top.Kind() == KindLambda {
			return resolution{kind: lambdaKind, value: top}
		}
		return resolution{kind: resolvedKind, value: top}
	}

	segments := splitPath(path)

	for i := len(stack) - 1; i >= 0; i-- {
		next, outcome := stepInto(stack[i], segments[0])
		switch outcome {
		case stepMissing:
			continue
		case stepOutOfRange:
			return resolution{kind: iteratorConsumedKind}
		default:
			return resolveChain(next, segments[1:])
		}
	}
	return resolution{kind: notFoundKind}
}

// resolveChain resolves the remaining path segments against a value
// that already matched the first segment; once matched, failures are
// final (never fall back to searching the stack again).
func resolveChain(cur ContextValue, rest []string) resolution {
	for _, seg := range rest {
		next, outcome := stepInto(cur, seg)
		switch outcome {
		case stepOK:
			cur = next
		case stepOutOfRange:
			return resolution{kind: iteratorConsumedKind}
		default:
			return resolution{kind: chainBrokenKind}
		}
	}

	if cur.Kind() == KindOptional {
		if !cur.Present() {
			return resolution{kind: chainBrokenKind}
		}
		inner, ok := cur.Unwrap()
		if !ok {
			return resolution{kind: chainBrokenKind}
		}
		cur = inner
	}

	if cur.Kind() == KindLambda {
		return resolution{kind: lambdaKind, value: cur}
	}
	return resolution{kind: resolvedKind, value: cur}
}

func splitPath(path string) []string {
	segments := make([]string, 0, 4)
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segments = append(segments, path[start:i])
			start = i + 1
		}
	}
	segments = append(segments, path[start:])
	return segments
}
