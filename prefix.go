package n3

// resolve expands a PrefixedName token into an absolute IRI, per spec §4.3:
// look up prefix, concatenate the prefix's IRI with local, and — when the
// lexer flagged the local part as having gone through an escape sequence
// that might have smuggled a disallowed character into the result — run
// the concatenation back through IRI validation. An unregistered prefix is
// always an error, even for the default (empty-name) prefix.
func resolve(prefixName, local string, maybeInvalidIRI bool, prefixes map[string]string, pos Position) (IRI, error) {
	base, ok := prefixes[prefixName]
	if !ok {
		return IRI{}, &SyntaxError{Pos: pos, Message: "undefined prefix: " + prefixName}
	}
	full := base + local
	if maybeInvalidIRI {
		if _, err := validateAbsoluteIRI(full); err != nil {
			return IRI{}, &IRIError{IRI: full, Message: err.Error()}
		}
	}
	return IRI{Value: full}, nil
}
