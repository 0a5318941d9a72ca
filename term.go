package n3

import "fmt"

// Term is the tagged union of RDF-like values the recognizer can produce:
// an IRI, a blank node, a literal, a variable, and (behind the RDF-star
// toggle) a quoted triple.
//
// Term intentionally exposes no equality or datatype-introspection API
// beyond String: this package produces terms, it does not query or
// reason over them.
type Term interface {
	fmt.Stringer
	isTerm()
}

// IRI is an absolute IRI, already resolved against the live base at the
// time it left the recognizer.
type IRI struct {
	Value string
}

func (IRI) isTerm() {}

func (i IRI) String() string { return "<" + i.Value + ">" }

// Blank is a blank node, identified by a label that is either user-supplied
// (from a `_:x` token) or freshly generated by the parser (see blank.go).
type Blank struct {
	Label string
}

func (Blank) isTerm() {}

func (b Blank) String() string { return "_:" + b.Label }

// Literal is a lexical form paired with a language tag or a datatype IRI.
// The recognizer also sets Datatype to xsd:string on language-tagged
// literals; Datatype is ignored whenever Lang is set. The lexical form is
// preserved verbatim; RDF requires no normalization of numeric literals.
type Literal struct {
	Lexical  string
	Lang     string // set only for language-tagged strings
	Datatype IRI    // ignored when Lang is set
}

func (Literal) isTerm() {}

func (l Literal) String() string {
	if l.Lang != "" {
		return fmt.Sprintf("%q@%s", l.Lexical, l.Lang)
	}
	return fmt.Sprintf("%q^^%s", l.Lexical, l.Datatype)
}

// Variable is a quantified name without its leading `?` or `$` sigil.
type Variable struct {
	Name string
}

func (Variable) isTerm() {}

func (v Variable) String() string { return "?" + v.Name }

// QuotedTriple is the RDF-star triple-term extension: a subject/predicate/
// object triple used as a term in its own right. It only appears when the
// parser is configured with WithRDFStar; otherwise the lexer rejects the
// `<<` token before this type is ever constructed.
type QuotedTriple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

func (QuotedTriple) isTerm() {}

func (q QuotedTriple) String() string {
	return fmt.Sprintf("<<%s %s %s>>", q.Subject, q.Predicate, q.Object)
}
