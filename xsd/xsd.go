// Package xsd holds the IRI strings of the XML Schema datatypes the
// recognizer assigns to untyped numeric and boolean literals. It is
// dependency-free (plain strings, not n3.IRI) so that n3 itself can
// depend on it without an import cycle; callers wrap a constant in
// n3.IRI{Value: xsd.String} where an n3.IRI is needed.
package xsd

// The subset of XML schema built-in datatypes (xsd) the recognizer
// assigns on its own, without a user-supplied datatype IRI:
// https://www.w3.org/TR/xmlschema11-2/
const (
	String  = "http://www.w3.org/2001/XMLSchema#string"
	Boolean = "http://www.w3.org/2001/XMLSchema#boolean"
	Decimal = "http://www.w3.org/2001/XMLSchema#decimal"
	Integer = "http://www.w3.org/2001/XMLSchema#integer"
	Double  = "http://www.w3.org/2001/XMLSchema#double"
)
