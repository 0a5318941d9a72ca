package n3

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseAll feeds src through a ChunkFed parser in one shot and collects
// every quad and error it produces, in order.
func parseAll(t *testing.T, cfg *Config, src string) ([]Quad, []error) {
	t.Helper()
	f := NewChunkFed(cfg)
	require.NoError(t, f.Feed([]byte(src)))
	f.Close()

	var quads []Quad
	var errs []error
	for {
		q, err := f.Next()
		if err == io.EOF {
			break
		}
		if err == ErrNeedMoreInput {
			t.Fatalf("unexpected ErrNeedMoreInput on a fully-fed, closed parse")
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		quads = append(quads, q)
	}
	return quads, errs
}

func mustConfig(t *testing.T, opts ...ParserOption) *Config {
	t.Helper()
	cfg, err := NewConfig(opts...)
	require.NoError(t, err)
	return cfg
}

func TestParse_simpleTriple(t *testing.T) {
	cfg := mustConfig(t)
	quads, errs := parseAll(t, cfg, `<http://example.org/s> <http://example.org/p> <http://example.org/o> .`)
	require.Empty(t, errs)
	require.Len(t, quads, 1)
	assert.Equal(t, IRI{Value: "http://example.org/s"}, quads[0].Subject)
	assert.Equal(t, IRI{Value: "http://example.org/p"}, quads[0].Predicate)
	assert.Equal(t, IRI{Value: "http://example.org/o"}, quads[0].Object)
	assert.True(t, quads[0].DefaultGraph())
}

func TestParse_prefixedNameAndAVerb(t *testing.T) {
	cfg := mustConfig(t)
	src := `
@prefix ex: <http://example.org/> .
ex:alice a ex:Person .
`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 1)
	assert.Equal(t, IRI{Value: "http://example.org/alice"}, quads[0].Subject)
	assert.Equal(t, rdfType, quads[0].Predicate)
	assert.Equal(t, IRI{Value: "http://example.org/Person"}, quads[0].Object)
}

func TestParse_baseDirectiveResolvesRelativeIRIs(t *testing.T) {
	cfg := mustConfig(t)
	src := `
@base <http://example.org/base/> .
<s> <p> <o> .
`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 1)
	assert.Equal(t, IRI{Value: "http://example.org/base/s"}, quads[0].Subject)
	assert.Equal(t, IRI{Value: "http://example.org/base/p"}, quads[0].Predicate)
	assert.Equal(t, IRI{Value: "http://example.org/base/o"}, quads[0].Object)
}

func TestParse_sparqlStyleDirectivesNoTrailingDot(t *testing.T) {
	cfg := mustConfig(t)
	src := `
BASE <http://example.org/base/>
PREFIX ex: <http://example.org/>
<s> ex:p <o> .
`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 1)
	assert.Equal(t, IRI{Value: "http://example.org/base/s"}, quads[0].Subject)
	assert.Equal(t, IRI{Value: "http://example.org/p"}, quads[0].Predicate)
}

func TestParse_commaSeparatedObjects(t *testing.T) {
	cfg := mustConfig(t)
	src := `<http://e/s> <http://e/p> <http://e/o1>, <http://e/o2>, <http://e/o3> .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 3)
	for i, want := range []string{"http://e/o1", "http://e/o2", "http://e/o3"} {
		assert.Equal(t, IRI{Value: want}, quads[i].Object)
	}
}

func TestParse_semicolonSeparatedPredicates(t *testing.T) {
	cfg := mustConfig(t)
	src := `<http://e/s> <http://e/p1> <http://e/o1> ; <http://e/p2> <http://e/o2> .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 2)
	assert.Equal(t, IRI{Value: "http://e/p1"}, quads[0].Predicate)
	assert.Equal(t, IRI{Value: "http://e/p2"}, quads[1].Predicate)
}

func TestParse_tolerantSemicolons(t *testing.T) {
	cfg := mustConfig(t)
	src := `<http://e/s> <http://e/p1> <http://e/o1> ;; <http://e/p2> <http://e/o2> ; .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 2)
}

func TestParse_invertedVerbIs(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . ex:child is ex:parentOf of ex:parent .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 1)
	assert.Equal(t, IRI{Value: "http://example.org/parent"}, quads[0].Subject)
	assert.Equal(t, IRI{Value: "http://example.org/parentOf"}, quads[0].Predicate)
	assert.Equal(t, IRI{Value: "http://example.org/child"}, quads[0].Object)
}

func TestParse_leftArrowInvertedPath(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . ex:child <- ex:parentOf ex:parent .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 1)
	assert.Equal(t, IRI{Value: "http://example.org/parent"}, quads[0].Subject)
	assert.Equal(t, IRI{Value: "http://example.org/parentOf"}, quads[0].Predicate)
	assert.Equal(t, IRI{Value: "http://example.org/child"}, quads[0].Object)
}

func TestParse_hasVerb(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . ex:alice has ex:age 30 .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 1)
	assert.Equal(t, IRI{Value: "http://example.org/age"}, quads[0].Predicate)
	assert.Equal(t, Literal{Lexical: "30", Datatype: IRI{Value: "http://www.w3.org/2001/XMLSchema#integer"}}, quads[0].Object)
}

func TestParse_equalsAndImplies(t *testing.T) {
	cfg := mustConfig(t)
	src := `
@prefix ex: <http://example.org/> .
ex:a = ex:b .
ex:c => ex:d .
ex:e <= ex:f .
`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 3)
	assert.Equal(t, owlSameAs, quads[0].Predicate)
	assert.Equal(t, logImplies, quads[1].Predicate)
	// 'e <= f' means 'f => e': log:implies with subject/object swapped.
	assert.Equal(t, IRI{Value: "http://example.org/f"}, quads[2].Subject)
	assert.Equal(t, logImplies, quads[2].Predicate)
	assert.Equal(t, IRI{Value: "http://example.org/e"}, quads[2].Object)
}

func TestParse_blankNodePropertyList(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . ex:s ex:p [ ex:q ex:r ] .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 2)
	// The property list's own quad is emitted before the enclosing
	// ex:s ex:p quad, which only completes once the object it points at
	// (the fresh blank) is known.
	blankObj, ok := quads[0].Subject.(Blank)
	require.True(t, ok, "expected the property list's quad to name a fresh blank as its subject")
	assert.Equal(t, IRI{Value: "http://example.org/q"}, quads[0].Predicate)
	assert.Equal(t, IRI{Value: "http://example.org/r"}, quads[0].Object)
	assert.Equal(t, IRI{Value: "http://example.org/p"}, quads[1].Predicate)
	assert.Equal(t, blankObj, quads[1].Object)
}

func TestParse_emptyPropertyListIsFreshBlankZeroQuads(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . ex:s ex:p [ ] .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 1)
	_, ok := quads[0].Object.(Blank)
	assert.True(t, ok)
}

func TestParse_propertyListExplicitSubject(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . ex:s ex:p [ id <http://example.org/explicit> ex:q ex:r ] .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 2)
	assert.Equal(t, IRI{Value: "http://example.org/explicit"}, quads[0].Subject)
	assert.Equal(t, IRI{Value: "http://example.org/explicit"}, quads[1].Object)
}

func TestParse_collectionDesugaring(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . ex:s ex:p ( ex:a ex:b ) .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	// The collection's own cells are emitted while the object position is
	// still being resolved; ex:s ex:p _:b1 only completes, and is emitted,
	// once the whole collection term is known:
	// _:b1 rdf:first ex:a . _:b1 rdf:rest _:b2 . _:b2 rdf:first ex:b .
	// _:b2 rdf:rest rdf:nil . ex:s ex:p _:b1 .
	require.Len(t, quads, 5)
	assert.Equal(t, rdfFirst, quads[0].Predicate)
	assert.Equal(t, IRI{Value: "http://example.org/a"}, quads[0].Object)
	assert.Equal(t, rdfRest, quads[1].Predicate)
	assert.Equal(t, rdfFirst, quads[2].Predicate)
	assert.Equal(t, IRI{Value: "http://example.org/b"}, quads[2].Object)
	assert.Equal(t, rdfRest, quads[3].Predicate)
	assert.Equal(t, rdfNil, quads[3].Object)
	assert.Equal(t, IRI{Value: "http://example.org/p"}, quads[4].Predicate)
	assert.Equal(t, quads[0].Subject, quads[4].Object)
}

func TestParse_emptyCollectionIsRDFNil(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . ex:s ex:p ( ) .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 1)
	assert.Equal(t, rdfNil, quads[0].Object)
}

func TestParse_singleElementCollectionTwoQuads(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . ex:s ex:p ( ex:a ) .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	// _:b rdf:first ex:a . _:b rdf:rest rdf:nil . ex:s ex:p _:b . — the
	// enclosing quad is emitted last, once the collection term is known.
	require.Len(t, quads, 3)
	assert.Equal(t, rdfFirst, quads[0].Predicate)
	assert.Equal(t, rdfRest, quads[1].Predicate)
	assert.Equal(t, rdfNil, quads[1].Object)
	assert.Equal(t, IRI{Value: "http://example.org/p"}, quads[2].Predicate)
	assert.Equal(t, quads[0].Subject, quads[2].Object)
}

func TestParse_stringSuffixes(t *testing.T) {
	cfg := mustConfig(t)
	src := `
@prefix ex: <http://example.org/> .
ex:s ex:plain "hello" .
ex:s ex:lang "bonjour"@FR .
ex:s ex:typed "42"^^ex:myType .
`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 3)

	plain := quads[0].Object.(Literal)
	assert.Equal(t, "hello", plain.Lexical)
	assert.Equal(t, IRI{Value: "http://www.w3.org/2001/XMLSchema#string"}, plain.Datatype)

	lang := quads[1].Object.(Literal)
	assert.Equal(t, "bonjour", lang.Lexical)
	assert.Equal(t, "fr", lang.Lang, "lang tag must be lowercased")

	typed := quads[2].Object.(Literal)
	assert.Equal(t, "42", typed.Lexical)
	assert.Equal(t, IRI{Value: "http://example.org/myType"}, typed.Datatype)
}

func TestParse_booleanLiterals(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . ex:s ex:p true, false .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 2)
	assert.Equal(t, IRI{Value: "http://www.w3.org/2001/XMLSchema#boolean"}, quads[0].Object.(Literal).Datatype)
	assert.Equal(t, "false", quads[1].Object.(Literal).Lexical)
}

func TestParse_pathChaining(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . ex:a!ex:b ex:p ex:o .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 2)
	_, ok := quads[0].Object.(Blank)
	require.True(t, ok)
	assert.Equal(t, IRI{Value: "http://example.org/a"}, quads[0].Subject)
	assert.Equal(t, IRI{Value: "http://example.org/b"}, quads[0].Predicate)
}

func TestParse_formulaPushesAndPopsGraph(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . ex:s ex:p { ex:a ex:b ex:c . } .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 2)
	assert.False(t, quads[0].DefaultGraph(), "the triple inside { } belongs to the formula's graph")
	formulaTerm := quads[1].Object
	assert.Equal(t, formulaTerm, quads[0].Graph)
	assert.True(t, quads[1].DefaultGraph(), "the containing triple is in the default graph")
}

func TestParse_formulaStatementWithoutTrailingDotBeforeClose(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . { ex:a ex:b ex:c } ex:implies { ex:d ex:e ex:f } .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 3)
	assert.Equal(t, IRI{Value: "http://example.org/b"}, quads[0].Predicate)
	assert.False(t, quads[0].DefaultGraph())
	assert.Equal(t, IRI{Value: "http://example.org/e"}, quads[1].Predicate)
	assert.False(t, quads[1].DefaultGraph())
	assert.Equal(t, IRI{Value: "http://example.org/implies"}, quads[2].Predicate)
	assert.Equal(t, quads[0].Graph, quads[2].Subject)
	assert.Equal(t, quads[1].Graph, quads[2].Object)
	assert.True(t, quads[2].DefaultGraph())
}

func TestParse_nestedFormulas(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . { { ex:a ex:b ex:c . } a ex:Nested . } a ex:Outer .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 3)
	assert.False(t, quads[0].DefaultGraph())
	innerGraph := quads[0].Graph
	assert.Equal(t, innerGraph, quads[1].Subject)
	assert.False(t, quads[1].DefaultGraph())
	assert.True(t, quads[2].DefaultGraph())
}

func TestParse_baseChangeInsideFormulaIsGlobal(t *testing.T) {
	cfg := mustConfig(t)
	src := `
@prefix ex: <http://example.org/> .
{ @base <http://inner.example/> . } a ex:Marker .
ex:s ex:p <rel> .
`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 2)
	assert.Equal(t, IRI{Value: "http://inner.example/rel"}, quads[1].Object)
}

func TestParse_quotedTripleRequiresRDFStar(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . << ex:a ex:b ex:c >> ex:p ex:o .`
	_, errs := parseAll(t, cfg, src)
	require.NotEmpty(t, errs, "<< should be a lexical or syntax error when RDF-star is disabled")
}

func TestParse_quotedTripleWithRDFStarEnabled(t *testing.T) {
	cfg := mustConfig(t, WithRDFStar(true))
	src := `@prefix ex: <http://example.org/> . << ex:a ex:b ex:c >> ex:p ex:o .`
	quads, errs := parseAll(t, cfg, src)
	require.Empty(t, errs)
	require.Len(t, quads, 1)
	qt, ok := quads[0].Subject.(QuotedTriple)
	require.True(t, ok)
	assert.Equal(t, IRI{Value: "http://example.org/a"}, qt.Subject)
	assert.Equal(t, IRI{Value: "http://example.org/b"}, qt.Predicate)
	assert.Equal(t, IRI{Value: "http://example.org/c"}, qt.Object)
}

func TestParse_emptyInputZeroQuadsZeroErrors(t *testing.T) {
	cfg := mustConfig(t)
	quads, errs := parseAll(t, cfg, "   \n # just a comment\n")
	assert.Empty(t, quads)
	assert.Empty(t, errs)
}

func TestParse_singleDotIsASyntaxError(t *testing.T) {
	cfg := mustConfig(t)
	_, errs := parseAll(t, cfg, `.`)
	require.NotEmpty(t, errs)
	_, ok := errs[0].(*SyntaxError)
	assert.True(t, ok)
}

func TestParse_isWithoutOfIsASyntaxErrorAndResumes(t *testing.T) {
	cfg := mustConfig(t)
	src := `
@prefix ex: <http://example.org/> .
ex:s is ex:p ex:bad .
ex:t ex:p ex:o .
`
	quads, errs := parseAll(t, cfg, src)
	require.Len(t, errs, 1)
	_, ok := errs[0].(*SyntaxError)
	assert.True(t, ok)
	require.Len(t, quads, 1, "parsing should resume after the next '.' and still emit the following statement")
	assert.Equal(t, IRI{Value: "http://example.org/t"}, quads[0].Subject)
}

func TestParse_datatypeMustBeAnIRI(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . ex:s ex:p "x"^^"not an iri" .`
	_, errs := parseAll(t, cfg, src)
	require.NotEmpty(t, errs)
	_, ok := errs[0].(*SyntaxError)
	assert.True(t, ok)
}

func TestParse_undefinedPrefixIsAnError(t *testing.T) {
	cfg := mustConfig(t)
	_, errs := parseAll(t, cfg, `ex:s ex:p ex:o .`)
	require.NotEmpty(t, errs)
}

func TestParse_relativeIRIWithoutBaseIsAnError(t *testing.T) {
	cfg := mustConfig(t)
	_, errs := parseAll(t, cfg, `<s> <p> <o> .`)
	require.NotEmpty(t, errs)
}

func TestParse_chunkedFeedingMatchesWholeBlobFeeding(t *testing.T) {
	src := `
@prefix ex: <http://example.org/> .
ex:alice ex:knows ex:bob, ex:carol .
ex:bob a ex:Person .
`
	cfgWhole := mustConfig(t)
	whole, wholeErrs := parseAll(t, cfgWhole, src)
	require.Empty(t, wholeErrs)

	cfgChunked := mustConfig(t)
	f := NewChunkFed(cfgChunked)
	for i := 0; i < len(src); i++ {
		require.NoError(t, f.Feed([]byte{src[i]}))
	}
	f.Close()

	var chunked []Quad
	for {
		q, err := f.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		chunked = append(chunked, q)
	}

	require.Equal(t, len(whole), len(chunked))
	for i := range whole {
		assert.Equal(t, whole[i], chunked[i])
	}
}

func TestParse_blockingReaderMatchesChunkFed(t *testing.T) {
	src := `@prefix ex: <http://example.org/> . ex:s ex:p ex:o, ex:o2 .`

	cfgChunked := mustConfig(t)
	chunked, errs := parseAll(t, cfgChunked, src)
	require.Empty(t, errs)

	cfgBlocking := mustConfig(t)
	br := NewBlockingReader(bufio.NewReader(strings.NewReader(src)), cfgBlocking)
	var viaBlocking []Quad
	for {
		q, err := br.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		viaBlocking = append(viaBlocking, q)
	}

	require.Equal(t, len(chunked), len(viaBlocking))
	for i := range chunked {
		assert.Equal(t, chunked[i], viaBlocking[i])
	}
}

// onceBlockingReader is a one-shot io.Reader standing in for a would-block
// source: it returns (0, nil) once, then delivers its payload.
type onceBlockingReader struct {
	blocked bool
	data    string
	read    int
}

func (r *onceBlockingReader) Read(p []byte) (int, error) {
	if !r.blocked {
		r.blocked = true
		return 0, nil
	}
	if r.read >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.read:])
	r.read += n
	return n, nil
}

func TestParse_nonblockingReaderSuspendsOnWouldBlock(t *testing.T) {
	cfg := mustConfig(t)
	r := &onceBlockingReader{data: `<http://e/s> <http://e/p> <http://e/o> .`}
	nr := NewNonblockingReader(r, cfg)

	_, err := nr.Next()
	assert.Equal(t, ErrWouldBlock, err)

	q, err := nr.Next()
	require.NoError(t, err)
	assert.Equal(t, IRI{Value: "http://e/s"}, q.Subject)

	_, err = nr.Next()
	assert.Equal(t, io.EOF, err)
}

func TestParse_blankNodeLabelsDistinctAcrossParses(t *testing.T) {
	cfg := mustConfig(t)
	src := `@prefix ex: <http://example.org/> . ex:s ex:p [ ] .`
	q1, errs1 := parseAll(t, cfg, src)
	q2, errs2 := parseAll(t, cfg, src)
	require.Empty(t, errs1)
	require.Empty(t, errs2)
	require.Len(t, q1, 1)
	require.Len(t, q2, 1)
	assert.NotEqual(t, q1[0].Object, q2[0].Object, "fresh blanks from two separate parses must never collide")
}
