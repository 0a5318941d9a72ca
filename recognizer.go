package n3

import "github.com/knakk/n3/xsd"

// recognizer is the pushdown automaton of spec §4.3: an explicit stack of
// grammar states (not the Go call stack) drives recognition, so the whole
// parse can be frozen between chunks and resumed, and so a syntax error can
// be handled by clearing the stack back to document level instead of
// unwinding panics through arbitrarily deep recursion.
//
// Grounded in the teacher's ttlDecoder (ttl.go): the same idea of a
// context/predicate stack threaded through state transitions, and the same
// fresh-blank-per-'[' bookkeeping, generalized from Turtle's grammar to
// N3's (paths, formulas, inverted predicates, SPARQL-style directives).
type recognizer struct {
	work       []n3State
	terms      []Term
	predicates []predicateFrame
	contexts   []Term // empty means "default graph"; top is a formula's blank graph name

	base     string
	prefixes map[string]string
	blanks   *blankFactory
	rdfStar  bool

	quads []Quad
}

// predicateFrame remembers the subject and verb an ObjectsList is
// currently filling in objects for.
type predicateFrame struct {
	subject  Term
	verb     Term
	inverted bool
}

type stateKind int

const (
	stN3Doc stateKind = iota
	stBaseExpectIRI
	stPrefixExpectName
	stPrefixExpectIRI
	stDirectiveExpectDot
	stSubject
	stPath
	stPathFollowUp
	stPathAfterIndicator
	stPathItem
	stPredicateObjectList
	stVerbLoop
	stVerb
	stVerbHasPredicate
	stVerbIsPredicate
	stVerbIsGotPredicate
	stVerbLeftArrowPredicate
	stVerbLeftArrowGotPredicate
	stVerbPathPredicate
	stAfterRegularVerb
	stAfterInvertedVerb
	stAfterVerbIs
	stObjectsList
	stObjectsListContinuation
	stPropertyListOpen
	stPropertyListExplicitSubject
	stCollectionBeginning
	stCollectionGotElement
	stLiteralPossibleSuffix
	stLiteralExpectDatatype
	stFormulaContent
	stFormulaStatement
	stQuotedTripleGotSubject
	stQuotedTripleVerb
	stQuotedTripleVerbPath
	stQuotedTripleObject
	stQuotedTripleClose
)

// n3State is a single stack frame. Only the fields relevant to its kind
// are populated; unused fields are simply zero.
type n3State struct {
	kind      stateKind
	prefix    string
	subject   Term
	predicate Term
	object    Term
	inverted  bool
	lexical   string
	collTail  Term
	collHead  bool // true once the collection's head term has been fixed
	requireDot bool // stBaseExpectIRI/stPrefixExpect*: '@'-form requires a trailing '.', bare BASE/PREFIX does not

	terminator    string // stVerbLoop: punctuation that ends the pair list, consumed
	altTerminator string // stVerbLoop: punctuation that ends it too, but left unconsumed
}

func newRecognizer(cfg *Config) *recognizer {
	prefixes := make(map[string]string, len(cfg.prefixes))
	for k, v := range cfg.prefixes {
		prefixes[k] = v
	}
	return &recognizer{
		work:     []n3State{{kind: stN3Doc}},
		base:     cfg.baseIRI,
		prefixes: prefixes,
		blanks:   newBlankFactory(),
		rdfStar:  cfg.rdfStar,
	}
}

// atDocLevel reports whether the stack is back at the top-level document
// loop — the condition error recovery resynchronizes to.
func (r *recognizer) atDocLevel() bool {
	return len(r.work) == 1 && r.work[0].kind == stN3Doc
}

// expectingLangTag reports whether the very next lexer call should treat a
// leading '@' as a language tag rather than a directive keyword.
func (r *recognizer) expectingLangTag() bool {
	if len(r.work) == 0 {
		return false
	}
	return r.work[len(r.work)-1].kind == stLiteralPossibleSuffix
}

func (r *recognizer) push(s n3State) { r.work = append(r.work, s) }

func (r *recognizer) pop() n3State {
	s := r.work[len(r.work)-1]
	r.work = r.work[:len(r.work)-1]
	return s
}

func (r *recognizer) pushTerm(t Term) { r.terms = append(r.terms, t) }

func (r *recognizer) popTerm() Term {
	t := r.terms[len(r.terms)-1]
	r.terms = r.terms[:len(r.terms)-1]
	return t
}

func (r *recognizer) currentGraph() Term {
	if len(r.contexts) == 0 {
		return nil
	}
	return r.contexts[len(r.contexts)-1]
}

func (r *recognizer) emit(s, p, o Term) {
	r.quads = append(r.quads, Quad{Subject: s, Predicate: p, Object: o, Graph: r.currentGraph()})
}

// drainQuads hands ownership of every quad emitted since the last drain to
// the caller (the driver), in emission order.
func (r *recognizer) drainQuads() []Quad {
	if len(r.quads) == 0 {
		return nil
	}
	qs := r.quads
	r.quads = nil
	return qs
}

// recoverFromError clears all grammar state and drops back to the
// document loop; the driver is then responsible for discarding tokens up
// to (and including) the next '.' token before resuming. That '.' may lie
// inside a formula: the driver does not track '{'/'}' nesting while it
// discards.
func (r *recognizer) recoverFromError() {
	r.work = []n3State{{kind: stN3Doc}}
	r.terms = r.terms[:0]
	r.predicates = r.predicates[:0]
	r.contexts = r.contexts[:0]
}

// resolveTerm builds the Term an IRI reference or prefixed name token
// denotes, shared by every production that accepts either.
func (r *recognizer) resolveTerm(tok token) (Term, error) {
	switch tok.kind {
	case tokIRIRef:
		resolved, err := resolveIRI(r.base, tok.text)
		if err != nil {
			return nil, &IRIError{IRI: tok.text, Message: err.Error()}
		}
		return IRI{Value: resolved}, nil
	case tokPrefixedName:
		return resolve(tok.prefix, tok.local, tok.maybeInvalidIRI, r.prefixes, tok.pos)
	default:
		return nil, &SyntaxError{Pos: tok.pos, Message: "expected an IRI"}
	}
}

// step runs one transition against tok. It returns consumed=true if tok
// was used up by this call; if false, the driver must call step again
// with the SAME token (the stack has changed, but no input moved) — this
// is how a production pushes several states before the one that actually
// consumes a token.
func (r *recognizer) step(tok token) (consumed bool, err error) {
	if len(r.work) == 0 {
		return false, &SyntaxError{Pos: tok.pos, Message: "unexpected input after end of document"}
	}
	s := r.pop()

	switch s.kind {
	case stN3Doc:
		r.push(n3State{kind: stN3Doc})
		return r.stepDirectiveOrElse(tok, "")

	case stBaseExpectIRI:
		if tok.kind != tokIRIRef {
			return false, &SyntaxError{Pos: tok.pos, Message: "expected an IRI reference after BASE/@base"}
		}
		resolved, err := resolveIRI(r.base, tok.text)
		if err != nil {
			return false, &IRIError{IRI: tok.text, Message: err.Error()}
		}
		r.base = resolved
		if s.requireDot {
			r.push(n3State{kind: stDirectiveExpectDot})
		}
		return true, nil

	case stPrefixExpectName:
		if tok.kind != tokPrefixedName || tok.local != "" {
			return false, &SyntaxError{Pos: tok.pos, Message: "expected a prefix name (e.g. 'ex:') after PREFIX/@prefix"}
		}
		r.push(n3State{kind: stPrefixExpectIRI, prefix: tok.prefix, requireDot: s.requireDot})
		return true, nil

	case stPrefixExpectIRI:
		if tok.kind != tokIRIRef {
			return false, &SyntaxError{Pos: tok.pos, Message: "expected an IRI reference after prefix name"}
		}
		resolved, err := resolveIRI(r.base, tok.text)
		if err != nil {
			return false, &IRIError{IRI: tok.text, Message: err.Error()}
		}
		r.prefixes[s.prefix] = resolved
		if s.requireDot {
			r.push(n3State{kind: stDirectiveExpectDot})
		}
		return true, nil

	case stDirectiveExpectDot:
		if tok.kind != tokPunctuation || tok.text != punctDot {
			return false, &SyntaxError{Pos: tok.pos, Message: "expected '.' after @base/@prefix directive"}
		}
		return true, nil

	case stSubject:
		r.push(n3State{kind: stPredicateObjectList, altTerminator: s.altTerminator})
		r.push(n3State{kind: stPath})
		return false, nil

	case stPath:
		r.push(n3State{kind: stPathFollowUp})
		r.push(n3State{kind: stPathItem})
		return false, nil

	case stPathFollowUp:
		if tok.kind == tokPunctuation && (tok.text == punctBang || tok.text == punctCaret) {
			cur := r.popTerm()
			r.push(n3State{kind: stPathAfterIndicator, subject: cur, inverted: tok.text == punctCaret})
			r.push(n3State{kind: stPathItem})
			return true, nil
		}
		// Path complete; its term is already on top of r.terms.
		return false, nil

	case stPathAfterIndicator:
		predTerm := r.popTerm()
		fresh := r.blanks.fresh()
		if s.inverted {
			r.emit(fresh, predTerm, s.subject)
		} else {
			r.emit(s.subject, predTerm, fresh)
		}
		r.pushTerm(fresh)
		r.push(n3State{kind: stPathFollowUp})
		return false, nil

	case stPathItem:
		return r.stepPathItem(tok)

	case stPredicateObjectList:
		subj := r.popTerm()
		r.push(n3State{kind: stVerbLoop, subject: subj, terminator: punctDot, altTerminator: s.altTerminator})
		return false, nil

	case stVerbLoop:
		return r.stepVerbLoop(tok, s)

	case stVerb:
		return r.stepVerb(tok, s.subject)

	case stVerbHasPredicate:
		r.push(n3State{kind: stVerbPathPredicate, subject: s.subject})
		r.push(n3State{kind: stPath})
		return false, nil

	case stVerbIsPredicate:
		r.push(n3State{kind: stVerbIsGotPredicate, subject: s.subject})
		r.push(n3State{kind: stPath})
		return false, nil

	case stVerbIsGotPredicate:
		pred := r.popTerm()
		r.push(n3State{kind: stAfterVerbIs, subject: s.subject, predicate: pred})
		return false, nil

	case stVerbLeftArrowPredicate:
		r.push(n3State{kind: stVerbLeftArrowGotPredicate, subject: s.subject})
		r.push(n3State{kind: stPath})
		return false, nil

	case stVerbLeftArrowGotPredicate:
		pred := r.popTerm()
		r.push(n3State{kind: stAfterInvertedVerb, subject: s.subject, predicate: pred})
		return false, nil

	case stVerbPathPredicate:
		pred := r.popTerm()
		r.push(n3State{kind: stAfterRegularVerb, subject: s.subject, predicate: pred})
		return false, nil

	case stAfterRegularVerb:
		r.predicates = append(r.predicates, predicateFrame{subject: s.subject, verb: s.predicate, inverted: false})
		r.push(n3State{kind: stObjectsList})
		r.push(n3State{kind: stPath})
		return false, nil

	case stAfterInvertedVerb:
		r.predicates = append(r.predicates, predicateFrame{subject: s.subject, verb: s.predicate, inverted: true})
		r.push(n3State{kind: stObjectsList})
		r.push(n3State{kind: stPath})
		return false, nil

	case stAfterVerbIs:
		if tok.kind != tokPlainKeyword || tok.text != "of" {
			return false, &SyntaxError{Pos: tok.pos, Message: "expected 'of' after 'is' verb"}
		}
		r.predicates = append(r.predicates, predicateFrame{subject: s.subject, verb: s.predicate, inverted: true})
		r.push(n3State{kind: stObjectsList})
		r.push(n3State{kind: stPath})
		return true, nil

	case stObjectsList:
		obj := r.popTerm()
		frame := r.predicates[len(r.predicates)-1]
		if frame.inverted {
			r.emit(obj, frame.verb, frame.subject)
		} else {
			r.emit(frame.subject, frame.verb, obj)
		}
		r.push(n3State{kind: stObjectsListContinuation})
		return false, nil

	case stObjectsListContinuation:
		if tok.kind == tokPunctuation && tok.text == punctComma {
			r.push(n3State{kind: stObjectsList})
			r.push(n3State{kind: stPath})
			return true, nil
		}
		r.predicates = r.predicates[:len(r.predicates)-1]
		return false, nil

	case stPropertyListOpen:
		if tok.kind == tokPlainKeyword && tok.text == "id" {
			r.push(n3State{kind: stPropertyListExplicitSubject})
			return true, nil
		}
		fresh := r.blanks.fresh()
		r.pushTerm(fresh)
		r.push(n3State{kind: stVerbLoop, subject: fresh, terminator: punctCloseBracket})
		return false, nil

	case stPropertyListExplicitSubject:
		subj, err := r.resolveTerm(tok)
		if err != nil {
			if se, ok := err.(*SyntaxError); ok {
				se.Message = "expected an IRI after 'id'"
				return false, se
			}
			return false, err
		}
		r.pushTerm(subj)
		r.push(n3State{kind: stVerbLoop, subject: subj, terminator: punctCloseBracket})
		return true, nil

	case stCollectionBeginning:
		if tok.kind == tokPunctuation && tok.text == punctCloseParen {
			if !s.collHead {
				r.pushTerm(rdfNil)
			} else {
				r.emit(s.collTail, rdfRest, rdfNil)
			}
			return true, nil
		}
		r.push(n3State{kind: stCollectionGotElement, collTail: s.collTail, collHead: s.collHead})
		r.push(n3State{kind: stPath})
		return false, nil

	case stCollectionGotElement:
		elem := r.popTerm()
		cell := r.blanks.fresh()
		if s.collHead {
			r.emit(s.collTail, rdfRest, cell)
		} else {
			// First element: the collection's own term is this first cell.
			r.pushTerm(cell)
		}
		r.emit(cell, rdfFirst, elem)
		r.push(n3State{kind: stCollectionBeginning, collTail: cell, collHead: true})
		return false, nil

	case stLiteralPossibleSuffix:
		if tok.kind == tokLangTag {
			r.pushTerm(Literal{Lexical: s.lexical, Lang: lowerLangTag(tok.text), Datatype: IRI{Value: xsd.String}})
			return true, nil
		}
		if tok.kind == tokPunctuation && tok.text == punctDoubleCaret {
			r.push(n3State{kind: stLiteralExpectDatatype, lexical: s.lexical})
			return true, nil
		}
		r.pushTerm(Literal{Lexical: s.lexical, Datatype: IRI{Value: xsd.String}})
		return false, nil

	case stLiteralExpectDatatype:
		dt, err := r.resolveTerm(tok)
		if err != nil {
			if se, ok := err.(*SyntaxError); ok {
				se.Message = "expected an IRI datatype after '^^'"
				return false, se
			}
			return false, err
		}
		r.pushTerm(Literal{Lexical: s.lexical, Datatype: dt.(IRI)})
		return true, nil

	case stFormulaContent:
		if tok.kind == tokPunctuation && tok.text == punctCloseBrace {
			g := r.contexts[len(r.contexts)-1]
			r.contexts = r.contexts[:len(r.contexts)-1]
			r.pushTerm(g)
			return true, nil
		}
		r.push(n3State{kind: stFormulaContent})
		r.push(n3State{kind: stFormulaStatement})
		return false, nil

	case stFormulaStatement:
		return r.stepDirectiveOrElse(tok, punctCloseBrace)

	case stQuotedTripleGotSubject:
		subj := r.popTerm()
		r.push(n3State{kind: stQuotedTripleVerb, subject: subj})
		return false, nil

	case stQuotedTripleVerb:
		return r.stepQuotedTripleVerb(tok, s)

	case stQuotedTripleVerbPath:
		pred := r.popTerm()
		r.push(n3State{kind: stQuotedTripleObject, subject: s.subject, predicate: pred})
		r.push(n3State{kind: stPath})
		return false, nil

	case stQuotedTripleObject:
		obj := r.popTerm()
		r.push(n3State{kind: stQuotedTripleClose, subject: s.subject, predicate: s.predicate, object: obj})
		return false, nil

	case stQuotedTripleClose:
		if tok.kind != tokPunctuation || tok.text != punctQuoteTripleEnd {
			return false, &SyntaxError{Pos: tok.pos, Message: "expected '>>' to close a quoted triple"}
		}
		r.pushTerm(QuotedTriple{Subject: s.subject, Predicate: s.predicate, Object: s.object})
		return true, nil
	}

	return false, &SyntaxError{Pos: tok.pos, Message: "internal: unhandled recognizer state"}
}

// stepDirectiveOrElse recognizes a BASE/PREFIX directive (bare SPARQL-style
// or '@'-prefixed) at the start of a statement, falling through to an
// ordinary subject otherwise. It backs both the top-level document loop
// and a formula's statement list, which accept the same grammar; altTerminator
// is "" for the former and punctCloseBrace for the latter, and is threaded
// down to the statement's own stVerbLoop so a formula's last statement can
// end at '}' without a trailing '.' (spec §8 scenario 5).
func (r *recognizer) stepDirectiveOrElse(tok token, altTerminator string) (bool, error) {
	if tok.kind == tokPlainKeyword {
		switch tok.text {
		case "@base":
			r.push(n3State{kind: stBaseExpectIRI, requireDot: true})
			return true, nil
		case "BASE":
			r.push(n3State{kind: stBaseExpectIRI})
			return true, nil
		case "@prefix":
			r.push(n3State{kind: stPrefixExpectName, requireDot: true})
			return true, nil
		case "PREFIX":
			r.push(n3State{kind: stPrefixExpectName})
			return true, nil
		}
	}
	r.push(n3State{kind: stSubject, altTerminator: altTerminator})
	return false, nil
}

// stepVerbLoop drives the `(verb objectsList) (';' (verb objectsList)?)*`
// grammar shared by top-level triples and formula statements (terminator
// '.') and blank-node property lists (terminator ']'). altTerminator lets
// a caller end the loop on a second punctuation mark without consuming it.
// A run of ';' — including a trailing one right before the terminator —
// is tolerated, matching the reference implementation (spec §4.3).
func (r *recognizer) stepVerbLoop(tok token, s n3State) (bool, error) {
	if tok.kind == tokPunctuation && tok.text == s.terminator {
		return true, nil
	}
	if s.altTerminator != "" && tok.kind == tokPunctuation && tok.text == s.altTerminator {
		return false, nil
	}
	if tok.kind == tokPunctuation && tok.text == punctSemicolon {
		r.push(n3State{kind: stVerbLoop, subject: s.subject, terminator: s.terminator, altTerminator: s.altTerminator})
		return true, nil
	}
	r.push(n3State{kind: stVerbLoop, subject: s.subject, terminator: s.terminator, altTerminator: s.altTerminator})
	r.push(n3State{kind: stVerb, subject: s.subject})
	return false, nil
}

// stepPathItem handles the PathItem production: every concrete way a term
// can start (spec §4.3's PathItem list).
func (r *recognizer) stepPathItem(tok token) (bool, error) {
	switch tok.kind {
	case tokIRIRef, tokPrefixedName:
		term, err := r.resolveTerm(tok)
		if err != nil {
			return false, err
		}
		r.pushTerm(term)
		return true, nil
	case tokBlankNodeLabel:
		r.pushTerm(Blank{Label: tok.text})
		return true, nil
	case tokAnonBlankNode:
		r.pushTerm(r.blanks.fresh())
		return true, nil
	case tokVariable:
		r.pushTerm(Variable{Name: tok.text})
		return true, nil
	case tokString:
		r.push(n3State{kind: stLiteralPossibleSuffix, lexical: tok.text})
		return true, nil
	case tokInteger:
		r.pushTerm(Literal{Lexical: tok.text, Datatype: IRI{Value: xsd.Integer}})
		return true, nil
	case tokDecimal:
		r.pushTerm(Literal{Lexical: tok.text, Datatype: IRI{Value: xsd.Decimal}})
		return true, nil
	case tokDouble:
		r.pushTerm(Literal{Lexical: tok.text, Datatype: IRI{Value: xsd.Double}})
		return true, nil
	case tokPlainKeyword:
		switch tok.text {
		case "true", "false":
			r.pushTerm(Literal{Lexical: tok.text, Datatype: IRI{Value: xsd.Boolean}})
			return true, nil
		}
		return false, &SyntaxError{Pos: tok.pos, Message: "unexpected keyword '" + tok.text + "' where a term was expected"}
	case tokPunctuation:
		switch tok.text {
		case punctOpenBracket:
			r.push(n3State{kind: stPropertyListOpen})
			return true, nil
		case punctOpenParen:
			r.push(n3State{kind: stCollectionBeginning})
			return true, nil
		case punctOpenBrace:
			g := r.blanks.fresh()
			r.contexts = append(r.contexts, g)
			r.push(n3State{kind: stFormulaContent})
			return true, nil
		case punctQuoteTripleOpen:
			if !r.rdfStar {
				return false, &SyntaxError{Pos: tok.pos, Message: "quoted triples are not enabled for this parse"}
			}
			r.push(n3State{kind: stQuotedTripleGotSubject})
			r.push(n3State{kind: stPath})
			return true, nil
		}
	}
	return false, &SyntaxError{Pos: tok.pos, Message: "unexpected " + tok.kind.String() + " where a term was expected"}
}

// stepVerb handles the Verb production: `a`, `=`, `=>`, `<=`, `has`,
// `is ... of`, a bare path (regular predicate), or `<-` (inverted path
// predicate).
func (r *recognizer) stepVerb(tok token, subject Term) (bool, error) {
	if tok.kind == tokPlainKeyword {
		switch tok.text {
		case "a":
			r.push(n3State{kind: stAfterRegularVerb, subject: subject, predicate: rdfType})
			return true, nil
		case "has":
			r.push(n3State{kind: stVerbHasPredicate, subject: subject})
			return true, nil
		case "is":
			r.push(n3State{kind: stVerbIsPredicate, subject: subject})
			return true, nil
		}
	}
	if tok.kind == tokPunctuation {
		switch tok.text {
		case punctEquals:
			r.push(n3State{kind: stAfterRegularVerb, subject: subject, predicate: owlSameAs})
			return true, nil
		case punctImplies:
			r.push(n3State{kind: stAfterRegularVerb, subject: subject, predicate: logImplies})
			return true, nil
		case punctImpliedBy:
			r.push(n3State{kind: stAfterInvertedVerb, subject: subject, predicate: logImplies})
			return true, nil
		case punctLeftArrow:
			r.push(n3State{kind: stVerbLeftArrowPredicate, subject: subject})
			return true, nil
		}
	}
	// Plain path used as a regular predicate.
	r.push(n3State{kind: stVerbPathPredicate, subject: subject})
	r.push(n3State{kind: stPath})
	return false, nil
}

func (r *recognizer) stepQuotedTripleVerb(tok token, s n3State) (bool, error) {
	switch {
	case tok.kind == tokPlainKeyword && tok.text == "a":
		r.push(n3State{kind: stQuotedTripleObject, subject: s.subject, predicate: rdfType})
		r.push(n3State{kind: stPath})
		return true, nil
	case tok.kind == tokPunctuation && tok.text == punctEquals:
		r.push(n3State{kind: stQuotedTripleObject, subject: s.subject, predicate: owlSameAs})
		r.push(n3State{kind: stPath})
		return true, nil
	default:
		r.push(n3State{kind: stQuotedTripleVerbPath, subject: s.subject})
		r.push(n3State{kind: stPath})
		return false, nil
	}
}

// Well-known predicate IRIs the recognizer needs without a user-supplied
// prefix: rdf:type (verb 'a'), owl:sameAs (verb '='), log:implies (verbs
// '=>'/'<='), and the rdf:first/rdf:rest/rdf:nil collection vocabulary.
var (
	rdfType    = IRI{Value: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"}
	rdfFirst   = IRI{Value: "http://www.w3.org/1999/02/22-rdf-syntax-ns#first"}
	rdfRest    = IRI{Value: "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest"}
	rdfNil     = IRI{Value: "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil"}
	owlSameAs  = IRI{Value: "http://www.w3.org/2002/07/owl#sameAs"}
	logImplies = IRI{Value: "http://www.w3.org/2000/10/swap/log#implies"}
)
