package n3

import (
	"log/slog"
	"net/url"
)

// Tuning knobs (spec.md §6). MinBufferSize is the initial buffer
// allocation; MaxBufferSize caps the length of any single unbroken token
// (an overly long literal, IRI, or comment) and therefore bounds memory
// per parse.
const (
	MinBufferSize = 4096
	MaxBufferSize = 8 * 1024 * 1024
)

// CommentStart is the byte that begins a line comment.
const CommentStart = '#'

// Config is the immutable configuration built once before a parse: a base
// IRI, a prefix table, buffer-size tuning, and feature toggles. Config is
// safe to share and reuse across many parses (spec.md §3 "Lifecycle").
type Config struct {
	baseIRI       string
	prefixes      map[string]string
	minBufferSize int
	maxBufferSize int
	rdfStar       bool
	logger        *slog.Logger
}

// ParserOption configures a Config. Options are applied in order, so a
// later WithPrefix for the same name overrides an earlier one — the same
// last-write-wins behavior the recognizer itself uses for @prefix/PREFIX
// directives encountered later in a document.
type ParserOption func(*Config) error

// WithBase sets the initial base IRI. It must be an absolute IRI.
func WithBase(iri string) ParserOption {
	return func(c *Config) error {
		if _, err := validateAbsoluteIRI(iri); err != nil {
			return &IRIError{IRI: iri, Message: err.Error()}
		}
		c.baseIRI = iri
		return nil
	}
}

// WithPrefix registers a (prefix-name, IRI) pair in the initial prefix
// table. name may be empty (the default prefix).
func WithPrefix(name, iri string) ParserOption {
	return func(c *Config) error {
		if _, err := validateAbsoluteIRI(iri); err != nil {
			return &IRIError{IRI: iri, Message: err.Error()}
		}
		c.prefixes[name] = iri
		return nil
	}
}

// WithRDFStar enables the `<< s p o >>` quoted-triple extension. Without
// it, the lexer rejects `<<` as a lexical error (spec.md §6).
func WithRDFStar(enabled bool) ParserOption {
	return func(c *Config) error {
		c.rdfStar = enabled
		return nil
	}
}

// WithMinBufferSize overrides the initial buffer allocation.
func WithMinBufferSize(n int) ParserOption {
	return func(c *Config) error {
		c.minBufferSize = n
		return nil
	}
}

// WithMaxBufferSize overrides the hard cap on a single unbroken token.
func WithMaxBufferSize(n int) ParserOption {
	return func(c *Config) error {
		c.maxBufferSize = n
		return nil
	}
}

// WithLogger attaches a structured logger. Lexical errors and the
// recognizer's syntax errors are logged at slog.LevelDebug as they occur;
// IRI errors and the final "unexpected end of input" error are not logged.
// Without a logger, nothing is logged (the zero value is a no-op, see
// logging.go).
func WithLogger(l *slog.Logger) ParserOption {
	return func(c *Config) error {
		c.logger = l
		return nil
	}
}

// NewConfig builds a Config from options, in the order given. It fails
// fast on the first invalid base or prefix IRI, mirroring the teacher's
// NewURI/NewBlank constructors (rdf.go) which validate at construction
// rather than at first use.
func NewConfig(opts ...ParserOption) (*Config, error) {
	c := &Config{
		prefixes:      make(map[string]string),
		minBufferSize: MinBufferSize,
		maxBufferSize: MaxBufferSize,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// validateAbsoluteIRI rejects anything that isn't a syntactically valid
// absolute IRI. Resolution against a base (for relative references
// encountered mid-document) is handled separately by resolveIRI.
func validateAbsoluteIRI(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, errNotAbsolute
	}
	return u, nil
}

var errNotAbsolute = notAbsoluteError{}

type notAbsoluteError struct{}

func (notAbsoluteError) Error() string { return "IRI is not absolute" }

// resolveIRI resolves a possibly-relative IRI reference against base. An
// empty base with a relative reference is itself an error: N3 requires a
// base IRI (set via @base/BASE or configuration) before any relative IRI
// can be used.
func resolveIRI(base, ref string) (string, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if refURL.IsAbs() {
		return ref, nil
	}
	if base == "" {
		return "", notAbsoluteError{}
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(refURL).String(), nil
}
