package n3

import "log/slog"

// debugLex logs a recovered lexical error, if a logger was configured.
// Logging is a pure side channel: callers still receive the error through
// the quad stream, same as without a logger attached.
func (c *Config) debugLex(err *LexError) {
	if c.logger == nil {
		return
	}
	c.logger.Debug("n3: lexical error",
		slog.Int("source.offset", err.Pos.Offset),
		slog.Int("source.line", err.Pos.Line),
		slog.Int("source.column", err.Pos.Column),
		slog.String("message", err.Message),
	)
}

// debugSyntax logs a recovered syntax error, if a logger was configured.
func (c *Config) debugSyntax(err *SyntaxError) {
	if c.logger == nil {
		return
	}
	c.logger.Debug("n3: syntax error, resynchronizing at next '.'",
		slog.Int("source.offset", err.Pos.Offset),
		slog.Int("source.line", err.Pos.Line),
		slog.Int("source.column", err.Pos.Column),
		slog.String("message", err.Message),
	)
}
