package gxml

import "log/slog"

// config holds per-parser-instance options, set through the
// Option func(*config) functional-options idiom.
type config struct {
	preserveWhitespace bool
	resolveEntities    bool
	maxDepth           int
	maxAttributes      int
	maxTokenSize       int
	logger             *slog.Logger
}

// Option configures a Parser or Decoder.
type Option func(*config)

func defaultParserConfig() *config {
	return &config{
		preserveWhitespace: false,
		resolveEntities:    true,
		maxDepth:           256,
		maxAttributes:      256,
		maxTokenSize:       defaultMaxTokenSize,
		logger:             slog.Default(),
	}
}

// WithPreserveWhitespace controls whether all-whitespace runs between
// markup are emitted as Whitespace events. Default off.
func WithPreserveWhitespace(on bool) Option {
	return func(c *config) { c.preserveWhitespace = on }
}

// WithResolveEntities controls whether "&...;" sequences are resolved
// in text and attribute values. Default on.
func WithResolveEntities(on bool) Option {
	return func(c *config) { c.resolveEntities = on }
}

// WithMaxDepth overrides the element nesting bound (default 256).
// Exceeding it fails with TooManyNestedElements.
func WithMaxDepth(n int) Option {
	return func(c *config) { c.maxDepth = n }
}

// WithMaxAttributes overrides the per-element attribute cap (default
// 256). Exceeding it fails with TooManyAttributes rather than
// crashing.
func WithMaxAttributes(n int) Option {
	return func(c *config) { c.maxAttributes = n }
}

// WithMaxTokenSize overrides the per-token scan ceiling (default
// 16 MiB). Exceeding it fails with TokenTooLarge.
func WithMaxTokenSize(n int) Option {
	return func(c *config) { c.maxTokenSize = n }
}

// WithLogger installs a structured logger for diagnostic output.
// Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}
