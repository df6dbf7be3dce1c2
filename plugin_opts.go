package esx

import "log/slog"

// DefaultMaxFileSize is the default limit on the size of a plugin read by
// [Read] or [ReadFile] (2GB).
const DefaultMaxFileSize = 2 << 30

// Option configures a Plugin.
type Option func(*options)

// options holds the settings collected from Option values.
type options struct {
	logger       *slog.Logger
	maxFileSize  uint64
	resolverOpts []ResolverOption
}

func applyOptions(opts []Option) options {
	o := options{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger used while loading and processing.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMaxFileSize limits the number of bytes Read and ReadFile accept.
// Set limit to 0 to disable the limit.
func WithMaxFileSize(limit uint64) Option {
	return func(o *options) {
		o.maxFileSize = limit
	}
}

// WithMaxDecompressedSize limits the inflated size of one compressed record.
// Set limit to 0 to disable the limit.
func WithMaxDecompressedSize(limit uint64) Option {
	return func(o *options) {
		o.resolverOpts = append(o.resolverOpts, ResolverWithMaxDecompressedSize(limit))
	}
}

// WithCompressionLevel sets the zlib level used to re-compress resolved
// records flagged as compressed.
func WithCompressionLevel(level int) Option {
	return func(o *options) {
		o.resolverOpts = append(o.resolverOpts, ResolverWithCompressionLevel(level))
	}
}
