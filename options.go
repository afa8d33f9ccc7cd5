package gaffer

import "go.uber.org/zap"

// defaultMaxDepth bounds a resolution chain that keeps descending without
// revisiting an identifier (which would be caught as a cycle instead).
const defaultMaxDepth = 100

// Option configures a container at construction time.
type Option interface {
	apply(*containerOptions)
}

// containerOptions holds container configuration.
type containerOptions struct {
	logger        *zap.Logger
	excludedTypes []string
	maxDepth      int
}

// optionFunc adapts a function to Option.
type optionFunc func(*containerOptions)

func (f optionFunc) apply(opts *containerOptions) {
	f(opts)
}

// WithLogger sets the structured logger used for deprecation notices and
// resolution events. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(opts *containerOptions) {
		opts.logger = logger
	})
}

// WithExcludedTypes marks type names that are skipped silently when building
// the type index from a definition's declared types. The concrete identifiers
// remain directly gettable.
func WithExcludedTypes(types ...string) Option {
	return optionFunc(func(opts *containerOptions) {
		opts.excludedTypes = append(opts.excludedTypes, types...)
	})
}

// WithMaxDepth overrides the resolution depth limit.
func WithMaxDepth(depth int) Option {
	return optionFunc(func(opts *containerOptions) {
		opts.maxDepth = depth
	})
}

func defaultOptions() *containerOptions {
	return &containerOptions{
		logger:   zap.NewNop(),
		maxDepth: defaultMaxDepth,
	}
}
