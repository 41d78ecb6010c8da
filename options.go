package vfsearch

import "go.uber.org/zap"

// Option customizes an Index beyond its Config.
type Option func(*Index)

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(ix *Index) {
		if log != nil {
			ix.log = log
		}
	}
}

// WithOracle replaces the store-backed permission oracle. Use this to
// plug in an external ACL system.
func WithOracle(oracle PermissionOracle) Option {
	return func(ix *Index) {
		if oracle != nil {
			ix.oracle = oracle
		}
	}
}

// WithFactory registers a document factory for a resource type,
// replacing any previous binding. The plain-text factory for type
// "plain" is registered out of the box.
func WithFactory(resourceType string, f DocumentFactory) Option {
	return func(ix *Index) {
		ix.extraFactories[resourceType] = f
	}
}
