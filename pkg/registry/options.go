package registry

import "go.uber.org/zap"

// CatalogOption for the catalog
type CatalogOption func(*Catalog)

// WithTypes sets the registry of repository types
func WithTypes(types *Types) CatalogOption {
	return func(c *Catalog) {
		if types != nil {
			c.types = types
		}
	}
}

// WithLogger sets a logger
func WithLogger(l *zap.Logger) CatalogOption {
	return func(c *Catalog) {
		if l != nil {
			c.l = l
		}
	}
}
