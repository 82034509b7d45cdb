package vault

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Catalog reloads documents from the source on demand and keeps the last
// successfully loaded vault for link lookups.
type Catalog struct {
	src Source
	ext string
	log *zap.Logger

	mu   sync.RWMutex
	last *Vault
}

// NewCatalog creates catalog over source. defaultExt is used to resolve
// links without extension.
func NewCatalog(src Source, defaultExt string, log *zap.Logger) *Catalog {
	return &Catalog{src: src, ext: defaultExt, log: log}
}

// Source returns underlying document source.
func (c *Catalog) Source() Source {
	return c.src
}

// Documents enumerates all documents. On failure previously loaded vault
// stays in effect.
func (c *Catalog) Documents(ctx context.Context) ([]*Document, error) {
	docs, err := c.src.Load(ctx)
	if err != nil {
		return nil, err
	}
	v := New(docs, c.ext)

	c.mu.Lock()
	c.last = v
	c.mu.Unlock()

	c.log.Debug("Vault loaded", zap.Stringer("source", c.src.Kind()), zap.String("location", c.src.Location()), zap.Int("documents", v.Len()))
	return v.Documents(), nil
}

// Vault returns last loaded vault, nil if none was loaded yet.
func (c *Catalog) Vault() *Vault {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// FirstLinkTarget looks link up in the last loaded vault.
func (c *Catalog) FirstLinkTarget(link, source string) (*Document, bool) {
	return c.Vault().FirstLinkTarget(link, source)
}
