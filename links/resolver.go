// Package links resolves symbolic references found in metadata to vault
// documents.
package links

import (
	"strings"

	"go.uber.org/zap"

	"booknav/vault"
)

// Lookup finds the best document for link text relative to the referencing
// document.
type Lookup interface {
	FirstLinkTarget(link, source string) (*vault.Document, bool)
}

// Resolver never fails: anything it cannot resolve is absent.
type Resolver struct {
	lookup Lookup
	log    *zap.Logger
}

func NewResolver(lookup Lookup, log *zap.Logger) *Resolver {
	return &Resolver{lookup: lookup, log: log}
}

// Resolve returns document reference points to. Optional [[ ]] decoration is
// stripped before lookup.
func (r *Resolver) Resolve(ref, source string) (*vault.Document, bool) {
	if r == nil || r.lookup == nil {
		return nil, false
	}
	link := Strip(ref)
	if len(link) == 0 {
		return nil, false
	}
	doc, ok := r.lookup.FirstLinkTarget(link, source)
	if !ok || doc == nil {
		r.log.Debug("Unresolved reference", zap.String("ref", ref), zap.String("source", source))
		return nil, false
	}
	return doc, true
}

// Strip removes surrounding whitespace and [[ ]] decoration.
func Strip(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "[[") && strings.HasSuffix(ref, "]]") {
		ref = strings.TrimSpace(ref[2 : len(ref)-2])
	}
	return ref
}
