// Package cache stores computed documents, layouts and rendered artifacts.
//
// # Backends
//
// [Cache] is a small byte-oriented key/value interface with per-entry TTLs.
// Three implementations are provided:
//
//   - [FileCache]: one JSON file per entry, used by the CLI
//   - [RedisCache]: shared cache for the HTTP service
//   - [NullCache]: never stores anything (caching disabled)
//
// # Keys
//
// A [Keyer] derives cache keys from content hashes and the options that
// affect the cached value, so a changed document or configuration never
// hits a stale entry:
//
//	k := cache.NewDefaultKeyer()
//	docKey := k.DocumentKey(sourceName)
//	layoutKey := k.LayoutKey(cache.Hash(docJSON), cache.LayoutKeyOpts{Preset: "large"})
//
// [ScopedKeyer] prefixes every key, for example with a workspace id.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry type.
const (
	TTLHTTP     = 5 * time.Minute
	TTLDocument = time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a key/value store for serialized pipeline results.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is a miss
	// (hit false, nil error).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	HTTPKey(namespace, key string) string
	DocumentKey(source string) string
	LayoutKey(documentHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs besides the document that change a layout.
type LayoutKeyOpts struct {
	Preset     string `json:"preset"`
	ConfigHash string `json:"config_hash,omitempty"`
	Measured   bool   `json:"measured"`
}

// ArtifactKeyOpts are the inputs besides the layout that change a rendered
// artifact.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Scale     float64 `json:"scale,omitempty"`
	Minimap   float64 `json:"minimap,omitempty"`
	NotesHash string  `json:"notes_hash,omitempty"`
	Static    bool    `json:"static,omitempty"`
}

// DefaultKeyer builds keys of the form "<type>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns the key for a cached HTTP response.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// DocumentKey returns the key for a loaded document, by source name.
func (DefaultKeyer) DocumentKey(source string) string {
	return hashKey("document", source)
}

// LayoutKey returns the key for a computed geometry.
func (DefaultKeyer) LayoutKey(documentHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", documentHash, opts)
}

// ArtifactKey returns the key for a rendered output.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
