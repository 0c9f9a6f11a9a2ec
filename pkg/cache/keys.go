package cache

// ArtifactKeyOpts are the render options that change an artifact's bytes.
type ArtifactKeyOpts struct {
	Family    string `json:"family"`
	Format    string `json:"format"`
	Highlight string `json:"highlight"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey names the artifact rendered from the input with the given
	// content hash.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes its inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}

// ScopedKeyer prefixes every key of an inner keyer, so several deployments
// can share one Redis or MongoDB instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with prefix. A nil inner means the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ArtifactKey returns the prefixed inner key.
func (k *ScopedKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(inputHash, opts)
}
