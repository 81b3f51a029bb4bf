package dedupe

// Option applies a configuration option to the Merger.
type Option func(*Merger)

// WithMaxSize caps the merged result. Zero or negative means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(m *Merger) {
		m.maxSize = maxSize
	}
}
