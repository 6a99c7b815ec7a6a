// Package pageid defines the opaque page identifier and the content-addressed
// generators that produce it. Generators must be deterministic: the same
// content always yields the same ID.
package pageid

import "context"

// ID is an opaque, immutable page identifier. IDs are comparable and can be
// used as map keys.
type ID string

// String returns the identifier text.
func (id ID) String() string { return string(id) }

// Short returns the first n characters of the identifier, or the whole
// identifier when it is shorter than n.
func (id ID) Short(n int) string {
	if n < 0 || len(id) <= n {
		return string(id)
	}
	return string(id[:n])
}

// Generator maps page content to an ID.
type Generator interface {
	Generate(ctx context.Context, content []byte) (ID, error)
}

// GeneratorFunc adapts an ordinary function to the Generator interface.
type GeneratorFunc func(ctx context.Context, content []byte) (ID, error)

// Generate calls f(ctx, content).
func (f GeneratorFunc) Generate(ctx context.Context, content []byte) (ID, error) {
	return f(ctx, content)
}
