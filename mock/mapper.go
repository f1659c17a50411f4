package mock

import (
	"context"

	"github.com/webmark/webmark"
)

var _ webmark.Mapper = (*Mapper)(nil)

// Mapper is a mock implementation of webmark.Mapper.
type Mapper struct {
	MapFn func(ctx context.Context, seeds []string, opts webmark.MapOptions) <-chan webmark.MapEvent
}

func (m *Mapper) Map(ctx context.Context, seeds []string, opts webmark.MapOptions) <-chan webmark.MapEvent {
	return m.MapFn(ctx, seeds, opts)
}
