package ports

import "context"

// Query names under which the stores cache server state.
const (
	QueryCurrentUser = "auth/me"
)

// FetchFunc produces a fresh value for a cache key from the upstream source.
type FetchFunc func(ctx context.Context) (any, error)

// QueryCache is the read-through cache the stores synchronize against.
//
// Invalidation is the correctness mechanism of this core: after every
// confirmed server mutation the relevant key is invalidated and the next read
// re-derives the value from the server, rather than patching the cached value
// locally. Implementations must guarantee:
//
//   - Fetch coalesces concurrent fetches of one key into a single upstream call.
//   - A value fetched before an Invalidate of the same key is never stored
//     after it (last write wins; the stale result is discarded).
//   - Peek never triggers a fetch and never observes a partially-written value.
type QueryCache interface {
	Fetch(ctx context.Context, key string, fn FetchFunc) (any, error)
	Peek(key string) (any, bool)
	Set(key string, value any)
	Invalidate(key string)
}
