package query

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// IDResolver resolves a set of matching ids for one search column
type IDResolver func(ctx context.Context) ([]uint, error)

// ResolveIDs runs the given resolvers concurrently and merges their results
// into one de-duplicated id set. Used by the broad free-text search path,
// where independent lookup-name matches run before the main query.
func ResolveIDs(ctx context.Context, resolvers ...IDResolver) ([]uint, error) {
	g, ctx := errgroup.WithContext(ctx)
	results := make([][]uint, len(resolvers))

	for i, resolve := range resolvers {
		i, resolve := i, resolve
		g.Go(func() error {
			ids, err := resolve(ctx)
			if err != nil {
				return err
			}
			results[i] = ids
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{})
	var merged []uint
	for _, ids := range results {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, id)
		}
	}
	return merged, nil
}
