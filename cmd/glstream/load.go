package main

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/glstream"
	"github.com/gogpu/glstream/archive"
	"github.com/gogpu/glstream/stream"
)

// loaded is one archive read from disk.
type loaded struct {
	path string
	wire stream.WireData
}

// loadArchives reads paths in parallel. Results keep argument order.
func loadArchives(ctx context.Context, paths []string) ([]loaded, error) {
	results := make([]loaded, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.GOMAXPROCS(0), max(len(paths), 1)))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			wire, err := archive.ReadFile(path)
			if err != nil {
				return err
			}
			results[i] = loaded{path: path, wire: wire}
			glstream.Logger().Info("loaded", "path", path,
				"commands", wire.Len(), "bytes", wire.Size())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
