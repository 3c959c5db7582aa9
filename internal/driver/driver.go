// Package driver loads declaration units from disk for the CLI and for
// batch consumers. Reads are concurrent; each unit decodes into its own
// arena, so loaded units are independent and safe to hand to any number
// of reader goroutines.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"declgraph/internal/decl"
	"declgraph/internal/wire"
)

// LoadUnit reads and decodes one wire file.
func LoadUnit(path string) (*decl.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	u, err := wire.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return u, nil
}

// LoadUnits decodes every path concurrently, at most jobs files in
// flight (jobs <= 0 means GOMAXPROCS). The first failure cancels the
// batch; on success the map holds one unit per path.
func LoadUnits(ctx context.Context, paths []string, jobs int) (map[string]*decl.Unit, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	var mu sync.Mutex
	units := make(map[string]*decl.Unit, len(paths))

	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			u, err := LoadUnit(path)
			if err != nil {
				return err
			}
			mu.Lock()
			units[path] = u
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return units, nil
}

// WriteUnit encodes the unit and writes it atomically: the bytes land in
// a temp file first, then rename into place, so a crashed run never
// leaves a torn file behind.
func WriteUnit(path string, u *decl.Unit) error {
	data, err := wire.Encode(u)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Verify checks that a unit's wire form survives a full round trip:
// decode, re-encode, decode again, then compare both units exactly and
// the two encodings byte for byte.
func Verify(data []byte) error {
	u1, err := wire.Decode(data)
	if err != nil {
		return err
	}
	enc, err := wire.Encode(u1)
	if err != nil {
		return err
	}
	u2, err := wire.Decode(enc)
	if err != nil {
		return fmt.Errorf("re-decode: %w", err)
	}
	enc2, err := wire.Encode(u2)
	if err != nil {
		return fmt.Errorf("re-encode: %w", err)
	}
	if string(enc) != string(enc2) {
		return fmt.Errorf("encoding is not byte-stable across a round trip")
	}
	if !unitsEqual(u1, u2) {
		return fmt.Errorf("round trip changed the declaration graph")
	}
	return nil
}
