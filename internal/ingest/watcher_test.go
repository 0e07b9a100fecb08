package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartWatcherRejectsEmptyRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	require.Error(t, err)
}

func TestStartWatcherInitialScan(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pendiente.txt"), []byte("factura"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true}, nil)
	require.NoError(t, err)

	select {
	case p := <-events:
		require.Equal(t, "pendiente.txt", filepath.Base(p))
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan emitted no events")
	}
}

func TestStartWatcherDebouncedBurst(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:    []string{root},
		Debounce: 2 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	const n = 100
	for i := 0; i < n; i++ {
		path := filepath.Join(root, fmt.Sprintf("factura-%03d.txt", i))
		require.NoError(t, os.WriteFile(path, []byte("factura"), 0o644))
	}

	seen := map[string]struct{}{}
	deadline := time.After(10 * time.Second)
	for len(seen) < n {
		select {
		case p, ok := <-events:
			require.True(t, ok, "event channel closed early")
			seen[filepath.Base(p)] = struct{}{}
		case <-deadline:
			t.Fatalf("saw %d of %d documents before timeout", len(seen), n)
		}
	}

	cancel()
	for range events {
	}
}

func TestStartWatcherIgnoresDisallowedExtensions(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}}, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notas.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "factura.txt"), []byte("factura"), 0o644))

	select {
	case p := <-events:
		require.Equal(t, "factura.txt", filepath.Base(p))
	case <-time.After(2 * time.Second):
		t.Fatal("allowed document was never emitted")
	}
}
