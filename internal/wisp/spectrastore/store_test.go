package spectrastore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/wispify/internal/timeutil"
	"github.com/banshee-data/wispify/internal/wisp/faults"
	"github.com/banshee-data/wispify/internal/wisp/spectral"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "spectra.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testLibrary(t *testing.T) *spectral.Library {
	t.Helper()
	amps := []spectral.Spectrum{
		{{0, 1, 0.5}, {0, 0.25, 0.125}},
		{{0, 2, 1}, {0, 0.5, 0.25}},
	}
	phases := []spectral.Spectrum{
		{{0, 0.1, -0.2}, {0, 3.1, 1.5}},
	}
	lib, err := spectral.NewLibrary(amps, phases)
	require.NoError(t, err)
	return lib
}

func TestOpenAppliesMigrations(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "spectra.db")

	s, err := Open(path)
	require.NoError(t, err)
	version, dirty, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
	require.NoError(t, s.Close())

	// Reopening an up-to-date store is a no-op.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	version, _, err = s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()
	lib := testLibrary(t)
	stamp := time.Date(2024, 5, 6, 7, 8, 9, 10, time.UTC)
	s.Clock = timeutil.NewMockClock(stamp)

	saved, err := s.SaveCollection(ctx, "straight-hair", spectral.Planar, lib)
	require.NoError(t, err)
	assert.Equal(t, stamp, saved.CreatedAt)
	assert.Equal(t, 2, saved.Amplitudes)
	assert.Equal(t, 1, saved.Phases)

	got, c, err := s.LoadCollection(ctx, "straight-hair")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, c.ID)
	assert.Equal(t, spectral.Planar, c.Mode)
	assert.Equal(t, 2, c.Amplitudes)
	assert.Equal(t, 1, c.Phases)
	assert.Equal(t, stamp, c.CreatedAt)

	if diff := cmp.Diff(lib.Amplitudes, got.Amplitudes); diff != "" {
		t.Errorf("amplitudes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(lib.Phases, got.Phases); diff != "" {
		t.Errorf("phases mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveRejects(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()
	lib := testLibrary(t)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := s.SaveCollection(ctx, "dup", spectral.Planar, lib)
		require.NoError(t, err)
		_, err = s.SaveCollection(ctx, "dup", spectral.Planar, lib)
		assert.ErrorIs(t, err, ErrExists)
	})
	t.Run("axes disagree with mode", func(t *testing.T) {
		_, err := s.SaveCollection(ctx, "volumetric", spectral.Volumetric, lib)
		assert.ErrorIs(t, err, faults.ErrShapeMismatch)
	})
	t.Run("empty name", func(t *testing.T) {
		_, err := s.SaveCollection(ctx, "", spectral.Planar, lib)
		assert.Error(t, err)
	})
	t.Run("nil library", func(t *testing.T) {
		_, err := s.SaveCollection(ctx, "nil", spectral.Planar, nil)
		assert.Error(t, err)
	})
	t.Run("bad mode", func(t *testing.T) {
		_, err := s.SaveCollection(ctx, "mode", spectral.Mode(4), lib)
		assert.Error(t, err)
	})
}

func TestListAndDelete(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()
	lib := testLibrary(t)

	list, err := s.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, name := range []string{"wavy", "curly"} {
		_, err := s.SaveCollection(ctx, name, spectral.Planar, lib)
		require.NoError(t, err)
	}

	list, err = s.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "curly", list[0].Name)
	assert.Equal(t, "wavy", list[1].Name)
	assert.Equal(t, 2, list[0].Amplitudes)
	assert.Equal(t, 1, list[0].Phases)
	assert.NotEqual(t, list[0].ID, list[1].ID)

	require.NoError(t, s.DeleteCollection(ctx, "curly"))
	_, _, err = s.LoadCollection(ctx, "curly")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteCollection(ctx, "curly"), ErrNotFound)

	list, err = s.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "wavy", list[0].Name)

	// The name is free again after deletion.
	_, err = s.SaveCollection(ctx, "curly", spectral.Planar, lib)
	assert.NoError(t, err)
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	_, _, err := s.LoadCollection(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}
