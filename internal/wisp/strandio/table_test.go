package strandio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/wispify/internal/fsutil"
	"github.com/banshee-data/wispify/internal/wisp/clump"
)

func TestTableRoundTrip(t *testing.T) {
	t.Parallel()

	table := clump.Table{{0, 4, 7}, nil, {2}, {1, 3, 5, 6}}
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, WriteTable(mfs, "/g.csv", table))

	data, err := mfs.ReadFile("/g.csv")
	require.NoError(t, err)
	assert.Equal(t, "0,4,7\n\n2\n1,3,5,6\n", string(data))

	got, err := ReadTable(mfs, "/g.csv")
	require.NoError(t, err)
	assert.Equal(t, table, got)
}

func TestReadTableCRLFAndSpaces(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/g.csv", []byte("3, 4\r\n\r\n5\r\n"), 0o644))

	got, err := ReadTable(mfs, "/g.csv")
	require.NoError(t, err)
	assert.Equal(t, clump.Table{{3, 4}, nil, {5}}, got)
}

func TestReadTableErrors(t *testing.T) {
	t.Parallel()

	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/bad.csv", []byte("1,2\n3,x\n"), 0o644))
	_, err := ReadTable(mfs, "/bad.csv")
	assert.ErrorContains(t, err, "bad.csv:2")

	require.NoError(t, mfs.WriteFile("/neg.csv", []byte("-1\n"), 0o644))
	_, err = ReadTable(mfs, "/neg.csv")
	assert.ErrorContains(t, err, "negative")

	_, err = ReadTable(mfs, "/missing.csv")
	assert.Error(t, err)
}

func TestGroupingsName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "guides-scalp-groupings.csv", GroupingsName("/data/guides.obj", "scalp.obj", ""))
	assert.Equal(t, "g-roots-groupings_v2.csv", GroupingsName("g.tar.obj", "/x/roots", "_v2"))
}
