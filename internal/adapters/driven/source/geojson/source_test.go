package geojson

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhgis/arealink/internal/core/domain"
)

// planarOptions skips reprojection so tests run on plain planar
// coordinates without PROJ resource files.
func planarOptions() Options {
	return Options{SourceCRS: "EPSG:3347", TargetCRS: "EPSG:3347"}
}

func writeSnapshot(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.geojson")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

const twoSquares = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"id": "u2", "name": "Malvern", "parent": "York"},
			"geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}
		},
		{
			"type": "Feature",
			"properties": {"id": "u1", "name": "Scarboro", "parent": "York"},
			"geometry": {"type": "Polygon", "coordinates": [[[20,0],[30,0],[30,10],[20,10],[20,0]]]}
		}
	]
}`

func TestSource_Load(t *testing.T) {
	path := writeSnapshot(t, twoSquares)
	src := New(planarOptions())

	snap, err := src.Load(context.Background(), domain.SnapshotRef{Year: 1901, Path: path})

	require.NoError(t, err)
	assert.Equal(t, 1901, snap.Year)
	require.Len(t, snap.Units, 2)

	u := snap.Units[0]
	assert.Equal(t, "u2", u.ID)
	assert.Equal(t, "Malvern", u.Name)
	assert.Equal(t, "York", u.ParentName)
	assert.InDelta(t, 100.0, u.Area, 1e-9)
	assert.Equal(t, 0.0, u.Bounds.MinX)
	assert.Equal(t, 10.0, u.Bounds.MaxX)
	assert.Zero(t, snap.Repaired)
	assert.Zero(t, snap.DroppedInvalid)
}

func TestSource_Load_MissingFile(t *testing.T) {
	src := New(planarOptions())

	_, err := src.Load(context.Background(), domain.SnapshotRef{Year: 1901, Path: "/nonexistent/snapshot.geojson"})

	assert.ErrorIs(t, err, domain.ErrSnapshotMissing)
}

func TestSource_Load_DuplicateIdentifier(t *testing.T) {
	path := writeSnapshot(t, `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"id": "u1", "name": "A", "parent": "P"},
			 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
			{"type": "Feature", "properties": {"id": "u1", "name": "B", "parent": "P"},
			 "geometry": {"type": "Polygon", "coordinates": [[[2,0],[3,0],[3,1],[2,1],[2,0]]]}}
		]
	}`)
	src := New(planarOptions())

	_, err := src.Load(context.Background(), domain.SnapshotRef{Year: 1901, Path: path})

	assert.ErrorIs(t, err, domain.ErrDuplicateIdentifier)
}

func TestSource_Load_RepairsInvalidGeometry(t *testing.T) {
	// Self-intersecting bowtie ring.
	path := writeSnapshot(t, `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"id": "u1", "name": "Bowtie", "parent": "P"},
			 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,10],[10,0],[0,10],[0,0]]]}}
		]
	}`)
	src := New(planarOptions())

	snap, err := src.Load(context.Background(), domain.SnapshotRef{Year: 1901, Path: path})

	require.NoError(t, err)
	assert.Equal(t, 1, snap.Repaired)
	require.Len(t, snap.Units, 1)
	assert.Greater(t, snap.Units[0].Area, 0.0)
}

func TestSource_Load_DropsZeroArea(t *testing.T) {
	path := writeSnapshot(t, `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature", "properties": {"id": "u1", "name": "Sliver", "parent": "P"},
			 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[5,0],[5,0],[0,0]]]}}
		]
	}`)
	src := New(planarOptions())

	snap, err := src.Load(context.Background(), domain.SnapshotRef{Year: 1901, Path: path})

	require.NoError(t, err)
	assert.Empty(t, snap.Units)
	// Degenerate rings are dropped either as zero-area or as unrepairable,
	// depending on what the repair step makes of them; never loaded.
	assert.Equal(t, 1, snap.DroppedZeroArea+snap.DroppedInvalid)
}

func TestSource_Load_CustomPropertyKeys(t *testing.T) {
	path := writeSnapshot(t, `{
		"type": "FeatureCollection",
		"features": [
			{"type": "Feature",
			 "properties": {"tcpuid": "ON039001", "csd_name": "Malvern", "cd_name": "York"},
			 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}}
		]
	}`)
	opts := planarOptions()
	opts.IDProperty = "tcpuid"
	opts.NameProperty = "csd_name"
	opts.ParentProperty = "cd_name"
	src := New(opts)

	snap, err := src.Load(context.Background(), domain.SnapshotRef{Year: 1901, Path: path})

	require.NoError(t, err)
	require.Len(t, snap.Units, 1)
	assert.Equal(t, "ON039001", snap.Units[0].ID)
	assert.Equal(t, "Malvern", snap.Units[0].Name)
	assert.Equal(t, "York", snap.Units[0].ParentName)
}
