package domain

import "github.com/openhgis/arealink/internal/geometry"

// UnitInstance is one administrative unit's polygon record in one time
// snapshot. Instances are created by the snapshot source and immutable
// afterwards; the geometry is already validity-repaired and reprojected to
// the shared planar frame.
type UnitInstance struct {
	// ID is the stable identifier, unique within the snapshot.
	ID string

	// Name is the unit's recorded name (possibly noisy).
	Name string

	// ParentName is the parent division's recorded name.
	ParentName string

	// Geom is the planar-projected geometry.
	Geom *geometry.Geometry

	// Area is the planar area, precomputed at load time.
	Area float64

	// Bounds is the geometry's bounding box, precomputed for index queries.
	Bounds geometry.Bounds
}

// Snapshot is the complete set of unit polygons recorded at one point in
// time, plus load-time bookkeeping for the run summary.
type Snapshot struct {
	// Year identifies the snapshot.
	Year int

	// Units are the validated unit instances.
	Units []UnitInstance

	// Repaired counts geometries fixed during load.
	Repaired int

	// DroppedInvalid counts features whose geometry could not be repaired.
	DroppedInvalid int

	// DroppedZeroArea counts features dropped for zero or negative area.
	DroppedZeroArea int
}

// SnapshotRef names one snapshot input: the year it represents and where
// its polygon layer lives.
type SnapshotRef struct {
	Year int
	Path string
}
