// Package geojson provides a snapshot source reading per-snapshot GeoJSON
// FeatureCollections. Features are reprojected to the shared planar frame,
// validity-repaired and validated before they become unit instances.
package geojson

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	orbgeojson "github.com/paulmach/orb/geojson"

	"github.com/openhgis/arealink/internal/core/domain"
	"github.com/openhgis/arealink/internal/core/ports/driven"
	"github.com/openhgis/arealink/internal/geometry"
	"github.com/openhgis/arealink/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.SnapshotSource = (*Source)(nil)

// Options configure how snapshot layers are read.
type Options struct {
	// SourceCRS is the declared coordinate reference of the input
	// geometries. Defaults to EPSG:4326 (GeoJSON's native frame).
	SourceCRS string

	// TargetCRS is the shared planar frame all snapshots are reprojected
	// into before any area computation. Defaults to EPSG:3347.
	TargetCRS string

	// IDProperty, NameProperty and ParentProperty name the feature
	// properties carrying the stable identifier, unit name and
	// parent-division name. Defaults: "id", "name", "parent".
	IDProperty     string
	NameProperty   string
	ParentProperty string
}

func (o *Options) applyDefaults() {
	if o.SourceCRS == "" {
		o.SourceCRS = "EPSG:4326"
	}
	if o.TargetCRS == "" {
		o.TargetCRS = "EPSG:3347"
	}
	if o.IDProperty == "" {
		o.IDProperty = "id"
	}
	if o.NameProperty == "" {
		o.NameProperty = "name"
	}
	if o.ParentProperty == "" {
		o.ParentProperty = "parent"
	}
}

// Source loads snapshots from GeoJSON files.
type Source struct {
	opts Options
}

// New creates a GeoJSON snapshot source.
func New(opts Options) *Source {
	opts.applyDefaults()
	return &Source{opts: opts}
}

// Load reads the snapshot at ref.Path, reprojects every feature into the
// target frame, repairs invalid geometry (counted and logged) and drops
// zero-area features with a warning. Two features sharing an identifier
// abort the load: the source data is ambiguous and not recoverable here.
func (s *Source) Load(ctx context.Context, ref domain.SnapshotRef) (*domain.Snapshot, error) {
	data, err := os.ReadFile(ref.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSnapshotMissing, ref.Path)
		}
		return nil, fmt.Errorf("reading snapshot %d: %w", ref.Year, err)
	}

	fc, err := orbgeojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot %d: %w", ref.Year, err)
	}

	projector, err := geometry.NewProjector(s.opts.SourceCRS, s.opts.TargetCRS)
	if err != nil {
		return nil, err
	}
	geomCtx := geometry.NewContext()

	snapshot := &domain.Snapshot{Year: ref.Year}
	seen := make(map[string]struct{}, len(fc.Features))

	for _, f := range fc.Features {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := stringProp(f.Properties, s.opts.IDProperty)
		if id == "" {
			logger.Warn("snapshot %d: feature without %q property dropped", ref.Year, s.opts.IDProperty)
			snapshot.DroppedInvalid++
			continue
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %q in snapshot %d", domain.ErrDuplicateIdentifier, id, ref.Year)
		}
		seen[id] = struct{}{}

		geom, err := s.buildGeometry(geomCtx, projector, f.Geometry)
		if err != nil {
			logger.Warn("snapshot %d: unit %s dropped: %v", ref.Year, id, err)
			snapshot.DroppedInvalid++
			continue
		}
		if !geom.IsValid() {
			repaired, err := geom.Repair()
			if err != nil {
				logger.Warn("snapshot %d: unit %s dropped, repair failed: %v", ref.Year, id, err)
				snapshot.DroppedInvalid++
				continue
			}
			geom = repaired
			snapshot.Repaired++
		}

		area := geom.Area()
		if area <= 0 {
			logger.Warn("snapshot %d: unit %s dropped, zero-area geometry", ref.Year, id)
			snapshot.DroppedZeroArea++
			continue
		}

		snapshot.Units = append(snapshot.Units, domain.UnitInstance{
			ID:         id,
			Name:       stringProp(f.Properties, s.opts.NameProperty),
			ParentName: stringProp(f.Properties, s.opts.ParentProperty),
			Geom:       geom,
			Area:       area,
			Bounds:     geom.Bounds(),
		})
	}

	if snapshot.Repaired > 0 {
		logger.Warn("snapshot %d: repaired %d invalid geometries", ref.Year, snapshot.Repaired)
	}
	logger.Info("snapshot %d: loaded %d units (%d repaired, %d invalid dropped, %d zero-area dropped)",
		ref.Year, len(snapshot.Units), snapshot.Repaired, snapshot.DroppedInvalid, snapshot.DroppedZeroArea)

	return snapshot, nil
}

// buildGeometry reprojects an orb geometry and bridges it into the GEOS
// engine via WKB.
func (s *Source) buildGeometry(geomCtx *geometry.Context, projector *geometry.Projector, g orb.Geometry) (*geometry.Geometry, error) {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return nil, fmt.Errorf("unsupported geometry type %T", g)
	}

	if err := projector.TransformGeometry(g); err != nil {
		return nil, fmt.Errorf("reprojecting: %w", err)
	}

	raw, err := wkb.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("encoding WKB: %w", err)
	}
	return geomCtx.FromWKB(raw)
}

// stringProp reads a string property, tolerating absent keys and non-string
// values.
func stringProp(props orbgeojson.Properties, key string) string {
	v, ok := props[key]
	if !ok {
		return ""
	}
	str, ok := v.(string)
	if !ok {
		return ""
	}
	return str
}
