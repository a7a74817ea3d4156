package geometry

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-proj/v10"
)

// Projector reprojects coordinates between two coordinate reference
// systems. Area and overlap computations require an area-preserving planar
// frame, so snapshots are reprojected once at load time.
//
// A Projector is not safe for concurrent use; each snapshot load creates
// its own.
type Projector struct {
	pj *proj.PJ
}

// NewProjector creates a transformation from sourceCRS to targetCRS
// (e.g. "EPSG:4326" to "EPSG:3347"). If the two are equal it returns a
// no-op projector.
func NewProjector(sourceCRS, targetCRS string) (*Projector, error) {
	if sourceCRS == targetCRS {
		return &Projector{}, nil
	}
	pj, err := proj.NewCRSToCRS(sourceCRS, targetCRS, nil)
	if err != nil {
		return nil, fmt.Errorf("creating %s -> %s transformation: %w", sourceCRS, targetCRS, err)
	}
	return &Projector{pj: pj}, nil
}

// Transform reprojects a single coordinate.
func (p *Projector) Transform(x, y float64) (float64, float64, error) {
	if p.pj == nil {
		return x, y, nil
	}
	out, err := p.pj.Forward(proj.Coord{x, y, 0, 0})
	if err != nil {
		return 0, 0, fmt.Errorf("projecting (%f, %f): %w", x, y, err)
	}
	return out.X(), out.Y(), nil
}

// TransformGeometry reprojects every coordinate of an orb geometry in
// place. Only polygonal types appear in snapshot layers.
func (p *Projector) TransformGeometry(g orb.Geometry) error {
	if p.pj == nil {
		return nil
	}
	switch geom := g.(type) {
	case orb.Polygon:
		return p.transformPolygon(geom)
	case orb.MultiPolygon:
		for _, poly := range geom {
			if err := p.transformPolygon(poly); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported geometry type %T", g)
	}
}

func (p *Projector) transformPolygon(poly orb.Polygon) error {
	for _, ring := range poly {
		for i, pt := range ring {
			x, y, err := p.Transform(pt[0], pt[1])
			if err != nil {
				return err
			}
			ring[i] = orb.Point{x, y}
		}
	}
	return nil
}
