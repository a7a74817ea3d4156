// Package geometry wraps the GEOS planar geometry engine for the linking
// pipeline: ingestion from WKB/WKT, validity repair, area and bounding-box
// queries, and pairwise intersection areas.
//
// GEOS reports failures (topology exceptions and the like) as panics in
// go-geos; this package converts them to errors at the boundary so callers
// can apply the repair-and-retry policy without crashing a run.
//
// A Context is not safe for concurrent use. Each snapshot-pair run creates
// its own Context, which keeps parallel runs fully isolated.
package geometry

import (
	"fmt"

	"github.com/twpayne/go-geos"
)

// Bounds is an axis-aligned bounding box in the planar frame.
type Bounds struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// Intersects reports whether two bounding boxes overlap.
func (b Bounds) Intersects(o Bounds) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

// Context owns GEOS state for one run.
type Context struct {
	gctx *geos.Context
}

// NewContext creates a fresh GEOS context.
func NewContext() *Context {
	return &Context{gctx: geos.NewContext()}
}

// Geometry is a planar polygon (or multipolygon) tied to a Context.
type Geometry struct {
	g *geos.Geom
}

// FromWKB parses a geometry from well-known binary.
func (c *Context) FromWKB(data []byte) (*Geometry, error) {
	g, err := c.gctx.NewGeomFromWKB(data)
	if err != nil {
		return nil, fmt.Errorf("parsing WKB: %w", err)
	}
	return &Geometry{g: g}, nil
}

// FromWKT parses a geometry from well-known text.
func (c *Context) FromWKT(wkt string) (*Geometry, error) {
	g, err := c.gctx.NewGeomFromWKT(wkt)
	if err != nil {
		return nil, fmt.Errorf("parsing WKT: %w", err)
	}
	return &Geometry{g: g}, nil
}

// IsValid reports whether the geometry is topologically valid.
func (g *Geometry) IsValid() bool {
	return g.g.IsValid()
}

// IsEmpty reports whether the geometry is empty.
func (g *Geometry) IsEmpty() bool {
	return g.g.IsEmpty()
}

// Area returns the planar area.
func (g *Geometry) Area() float64 {
	return g.g.Area()
}

// Bounds returns the axis-aligned bounding box.
func (g *Geometry) Bounds() Bounds {
	b := g.g.Bounds()
	return Bounds{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY}
}

// Repair returns a valid version of the geometry. MakeValid preserves the
// input's area where possible; the zero-width buffer fallback handles the
// self-intersections MakeValid occasionally refuses.
func (g *Geometry) Repair() (repaired *Geometry, err error) {
	defer recoverGeos(&err, "repair")

	fixed := g.g.MakeValid()
	if fixed == nil || fixed.IsEmpty() {
		fixed = g.g.Buffer(0, 8)
	}
	if fixed == nil || fixed.IsEmpty() {
		return nil, fmt.Errorf("repair produced empty geometry")
	}
	return &Geometry{g: fixed}, nil
}

// Intersects reports whether the two geometries share any point.
func (g *Geometry) Intersects(o *Geometry) (ok bool, err error) {
	defer recoverGeos(&err, "intersects")
	return g.g.Intersects(o.g), nil
}

// IntersectionArea returns the area of the intersection of two geometries.
func (g *Geometry) IntersectionArea(o *Geometry) (area float64, err error) {
	defer recoverGeos(&err, "intersection")

	inter := g.g.Intersection(o.g)
	if inter == nil || inter.IsEmpty() {
		return 0, nil
	}
	return inter.Area(), nil
}

// recoverGeos converts a GEOS panic into an error.
func recoverGeos(err *error, op string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("geos %s: %v", op, r)
	}
}
