// Package shapefile computes search extents from shapefiles and keeps shapefile folders tidy.
package shapefile

import (
	"errors"
	"fmt"

	"github.com/jonas-p/go-shp"

	"github.com/Gismakerr/DaChuang/models"
)

// ErrNoFeatures is returned when a shapefile holds no non-null geometry.
var ErrNoFeatures = errors.New("shapefile has no features")

// Bounds returns the union extent of every feature in the shapefile at path.
func Bounds(path string) (models.BBox, error) {
	if err := checkHeader(path); err != nil {
		return models.BBox{}, fmt.Errorf("invalid shapefile %s: %w", path, err)
	}
	r, err := shp.Open(path)
	if err != nil {
		return models.BBox{}, fmt.Errorf("failed to open shapefile %s: %w", path, err)
	}
	defer r.Close()

	var box models.BBox
	found := false
	for r.Next() {
		_, shape := r.Shape()
		if isNull(shape) {
			continue
		}
		b := toBBox(shape.BBox())
		if !found {
			box = b
			found = true
			continue
		}
		box.Extend(b)
	}
	if err := r.Err(); err != nil {
		return models.BBox{}, fmt.Errorf("failed to read shapefile %s: %w", path, err)
	}
	if !found {
		return models.BBox{}, fmt.Errorf("%s: %w", path, ErrNoFeatures)
	}
	return box, nil
}

func isNull(s shp.Shape) bool {
	if s == nil {
		return true
	}
	_, null := s.(*shp.Null)
	return null
}

func toBBox(b shp.Box) models.BBox {
	return models.BBox{MinX: b.MinX, MinY: b.MinY, MaxX: b.MaxX, MaxY: b.MaxY}
}
