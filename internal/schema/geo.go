package schema

import (
	"github.com/nrjais/aerostore/pkg/api"
	"github.com/pkg/errors"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

// SRID used for every geometry column (WGS 84).
const SRID = 4326

type (
	GeoPointZ      = api.GeoPointZ
	GeoLineStringZ = api.GeoLineStringZ
	GeoPolygonZ    = api.GeoPolygonZ
)

func pointCoord(p GeoPointZ) geom.Coord {
	return geom.Coord{p.Longitude, p.Latitude, p.Altitude}
}

func pointFromCoord(c geom.Coord) GeoPointZ {
	p := GeoPointZ{Longitude: c.X(), Latitude: c.Y()}
	if len(c) > 2 {
		p.Altitude = c[2]
	}
	return p
}

func lineCoords(l GeoLineStringZ) []geom.Coord {
	coords := make([]geom.Coord, 0, len(l.Points))
	for _, p := range l.Points {
		coords = append(coords, pointCoord(p))
	}
	return coords
}

func lineFromCoords(coords []geom.Coord) GeoLineStringZ {
	l := GeoLineStringZ{Points: make([]GeoPointZ, 0, len(coords))}
	for _, c := range coords {
		l.Points = append(l.Points, pointFromCoord(c))
	}
	return l
}

// EncodeEWKB converts a geometry value into the EWKB bytes bound to ST_GeomFromEWKB.
func EncodeEWKB(v Value) ([]byte, error) {
	var g geom.T
	switch t := v.(type) {
	case Point:
		g = geom.NewPointFlat(geom.XYZ, pointCoord(GeoPointZ(t))).SetSRID(SRID)
	case LineString:
		ls, err := geom.NewLineString(geom.XYZ).SetCoords(lineCoords(GeoLineStringZ(t)))
		if err != nil {
			return nil, errors.Wrap(err, "failed to build line string")
		}
		g = ls.SetSRID(SRID)
	case Polygon:
		rings := make([][]geom.Coord, 0, len(t.Rings))
		for _, ring := range t.Rings {
			rings = append(rings, lineCoords(ring))
		}
		poly, err := geom.NewPolygon(geom.XYZ).SetCoords(rings)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build polygon")
		}
		g = poly.SetSRID(SRID)
	default:
		return nil, errors.Errorf("value %T is not a geometry", v)
	}

	b, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode EWKB")
	}
	return b, nil
}

func decodeEWKB(b []byte) (geom.T, error) {
	g, err := ewkb.Unmarshal(b)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode EWKB")
	}
	return g, nil
}

// DecodePointZ decodes EWKB produced by ST_AsEWKB into a point.
func DecodePointZ(b []byte) (GeoPointZ, error) {
	g, err := decodeEWKB(b)
	if err != nil {
		return GeoPointZ{}, err
	}
	p, ok := g.(*geom.Point)
	if !ok {
		return GeoPointZ{}, errors.Errorf("expected point geometry, got %T", g)
	}
	return pointFromCoord(p.Coords()), nil
}

func DecodeLineStringZ(b []byte) (GeoLineStringZ, error) {
	g, err := decodeEWKB(b)
	if err != nil {
		return GeoLineStringZ{}, err
	}
	ls, ok := g.(*geom.LineString)
	if !ok {
		return GeoLineStringZ{}, errors.Errorf("expected line string geometry, got %T", g)
	}
	return lineFromCoords(ls.Coords()), nil
}

func DecodePolygonZ(b []byte) (GeoPolygonZ, error) {
	g, err := decodeEWKB(b)
	if err != nil {
		return GeoPolygonZ{}, err
	}
	poly, ok := g.(*geom.Polygon)
	if !ok {
		return GeoPolygonZ{}, errors.Errorf("expected polygon geometry, got %T", g)
	}
	out := GeoPolygonZ{}
	for _, ring := range poly.Coords() {
		out.Rings = append(out.Rings, lineFromCoords(ring))
	}
	return out, nil
}
