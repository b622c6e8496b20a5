package api

// GeoPointZ is a 3D point in degrees and meters.
type GeoPointZ struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Altitude  float64 `json:"altitude"`
}

type GeoLineStringZ struct {
	Points []GeoPointZ `json:"points"`
}

// GeoPolygonZ is a list of closed rings; the first is the exterior.
type GeoPolygonZ struct {
	Rings []GeoLineStringZ `json:"rings"`
}
