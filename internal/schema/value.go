package schema

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Value is the typed runtime value of a field as read from a data object.
// It is a closed set; the validation engine switches over every variant.
type Value interface {
	isValue()
}

// Null is the unset variant of any optional field.
type Null struct{}

type String string

type Bool bool

// Int carries every integer column. int64 is strictly wider than int2 and int4, so
// narrowing overflow is always observable before binding.
type Int int64

type Float float64

type Bytes []byte

type Time struct {
	*timestamppb.Timestamp
}

type Point GeoPointZ

type LineString GeoLineStringZ

type Polygon GeoPolygonZ

type StringList []string

type IntList []int64

func (Null) isValue()       {}
func (String) isValue()     {}
func (Bool) isValue()       {}
func (Int) isValue()        {}
func (Float) isValue()      {}
func (Bytes) isValue()      {}
func (Time) isValue()       {}
func (Point) isValue()      {}
func (LineString) isValue() {}
func (Polygon) isValue()    {}
func (StringList) isValue() {}
func (IntList) isValue()    {}

// IsNull reports whether v is the unset variant.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

func OptString(s *string) Value {
	if s == nil {
		return Null{}
	}
	return String(*s)
}

func OptBool(b *bool) Value {
	if b == nil {
		return Null{}
	}
	return Bool(*b)
}

func OptInt(i *int64) Value {
	if i == nil {
		return Null{}
	}
	return Int(*i)
}

func OptInt32(i *int32) Value {
	if i == nil {
		return Null{}
	}
	return Int(*i)
}

func OptFloat(f *float64) Value {
	if f == nil {
		return Null{}
	}
	return Float(*f)
}

func OptTime(ts *timestamppb.Timestamp) Value {
	if ts == nil {
		return Null{}
	}
	return Time{ts}
}

func OptPoint(p *GeoPointZ) Value {
	if p == nil {
		return Null{}
	}
	return Point(*p)
}

func OptLineString(l *GeoLineStringZ) Value {
	if l == nil {
		return Null{}
	}
	return LineString(*l)
}

func OptPolygon(p *GeoPolygonZ) Value {
	if p == nil {
		return Null{}
	}
	return Polygon(*p)
}

func OptBytes(b []byte) Value {
	if b == nil {
		return Null{}
	}
	return Bytes(b)
}
