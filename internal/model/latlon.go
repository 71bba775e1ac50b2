package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/willie68/go_mapview/pkg/extstrgutils"
)

// ErrInvalidCoordinate the coordinate text can't be used
var ErrInvalidCoordinate = errors.New("invalid latitude and longitude")

// LatLon a geographic coordinate in degrees
type LatLon struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

func (l LatLon) String() string {
	return fmt.Sprintf("%.5f, %.5f", l.Lat, l.Lon)
}

// Validate checks the ranges of latitude and longitude
func (l LatLon) Validate() error {
	if math.IsNaN(l.Lat) || math.IsInf(l.Lat, 0) || l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, l.Lat)
	}
	if math.IsNaN(l.Lon) || math.IsInf(l.Lon, 0) || l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, l.Lon)
	}
	return nil
}

// ParseLatLon parses "lat, lon". Values may also be separated by space or semicolon.
func ParseLatLon(text string) (LatLon, error) {
	lat, lon, ok := extstrgutils.SplitPair(text)
	if !ok {
		return LatLon{}, fmt.Errorf("%w: %q, expecting \"lat, lon\"", ErrInvalidCoordinate, text)
	}
	return ParseLatLonFields(lat, lon)
}

// ParseLatLonFields parses latitude and longitude given in separate fields
func ParseLatLonFields(lat, lon string) (LatLon, error) {
	var ll LatLon
	var err error
	ll.Lat, err = strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return LatLon{}, fmt.Errorf("%w: latitude %q", ErrInvalidCoordinate, lat)
	}
	ll.Lon, err = strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return LatLon{}, fmt.Errorf("%w: longitude %q", ErrInvalidCoordinate, lon)
	}
	if err := ll.Validate(); err != nil {
		return LatLon{}, err
	}
	return ll, nil
}
