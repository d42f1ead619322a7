// Package observatory loads the fixed ground-station list from a YAML
// configuration file. The file maps an observatory name to a
// [latitude, longitude, elevation] triple:
//
//	kitt_peak: [31.9583, -111.5967, 2096]
//	palomar: [33.3563, -116.8650, 1712]
//
// The configuration is read exactly once, at catalog construction; a
// missing or malformed file is a fatal error because there is nothing to
// enumerate without observatories.
package observatory

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/star/skywatch/internal/transform"
)

// Observatory is a fixed ground position. Immutable after load.
type Observatory struct {
	Name      string
	Lat       float64 // degrees, north positive
	Lon       float64 // degrees, east positive
	Elevation float64 // meters above the WGS-84 ellipsoid

	pos transform.ObserverPosition
}

// Position returns the precomputed geodetic/ECEF observer position.
func (o Observatory) Position() transform.ObserverPosition {
	return o.pos
}

// FromCoordinates constructs an Observatory directly from coordinates,
// bypassing the config file. Coordinates are validated the same way.
func FromCoordinates(name string, lat, lon, elevation float64) (Observatory, error) {
	if lat < -90 || lat > 90 {
		return Observatory{}, fmt.Errorf("observatory %q: latitude %.4f out of range [-90, 90]", name, lat)
	}
	if lon < -180 || lon > 180 {
		return Observatory{}, fmt.Errorf("observatory %q: longitude %.4f out of range [-180, 180]", name, lon)
	}
	return Observatory{
		Name:      name,
		Lat:       lat,
		Lon:       lon,
		Elevation: elevation,
		pos:       transform.NewObserverPosition(lat, lon, elevation),
	}, nil
}

// Load reads the observatory configuration file at path.
// Entries are returned sorted by name so catalog iteration order is
// deterministic regardless of YAML map ordering.
func Load(path string) ([]Observatory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("observatory config: read %q: %w", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, path string) ([]Observatory, error) {
	var raw map[string][]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("observatory config: parse %q: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("observatory config: %q contains no observatories", path)
	}

	observatories := make([]Observatory, 0, len(raw))
	for name, coords := range raw {
		if len(coords) != 3 {
			return nil, fmt.Errorf("observatory config: %q: want [lat, long, elevation], got %d values", name, len(coords))
		}
		obs, err := FromCoordinates(name, coords[0], coords[1], coords[2])
		if err != nil {
			return nil, fmt.Errorf("observatory config: %w", err)
		}
		observatories = append(observatories, obs)
	}

	sort.Slice(observatories, func(i, j int) bool {
		return observatories[i].Name < observatories[j].Name
	})

	return observatories, nil
}
