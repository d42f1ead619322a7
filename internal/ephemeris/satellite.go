// Package ephemeris wraps SGP4 propagation for observatory/object pairs:
// initializing the orbital model from a TLE entry, scanning a time window
// for rise/culminate/set events, and sampling sky positions over a grid.
//
// SGP4 library choice: github.com/joshuaferrara/go-satellite.
// Pure Go (no CGO), explicit TEME output, battle-tested since 2016.
//
// Note: Propagate() takes Satellite by value so SGP4 error codes are not
// visible to the caller. We detect propagation failures by checking output
// for NaN/Inf and unreasonable position magnitudes.
package ephemeris

import (
	"fmt"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/star/skywatch/internal/tle"
	"github.com/star/skywatch/internal/transform"
)

// Satellite is one tracked object: a named physical object plus the SGP4
// model initialized from a single epoch's element set.
type Satellite struct {
	Name    string
	NORADID int
	Epoch   time.Time

	model satellite.Satellite
}

// NewSatellite initializes the SGP4 model for a TLE entry.
// Returns an error if the TLE cannot be parsed or the model fails to initialize.
//
// Pre-validates TLE format before passing to the library, because go-satellite
// calls log.Fatal on malformed input (which would kill the process).
func NewSatellite(entry tle.TLEEntry) (*Satellite, error) {
	if err := validateTLELines(entry.Line1, entry.Line2); err != nil {
		return nil, fmt.Errorf("invalid TLE for NORAD %d: %w", entry.NORADID, err)
	}

	model := satellite.TLEToSat(entry.Line1, entry.Line2, satellite.GravityWGS84)
	if model.Error != 0 {
		return nil, fmt.Errorf("sgp4 init failed for NORAD %d: code=%d %s", entry.NORADID, model.Error, model.ErrorStr)
	}
	return &Satellite{
		Name:    entry.Name,
		NORADID: entry.NORADID,
		Epoch:   entry.Epoch,
		model:   model,
	}, nil
}

// validateTLELines performs basic format validation on TLE lines.
// This prevents passing garbage to go-satellite which calls log.Fatal on parse errors.
func validateTLELines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}

// PositionECEF propagates the satellite to t (second resolution) and returns
// its ECEF position using a precomputed GMST angle for that instant.
func (s *Satellite) PositionECEF(t time.Time, gmst float64) (transform.PositionECEF, error) {
	t = t.UTC()
	pos, vel := satellite.Propagate(s.model, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	ecef := transform.TEMEToECEFWithGMST(transform.PositionTEME{
		X: pos.X, Y: pos.Y, Z: pos.Z,
		VX: vel.X, VY: vel.Y, VZ: vel.Z,
	}, gmst)

	if !transform.ValidateECEF(ecef) {
		return transform.PositionECEF{}, fmt.Errorf("sgp4 propagation failed for NORAD %d at %s", s.NORADID, t.Format(time.RFC3339))
	}

	return ecef, nil
}
