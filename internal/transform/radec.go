package transform

import "math"

// EquatorialCoords holds a topocentric right ascension / declination pair.
type EquatorialCoords struct {
	RADeg  float64 // 0-360, measured eastward from the vernal equinox
	DecDeg float64 // -90 to +90
}

// ECEFToRADec computes topocentric right ascension and declination of a
// satellite as seen from an observer, both given in ECEF meters.
//
// The topocentric range vector is rotated back through GMST into the inertial
// (TEME) frame, where RA is the azimuthal angle from the X-axis and Dec the
// angle above the equatorial plane. TEME RA/Dec differs from J2000 by the
// accumulated precession (~arcminutes per decade), which is acceptable for
// pointing a transit observation.
func ECEFToRADec(obs ObserverPosition, satX, satY, satZ, gmst float64) EquatorialCoords {
	// Range vector in ECEF.
	rx := satX - obs.ECEFx
	ry := satY - obs.ECEFy
	rz := satZ - obs.ECEFz

	// Inverse R3(GMST) rotation: ECEF → TEME.
	cosG := math.Cos(gmst)
	sinG := math.Sin(gmst)
	xi := rx*cosG - ry*sinG
	yi := rx*sinG + ry*cosG
	zi := rz

	rangeMag := math.Sqrt(xi*xi + yi*yi + zi*zi)

	ra := math.Atan2(yi, xi)
	if ra < 0 {
		ra += 2 * math.Pi
	}
	dec := math.Asin(zi / rangeMag)

	return EquatorialCoords{
		RADeg:  ra * 180.0 / math.Pi,
		DecDeg: dec * 180.0 / math.Pi,
	}
}
