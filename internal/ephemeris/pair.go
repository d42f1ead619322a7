package ephemeris

import (
	"context"
	"time"

	"github.com/star/skywatch/internal/observatory"
	"github.com/star/skywatch/internal/transform"
)

const (
	coarseStepSec = 30 // seconds between coarse scan steps
	fineStepSec   = 1  // seconds between fine scan steps
)

// Pair binds one observatory to one tracked object for event finding and
// position sampling.
//
// A Pair is not guaranteed reentrant: concurrent callers must each own
// their own Pair rather than share one across goroutines.
type Pair struct {
	Observatory observatory.Observatory
	Sat         *Satellite
}

// NewPair binds an observatory to a tracked object.
func NewPair(obs observatory.Observatory, sat *Satellite) *Pair {
	return &Pair{Observatory: obs, Sat: sat}
}

// AltitudeAt returns the object's altitude above the observatory's horizon
// in degrees at time t.
func (p *Pair) AltitudeAt(t time.Time) (float64, error) {
	ecef, err := p.Sat.PositionECEF(t, transform.GMST(t))
	if err != nil {
		return 0, err
	}
	la := transform.ECEFToLookAngles(p.Observatory.Position(), ecef.X, ecef.Y, ecef.Z)
	return la.ElevationDeg, nil
}

// FindEvents scans [start, end) and reports rise, culminate, and set events
// for this pair against the given minimum altitude, in chronological order.
//
// Events are only reported for crossings observed inside the window: an
// object already above the threshold at start yields no rise event, and an
// object still above it at end yields no set event. Instants where the
// propagator fails are skipped.
func (p *Pair) FindEvents(ctx context.Context, start, end time.Time, minAltDeg float64) ([]Event, error) {
	var events []Event

	// Coarse scan for above-threshold regions, then refine each hit.
	t := start
	for t.Before(end) {
		if err := ctx.Err(); err != nil {
			return events, err
		}

		alt, err := p.AltitudeAt(t)
		if err != nil {
			t = t.Add(coarseStepSec * time.Second)
			continue
		}

		if alt >= minAltDeg {
			passEvents, passEnd := p.refinePass(ctx, t, start, end, minAltDeg)
			events = append(events, passEvents...)
			t = passEnd.Add(coarseStepSec * time.Second)
		} else {
			t = t.Add(coarseStepSec * time.Second)
		}
	}

	return events, nil
}

// refinePass fine-scans around a coarse above-threshold hit. It backs up to
// catch the rise crossing, tracks the altitude maximum, and scans forward to
// the set crossing. Returns the pass events and the instant the pass ends.
func (p *Pair) refinePass(ctx context.Context, coarseHit, windowStart, windowEnd time.Time, minAltDeg float64) ([]Event, time.Time) {
	searchStart := coarseHit.Add(-coarseStepSec * time.Second)
	if searchStart.Before(windowStart) {
		searchStart = windowStart
	}

	var (
		events   []Event
		inPass   bool
		wasAbove bool
		maxAlt   float64
		maxTime  time.Time
	)

	t := searchStart
	for t.Before(windowEnd) {
		if ctx.Err() != nil {
			break
		}

		alt, err := p.AltitudeAt(t)
		if err != nil {
			t = t.Add(fineStepSec * time.Second)
			continue
		}

		above := alt >= minAltDeg

		if above && !wasAbove {
			inPass = true
			maxAlt = alt
			maxTime = t
			if t.After(searchStart) {
				// A real below→above crossing. An object already above at
				// the first sample has no observable rise.
				events = append(events, Event{Time: t, Flag: FlagRise})
			}
		}

		if above && inPass && alt > maxAlt {
			maxAlt = alt
			maxTime = t
		}

		if !above && wasAbove && inPass {
			// Setting: culmination precedes the set crossing.
			events = append(events, Event{Time: maxTime, Flag: FlagCulminate})
			events = append(events, Event{Time: t, Flag: FlagSet})
			return events, t
		}

		wasAbove = above
		t = t.Add(fineStepSec * time.Second)
	}

	// Pass still open at window end. Report the culmination only if the
	// maximum was already behind us when the window closed.
	if inPass && maxTime.Before(t.Add(-fineStepSec*time.Second)) {
		events = append(events, Event{Time: maxTime, Flag: FlagCulminate})
	}

	return events, windowEnd
}

// SamplePoint is the sky position of the object at one instant: topocentric
// right ascension/declination and altitude/azimuth as seen from the
// observatory, plus the sub-satellite ground point.
type SamplePoint struct {
	Time      time.Time
	RADeg     float64
	DecDeg    float64
	AltDeg    float64
	AzDeg     float64
	SubLatDeg float64
	SubLonDeg float64
}

// Sample materializes the pair's sky positions at the given instants,
// normally a grid from timegrid.Build. Sample times are assumed to be
// monotonically increasing. Fails on the first instant the propagator
// cannot produce a position for.
func (p *Pair) Sample(times []time.Time) ([]SamplePoint, error) {
	points := make([]SamplePoint, 0, len(times))
	obsPos := p.Observatory.Position()

	for _, t := range times {
		gmst := transform.GMST(t)
		ecef, err := p.Sat.PositionECEF(t, gmst)
		if err != nil {
			return nil, err
		}

		la := transform.ECEFToLookAngles(obsPos, ecef.X, ecef.Y, ecef.Z)
		eq := transform.ECEFToRADec(obsPos, ecef.X, ecef.Y, ecef.Z, gmst)
		sub := transform.ECEFToGeodetic(ecef.X, ecef.Y, ecef.Z)

		points = append(points, SamplePoint{
			Time:      t,
			RADeg:     eq.RADeg,
			DecDeg:    eq.DecDeg,
			AltDeg:    la.ElevationDeg,
			AzDeg:     la.AzimuthDeg,
			SubLatDeg: sub.LatDeg,
			SubLonDeg: sub.LonDeg,
		})
	}

	return points, nil
}
