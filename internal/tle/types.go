// Package tle loads tracked-object element sets: fetching raw two-line
// element data from remote sources, parsing it, caching it on disk, and
// exposing the whole pipeline behind a single Loader used by the catalog
// builder.
package tle

import (
	"fmt"
	"time"
)

// TLEEntry represents a single satellite's two-line element set at one epoch.
// The same physical satellite may appear as multiple entries differing only
// by Epoch when a source carries successive element updates.
type TLEEntry struct {
	NORADID int
	Name    string
	Epoch   time.Time
	Line1   string
	Line2   string
}

// Key returns the identity of this entry for deduplication: two entries with
// the same name and epoch describe the same element set regardless of which
// source they came from.
func (e TLEEntry) Key() string {
	return fmt.Sprintf("%s_%d", e.Name, e.Epoch.UnixNano())
}
