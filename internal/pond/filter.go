package pond

import (
	"strings"
	"time"

	"github.com/pondhq/pond/internal/datagram"
)

// Filter is a plain predicate over a parsed datagram. Every field is
// optional; an absent field matches everything. Filter evaluation is pure:
// no I/O, no allocation.
type Filter struct {
	Site         string
	Host         string
	URISubstring string

	Status      int // exact HTTP status; 0 means unset
	StatusClass int // e.g. 2 for any 2xx; 0 means unset

	Since, Until       time.Time
	HasSince, HasUntil bool
}

// Match reports whether p satisfies every set field of f. A record with no
// parsed timestamp fails any filter that sets Since or Until.
func (f Filter) Match(p datagram.Parsed) bool {
	if f.Site != "" && p.Site != f.Site {
		return false
	}
	if f.Host != "" && p.Host != f.Host {
		return false
	}
	if f.URISubstring != "" && !strings.Contains(p.URI, f.URISubstring) {
		return false
	}
	if f.Status != 0 && p.Status != f.Status {
		return false
	}
	if f.StatusClass != 0 && p.Status/100 != f.StatusClass {
		return false
	}
	if f.HasSince || f.HasUntil {
		if !p.HasTimestamp {
			return false
		}
		if f.HasSince && p.Timestamp.Before(f.Since) {
			return false
		}
		if f.HasUntil && p.Timestamp.After(f.Until) {
			return false
		}
	}
	return true
}
