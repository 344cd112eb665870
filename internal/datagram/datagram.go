// Package datagram parses the access-log datagram format Pond stores:
// tab-separated fields, in the order site, host, method, URI, http
// version, status, length, referer, user agent, duration, remote host,
// timestamp. Any field may be "-" to mean absent.
package datagram

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrMalformed is returned by Parse for any input that isn't a valid
// datagram.
var ErrMalformed = errors.New("datagram: malformed")

const fieldCount = 12

const absent = "-"

// Parsed is the structured view of a datagram. Every field is optional
// except that a well-formed datagram always has all twelve columns; an
// absent column simply carries its zero value and a cleared Has* flag
// where one exists.
type Parsed struct {
	Site        string
	Host        string
	Method      string
	URI         string
	HTTPVersion string
	Status      int // 0 if absent
	Length      int64
	HasLength   bool
	Referer     string
	UserAgent   string
	Duration    time.Duration
	HasDuration bool
	RemoteHost  string
	Timestamp   time.Time
	HasTimestamp bool
}

// Parse decodes raw into a Parsed datagram. It does not retain raw.
func Parse(raw []byte) (Parsed, error) {
	line := strings.TrimRight(string(raw), "\n")
	fields := strings.Split(line, "\t")
	if len(fields) != fieldCount {
		return Parsed{}, ErrMalformed
	}

	var p Parsed
	p.Site = optional(fields[0])
	p.Host = optional(fields[1])
	p.Method = optional(fields[2])
	p.URI = optional(fields[3])
	p.HTTPVersion = optional(fields[4])

	if fields[5] != absent {
		status, err := strconv.Atoi(fields[5])
		if err != nil || status < 0 || status > 999 {
			return Parsed{}, ErrMalformed
		}
		p.Status = status
	}

	if fields[6] != absent {
		length, err := strconv.ParseInt(fields[6], 10, 64)
		if err != nil || length < 0 {
			return Parsed{}, ErrMalformed
		}
		p.Length, p.HasLength = length, true
	}

	p.Referer = optional(fields[7])
	p.UserAgent = optional(fields[8])

	if fields[9] != absent {
		nanos, err := strconv.ParseInt(fields[9], 10, 64)
		if err != nil || nanos < 0 {
			return Parsed{}, ErrMalformed
		}
		p.Duration, p.HasDuration = time.Duration(nanos), true
	}

	p.RemoteHost = optional(fields[10])

	if fields[11] != absent {
		nanos, err := strconv.ParseInt(fields[11], 10, 64)
		if err != nil {
			return Parsed{}, ErrMalformed
		}
		p.Timestamp, p.HasTimestamp = time.Unix(0, nanos).UTC(), true
	}

	return p, nil
}

func optional(field string) string {
	if field == absent {
		return ""
	}
	return field
}
