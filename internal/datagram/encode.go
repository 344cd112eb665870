package datagram

import (
	"strconv"
	"strings"
)

// Encode renders p back into the wire format Parse accepts. It is used by
// this package's tests; the CLI's inject command sends stdin lines as they
// are and does not call it.
func Encode(p Parsed) []byte {
	fields := make([]string, fieldCount)
	fields[0] = fieldOrAbsent(p.Site)
	fields[1] = fieldOrAbsent(p.Host)
	fields[2] = fieldOrAbsent(p.Method)
	fields[3] = fieldOrAbsent(p.URI)
	fields[4] = fieldOrAbsent(p.HTTPVersion)

	if p.Status != 0 {
		fields[5] = strconv.Itoa(p.Status)
	} else {
		fields[5] = absent
	}

	if p.HasLength {
		fields[6] = strconv.FormatInt(p.Length, 10)
	} else {
		fields[6] = absent
	}

	fields[7] = fieldOrAbsent(p.Referer)
	fields[8] = fieldOrAbsent(p.UserAgent)

	if p.HasDuration {
		fields[9] = strconv.FormatInt(int64(p.Duration), 10)
	} else {
		fields[9] = absent
	}

	fields[10] = fieldOrAbsent(p.RemoteHost)

	if p.HasTimestamp {
		fields[11] = strconv.FormatInt(p.Timestamp.UnixNano(), 10)
	} else {
		fields[11] = absent
	}

	return []byte(strings.Join(fields, "\t"))
}

func fieldOrAbsent(s string) string {
	if s == "" {
		return absent
	}
	return s
}
