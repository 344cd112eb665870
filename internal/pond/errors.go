package pond

import "errors"

// ErrMalformedRecord is returned by Database.Emplace when the raw datagram
// fails to parse. No state is mutated when this is returned: no id is
// consumed, nothing is evicted.
var ErrMalformedRecord = errors.New("pond: malformed record")
