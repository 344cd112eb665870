package log

// Field is a single structured logging key/value pair, as used by the
// Field-based Logger methods (Debug, Info, Warn, Error, Fatal, With).
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string Field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int creates an int Field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Uint64 creates a uint64 Field.
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

// Err creates an error Field under the conventional "error" key.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any creates a Field with an arbitrary value.
func Any(key string, value interface{}) Field { return Field{Key: key, Value: value} }
