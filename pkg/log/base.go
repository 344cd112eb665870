package log

import (
	"context"
	"os"
	"strconv"
	"time"
)

func (l *BaseLogger) clone() *BaseLogger {
	fields := make(Fields, len(l.fields))
	for k, v := range l.fields {
		fields[k] = v
	}
	return &BaseLogger{
		level:      l.level,
		fields:     fields,
		formatter:  l.formatter,
		outputs:    l.outputs,
		slogLogger: l.slogLogger,
	}
}

func (l *BaseLogger) emit(level Level, msg string, extra Fields) {
	if level < l.level {
		return
	}
	fields := make(Fields, len(l.fields)+len(extra))
	for k, v := range l.fields {
		fields[k] = v
	}
	for k, v := range extra {
		fields[k] = v
	}
	var entryErr error
	if v, ok := fields["error"]; ok {
		if err, ok := v.(error); ok {
			entryErr = err
			fields["error"] = err.Error()
		}
	}
	entry := &Entry{
		Level:     level,
		Message:   msg,
		Fields:    fields,
		Timestamp: time.Now(),
		Error:     entryErr,
	}
	formatted, err := l.formatter.Format(entry)
	if err != nil {
		return
	}
	for _, out := range l.outputs {
		_ = out.Write(entry, formatted)
	}
	if level == FatalLevel {
		os.Exit(1)
	}
}

func fieldsFromSlice(fields []Field) Fields {
	if len(fields) == 0 {
		return nil
	}
	m := make(Fields, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	return m
}

// kvFields mirrors argsToAttrs's key derivation for the key-value (Debugf
// style) logging methods: even args are keys when they're strings, odd
// args are values.
func kvFields(args []interface{}) Fields {
	if len(args) == 0 {
		return nil
	}
	m := make(Fields, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		key := "arg" + strconv.Itoa(i)
		if k, ok := args[i].(string); ok {
			key = k
		}
		if i+1 < len(args) {
			m[key] = args[i+1]
		} else {
			m["arg"+strconv.Itoa(i)] = args[i]
		}
	}
	return m
}

func (l *BaseLogger) Debug(msg string, fields ...Field) { l.emit(DebugLevel, msg, fieldsFromSlice(fields)) }
func (l *BaseLogger) Info(msg string, fields ...Field)  { l.emit(InfoLevel, msg, fieldsFromSlice(fields)) }
func (l *BaseLogger) Warn(msg string, fields ...Field)  { l.emit(WarnLevel, msg, fieldsFromSlice(fields)) }
func (l *BaseLogger) Error(msg string, fields ...Field) { l.emit(ErrorLevel, msg, fieldsFromSlice(fields)) }
func (l *BaseLogger) Fatal(msg string, fields ...Field) { l.emit(FatalLevel, msg, fieldsFromSlice(fields)) }

func (l *BaseLogger) Debugf(msg string, args ...interface{}) { l.emit(DebugLevel, msg, kvFields(args)) }
func (l *BaseLogger) Infof(msg string, args ...interface{})  { l.emit(InfoLevel, msg, kvFields(args)) }
func (l *BaseLogger) Warnf(msg string, args ...interface{})  { l.emit(WarnLevel, msg, kvFields(args)) }
func (l *BaseLogger) Errorf(msg string, args ...interface{}) { l.emit(ErrorLevel, msg, kvFields(args)) }
func (l *BaseLogger) Fatalf(msg string, args ...interface{}) { l.emit(FatalLevel, msg, kvFields(args)) }

func (l *BaseLogger) WithField(key string, value interface{}) Logger {
	c := l.clone()
	c.fields[key] = value
	return c
}

func (l *BaseLogger) WithFields(fields Fields) Logger {
	c := l.clone()
	for k, v := range fields {
		c.fields[k] = v
	}
	return c
}

func (l *BaseLogger) WithError(err error) Logger {
	c := l.clone()
	if err != nil {
		c.fields["error"] = err.Error()
	}
	return c
}

func (l *BaseLogger) With(fields ...Field) Logger {
	c := l.clone()
	for _, f := range fields {
		c.fields[f.Key] = f.Value
	}
	return c
}

func (l *BaseLogger) WithContext(ctx context.Context) Logger {
	c := l.clone()
	for k, v := range ContextExtractor(ctx) {
		c.fields[k] = v
	}
	return c
}

func (l *BaseLogger) WithComponent(component string) Logger {
	return l.WithField(ComponentKey, component)
}

func (l *BaseLogger) SetLevel(level Level) { l.level = level }
func (l *BaseLogger) GetLevel() Level      { return l.level }
