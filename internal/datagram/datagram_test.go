package datagram

import (
	"bytes"
	"testing"
	"time"
)

func TestParseWellFormed(t *testing.T) {
	line := []byte("example.com\twww.example.com\tGET\t/index.html\tHTTP/1.1\t200\t1234\thttp://ref\tMozilla\t5000000\t127.0.0.1\t1700000000000000000")
	p, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Site != "example.com" || p.Host != "www.example.com" || p.Method != "GET" {
		t.Errorf("got %+v", p)
	}
	if p.Status != 200 {
		t.Errorf("Status = %d, want 200", p.Status)
	}
	if !p.HasLength || p.Length != 1234 {
		t.Errorf("Length = %d, HasLength = %v", p.Length, p.HasLength)
	}
	if !p.HasDuration || p.Duration != 5*time.Millisecond {
		t.Errorf("Duration = %v, HasDuration = %v", p.Duration, p.HasDuration)
	}
	if !p.HasTimestamp || p.Timestamp.UnixNano() != 1700000000000000000 {
		t.Errorf("Timestamp = %v, HasTimestamp = %v", p.Timestamp, p.HasTimestamp)
	}
}

func TestParseAbsentFields(t *testing.T) {
	line := []byte("-\t-\t-\t-\t-\t-\t-\t-\t-\t-\t-\t-")
	p, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Site != "" || p.HasLength || p.HasDuration || p.HasTimestamp {
		t.Errorf("expected every field absent, got %+v", p)
	}
}

func TestParseWrongFieldCount(t *testing.T) {
	if _, err := Parse([]byte("a\tb\tc")); err == nil {
		t.Fatal("expected an error for a line with too few fields")
	}
}

func TestParseInvalidStatus(t *testing.T) {
	line := []byte("a\tb\tc\td\te\tnotanumber\tg\th\ti\tj\tk\tl")
	if _, err := Parse(line); err == nil {
		t.Fatal("expected an error for a non-numeric status")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := []byte("example.com\twww\tGET\t/\tHTTP/1.1\t200\t10\t-\t-\t1000\t127.0.0.1\t1700000000000000000")
	p, err := Parse(original)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	encoded := Encode(p)
	p2, err := Parse(encoded)
	if err != nil {
		t.Fatalf("Parse(Encode(...)): %v", err)
	}
	if p != p2 {
		t.Errorf("round trip mismatch:\n%+v\n%+v", p, p2)
	}
}

func TestEncodeAbsentFields(t *testing.T) {
	p := Parsed{Site: "a"}
	encoded := Encode(p)
	if !bytes.Contains(encoded, []byte("\t-\t")) {
		t.Errorf("expected absent fields to encode as '-', got %q", encoded)
	}
}
