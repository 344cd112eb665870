package protocol

import (
	"bytes"
	"testing"
)

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, 7, uint16(CmdQuery), []byte("payload")); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	f, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if f.ID != 7 || f.Command != uint16(CmdQuery) || string(f.Payload) != "payload" {
		t.Errorf("got %+v", f)
	}
}

func TestWriteReadFrameEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, 1, uint16(CmdCommit), nil); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	f, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if len(f.Payload) != 0 {
		t.Errorf("Payload = %q, want empty", f.Payload)
	}
}

func TestWriteFrameRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	big := make([]byte, MaxPayloadSize+1)
	if err := WriteFrame(&buf, 1, uint16(CmdQuery), big); err != ErrPayloadTooLarge {
		t.Errorf("WriteFrame() = %v, want ErrPayloadTooLarge", err)
	}
}

func TestEncodeMatchesWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	WriteFrame(&buf, 3, uint16(CmdFilterSite), []byte("example.com"))

	encoded, err := Encode(3, uint16(CmdFilterSite), []byte("example.com"))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), encoded) {
		t.Errorf("Encode() = %x, want %x", encoded, buf.Bytes())
	}
}

func TestReadFrameShortHeader(t *testing.T) {
	buf := bytes.NewReader([]byte{0, 1, 0})
	if _, err := ReadFrame(buf); err == nil {
		t.Fatal("expected an error for a truncated header")
	}
}

func TestReadFrameShortPayload(t *testing.T) {
	var buf bytes.Buffer
	WriteFrame(&buf, 1, uint16(CmdQuery), []byte("hello"))
	truncated := bytes.NewReader(buf.Bytes()[:HeaderSize+2])
	if _, err := ReadFrame(truncated); err == nil {
		t.Fatal("expected an error for a truncated payload")
	}
}

func TestCommandStringers(t *testing.T) {
	if CmdQuery.String() != "QUERY" {
		t.Errorf("CmdQuery.String() = %q", CmdQuery.String())
	}
	if CmdLogRecord.String() != "LOG_RECORD" {
		t.Errorf("CmdLogRecord.String() = %q", CmdLogRecord.String())
	}
	if got := RequestCommand(999).String(); got == "" {
		t.Error("unknown command should still stringify to something non-empty")
	}
}
