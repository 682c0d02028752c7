package glb

import (
	"bytes"
	"testing"

	"github.com/facebookincubator/glTFVariantMeld/internal/mlerr"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	jsonChunk := []byte(`{"asset":{"version":"2.0"}}`)
	binChunk := []byte{1, 2, 3, 4, 5}

	out, err := Encode(jsonChunk, binChunk)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(out)%4 != 0 {
		t.Fatalf("GLB length %d not 4-byte aligned", len(out))
	}

	gotJSON, gotBIN, err := Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	// Decode returns payloads as stored: the 27-byte JSON gains one 0x20 and
	// the 5-byte BIN gains three 0x00 to reach a 4-byte boundary.
	wantJSON := append(append([]byte(nil), jsonChunk...), ' ')
	wantBIN := []byte{1, 2, 3, 4, 5, 0, 0, 0}
	if !bytes.Equal(gotJSON, wantJSON) {
		t.Errorf("JSON chunk mismatch: got %q want %q", gotJSON, wantJSON)
	}
	if !bytes.Equal(gotBIN, wantBIN) {
		t.Errorf("BIN chunk mismatch: got %v want %v", gotBIN, wantBIN)
	}
}

func TestEncodeNoBin(t *testing.T) {
	jsonChunk := []byte(`{"asset":{"version":"2.0"}}`)
	out, err := Encode(jsonChunk, nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	gotJSON, gotBIN, err := Decode(out)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	wantJSON := append(append([]byte(nil), jsonChunk...), ' ')
	if !bytes.Equal(gotJSON, wantJSON) {
		t.Errorf("JSON chunk mismatch: got %q want %q", gotJSON, wantJSON)
	}
	if gotBIN != nil {
		t.Errorf("expected no BIN chunk, got %v", gotBIN)
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	bad := make([]byte, 20)
	copy(bad, []byte("NOPE"))
	_, _, err := Decode(bad)
	assertCode(t, err, mlerr.CodeMalformedContainer)
}

func TestDecodeRejectsNonJSONFirstChunk(t *testing.T) {
	// Build a GLB whose first chunk is BIN instead of JSON.
	out, err := Encode([]byte(`{}`), nil)
	if err != nil {
		t.Fatal(err)
	}
	// flip the first chunk's type magic to BIN's
	corrupted := append([]byte(nil), out...)
	corrupted[12+4] = 0x42
	corrupted[12+5] = 0x49
	corrupted[12+6] = 0x4E
	corrupted[12+7] = 0x00
	_, _, err = Decode(corrupted)
	assertCode(t, err, mlerr.CodeMalformedContainer)
}

func TestDecodeRejectsLengthMismatch(t *testing.T) {
	out, err := Encode([]byte(`{"asset":{"version":"2.0"}}`), nil)
	if err != nil {
		t.Fatal(err)
	}
	corrupted := append(out, 0, 0, 0, 0)
	_, _, err = Decode(corrupted)
	assertCode(t, err, mlerr.CodeMalformedContainer)
}

func assertCode(t *testing.T, err error, want mlerr.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", want)
	}
	me, ok := err.(*mlerr.Error)
	if !ok {
		t.Fatalf("expected *mlerr.Error, got %T (%v)", err, err)
	}
	if me.Code != want {
		t.Fatalf("expected code %s, got %s", want, me.Code)
	}
}
