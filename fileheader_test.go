package cryptobox

import (
	"strings"
	"testing"
)

func TestSplitNameExt(t *testing.T) {
	cases := []struct {
		in       string
		wantName string
		wantExt  string
	}{
		{"report.pdf", "report", ".pdf"},
		{"archive.tar.gz", "archive.tar", ".gz"},
		{"README", "README", ""},
		{".gitignore", "", ".gitignore"},
	}
	for _, tc := range cases {
		name, ext := splitNameExt(tc.in)
		if name != tc.wantName || ext != tc.wantExt {
			t.Errorf("splitNameExt(%q) = (%q, %q), want (%q, %q)", tc.in, name, ext, tc.wantName, tc.wantExt)
		}
	}
}

func TestEncodeDecodeNameExtHeaderRoundTrip(t *testing.T) {
	header, err := encodeNameExtHeader("photo", ".png")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	payload := []byte("pixels")
	buf := append(header, payload...)

	name, ext, rest, err := decodeNameExtHeader(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if name != "photo" || ext != ".png" || string(rest) != "pixels" {
		t.Fatalf("round trip mismatch: name=%q ext=%q rest=%q", name, ext, rest)
	}
}

func TestEncodeNameExtHeaderRejectsOverlongName(t *testing.T) {
	longName := strings.Repeat("a", maxNameLen+1)
	if _, err := encodeNameExtHeader(longName, ".txt"); KindOf(err) != KindNameTooLong {
		t.Fatalf("expected NameTooLong, got %v", err)
	}
}

func TestEncodeNameExtHeaderRejectsOverlongExt(t *testing.T) {
	longExt := "." + strings.Repeat("b", maxExtLen+1)
	if _, err := encodeNameExtHeader("name", longExt); KindOf(err) != KindExtTooLong {
		t.Fatalf("expected ExtTooLong, got %v", err)
	}
}

func TestDecodeNameExtHeaderRejectsTruncatedBuffers(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{0x00, 0x05, 'a', 'b'},
	}
	for i, buf := range cases {
		if _, _, _, err := decodeNameExtHeader(buf); KindOf(err) != KindCorrupt {
			t.Errorf("case %d: expected Corrupt, got %v", i, err)
		}
	}
}

func TestHeaderSizeMatchesEncodedLength(t *testing.T) {
	header, err := encodeNameExtHeader("name", ".ext")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if headerSize("name", ".ext") != len(header) {
		t.Fatalf("headerSize() = %d, want %d", headerSize("name", ".ext"), len(header))
	}
}
