package cryptobox

import (
	"bytes"
	"testing"
)

func TestHideAndExtractRoundTrip(t *testing.T) {
	fs := newTestFS(t)
	fs.MkdirAll("/work", 0o755)
	fs.MkdirAll("/out", 0o755)
	writeFile(t, fs, "/work/cover.png", []byte("\x89PNG-not-really-but-good-enough"))
	writeFile(t, fs, "/work/secret.txt", []byte("the treasure is buried at the old oak"))

	if err := HideInImage(fs, "/work/cover.png", "/work/secret.txt", "/work/out.png"); err != nil {
		t.Fatalf("HideInImage: %v", err)
	}

	cover, secret, err := ExtractFromImage(fs, "/work/out.png", "/out")
	if err != nil {
		t.Fatalf("ExtractFromImage: %v", err)
	}
	if cover != "cover.png" || secret != "secret.txt" {
		t.Fatalf("got cover=%q secret=%q", cover, secret)
	}

	gotCover := readFile(t, fs, "/out/cover.png")
	if !bytes.Equal(gotCover, []byte("\x89PNG-not-really-but-good-enough")) {
		t.Fatalf("cover mismatch: %q", gotCover)
	}
	gotSecret := readFile(t, fs, "/out/secret.txt")
	if !bytes.Equal(gotSecret, []byte("the treasure is buried at the old oak")) {
		t.Fatalf("secret mismatch: %q", gotSecret)
	}
}

func TestExtractFromImageRejectsMissingSignature(t *testing.T) {
	fs := newTestFS(t)
	writeFile(t, fs, "/plain.png", []byte("just an ordinary image, nothing hidden here"))

	_, _, err := ExtractFromImage(fs, "/plain.png", "/out")
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected NotFound for a file with no stego trailer, got %v", err)
	}
}

func TestExtractFromImageRefusesToOverwrite(t *testing.T) {
	fs := newTestFS(t)
	fs.MkdirAll("/work", 0o755)
	fs.MkdirAll("/out", 0o755)
	writeFile(t, fs, "/work/cover.png", []byte("cover-bytes"))
	writeFile(t, fs, "/work/secret.txt", []byte("shh"))
	writeFile(t, fs, "/out/cover.png", []byte("already here"))

	if err := HideInImage(fs, "/work/cover.png", "/work/secret.txt", "/work/out.png"); err != nil {
		t.Fatalf("HideInImage: %v", err)
	}

	_, _, err := ExtractFromImage(fs, "/work/out.png", "/out")
	if KindOf(err) != KindConflict {
		t.Fatalf("expected Conflict when the cover name already exists, got %v", err)
	}
}

func TestHideInImageRefusesToOverwriteOutput(t *testing.T) {
	fs := newTestFS(t)
	fs.MkdirAll("/work", 0o755)
	writeFile(t, fs, "/work/cover.png", []byte("cover-bytes"))
	writeFile(t, fs, "/work/secret.txt", []byte("shh"))
	writeFile(t, fs, "/work/out.png", []byte("taken"))

	err := HideInImage(fs, "/work/cover.png", "/work/secret.txt", "/work/out.png")
	if KindOf(err) != KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestHideInImageRejectsMissingCover(t *testing.T) {
	fs := newTestFS(t)
	fs.MkdirAll("/work", 0o755)
	writeFile(t, fs, "/work/secret.txt", []byte("shh"))

	err := HideInImage(fs, "/work/nope.png", "/work/secret.txt", "/work/out.png")
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected NotFound for missing cover, got %v", err)
	}
}
