package cryptobox

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptFileRoundTrip(t *testing.T) {
	fs := newTestFS(t)
	fs.MkdirAll("/in", 0o755)
	fs.MkdirAll("/out", 0o755)
	writeFile(t, fs, "/in/notes.txt", []byte("some very secret notes"))

	cfg := testConfig()
	encPath, err := EncryptFile(fs, "/in/notes.txt", []byte("hunter2"), cfg, EncryptFileOptions{OutputDir: "/out"})
	if err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}

	decPath, err := DecryptFile(fs, encPath, []byte("hunter2"), cfg, "/in")
	if err != nil {
		t.Fatalf("DecryptFile: %v", err)
	}
	if decPath != "/in/notes.txt" {
		t.Fatalf("got %q, want /in/notes.txt", decPath)
	}
	got := readFile(t, fs, decPath)
	if !bytes.Equal(got, []byte("some very secret notes")) {
		t.Fatalf("round trip mismatch: got %q", got)
	}
}

func TestDecryptFileWrongPasswordLeavesNoOutput(t *testing.T) {
	fs := newTestFS(t)
	fs.MkdirAll("/in", 0o755)
	writeFile(t, fs, "/in/secret.bin", []byte{1, 2, 3, 4, 5})

	cfg := testConfig()
	encPath, err := EncryptFile(fs, "/in/secret.bin", []byte("right"), cfg, EncryptFileOptions{})
	if err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}

	_, err = DecryptFile(fs, encPath, []byte("wrong"), cfg, "/restored")
	if KindOf(err) != KindInvalidTag {
		t.Fatalf("expected InvalidTag, got %v", err)
	}
	if exists(fs, "/restored/secret.bin") {
		t.Fatalf("wrong password must not create any output file")
	}
}

func TestEncryptFileNeverOverwrites(t *testing.T) {
	fs := newTestFS(t)
	fs.MkdirAll("/in", 0o755)
	fs.MkdirAll("/out", 0o755)
	writeFile(t, fs, "/in/a.txt", []byte("aaa"))
	writeFile(t, fs, "/out/taken.enc", []byte("occupied"))

	cfg := testConfig()
	_, err := EncryptFile(fs, "/in/a.txt", []byte("pw"), cfg, EncryptFileOptions{OutputDir: "/out", CustomName: "taken"})
	if KindOf(err) != KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestEncryptFileRejectsMissingOutputDir(t *testing.T) {
	fs := newTestFS(t)
	fs.MkdirAll("/in", 0o755)
	writeFile(t, fs, "/in/a.txt", []byte("aaa"))

	cfg := testConfig()
	_, err := EncryptFile(fs, "/in/a.txt", []byte("pw"), cfg, EncryptFileOptions{OutputDir: "/nope"})
	if KindOf(err) != KindDirNotFound {
		t.Fatalf("expected DirNotFound, got %v", err)
	}
}

func TestEncryptFileTwiceProducesDifferentCiphertext(t *testing.T) {
	fs := newTestFS(t)
	fs.MkdirAll("/in", 0o755)
	fs.MkdirAll("/out1", 0o755)
	fs.MkdirAll("/out2", 0o755)
	writeFile(t, fs, "/in/a.txt", []byte("same plaintext"))

	cfg := testConfig()
	p1, err := EncryptFile(fs, "/in/a.txt", []byte("pw"), cfg, EncryptFileOptions{OutputDir: "/out1"})
	if err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}
	p2, err := EncryptFile(fs, "/in/a.txt", []byte("pw"), cfg, EncryptFileOptions{OutputDir: "/out2"})
	if err != nil {
		t.Fatalf("EncryptFile: %v", err)
	}
	c1 := readFile(t, fs, p1)
	c2 := readFile(t, fs, p2)
	if bytes.Equal(c1, c2) {
		t.Fatalf("expected fresh salt/nonce to make repeated encryptions of the same plaintext differ")
	}
}

func TestDecryptFileRejectsCorruptContainer(t *testing.T) {
	fs := newTestFS(t)
	writeFile(t, fs, "/short.enc", []byte{1, 2, 3})

	cfg := testConfig()
	_, err := DecryptFile(fs, "/short.enc", []byte("pw"), cfg, "/")
	if KindOf(err) != KindCorrupt {
		t.Fatalf("expected Corrupt for undersized container, got %v", err)
	}
}
