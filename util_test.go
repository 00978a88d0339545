package cryptobox

import (
	"strings"
	"testing"
)

func TestGeneratePasswordLengthAndAlphabet(t *testing.T) {
	pw, err := GeneratePassword(24)
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	if len(pw) != 24 {
		t.Fatalf("got length %d, want 24", len(pw))
	}
	for _, c := range pw {
		if !strings.ContainsRune(passwordAlphabet, c) {
			t.Fatalf("password contains character %q outside the alphabet", c)
		}
	}
}

func TestGeneratePasswordRejectsNonPositiveLength(t *testing.T) {
	if _, err := GeneratePassword(0); KindOf(err) != KindInvalidConfig {
		t.Fatalf("expected InvalidConfig for n=0, got %v", err)
	}
	if _, err := GeneratePassword(-5); KindOf(err) != KindInvalidConfig {
		t.Fatalf("expected InvalidConfig for n=-5, got %v", err)
	}
}

func TestGeneratePasswordVariesAcrossCalls(t *testing.T) {
	a, err := GeneratePassword(32)
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	b, err := GeneratePassword(32)
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	if a == b {
		t.Fatalf("expected two independently generated passwords to differ")
	}
}

func TestSHA256FileMatchesKnownDigest(t *testing.T) {
	fs := newTestFS(t)
	writeFile(t, fs, "/hello.txt", []byte("hello world"))

	got, err := SHA256File(fs, "/hello.txt")
	if err != nil {
		t.Fatalf("SHA256File: %v", err)
	}
	// sha256("hello world")
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestSHA256FileMissingIsNotFound(t *testing.T) {
	fs := newTestFS(t)
	_, err := SHA256File(fs, "/nope.txt")
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestSHA256FileIsDeterministic(t *testing.T) {
	fs := newTestFS(t)
	writeFile(t, fs, "/a.bin", []byte{1, 2, 3, 4, 5})
	writeFile(t, fs, "/b.bin", []byte{1, 2, 3, 4, 5})

	ha, err := SHA256File(fs, "/a.bin")
	if err != nil {
		t.Fatalf("SHA256File a: %v", err)
	}
	hb, err := SHA256File(fs, "/b.bin")
	if err != nil {
		t.Fatalf("SHA256File b: %v", err)
	}
	if ha != hb {
		t.Fatalf("identical content must hash identically: %s vs %s", ha, hb)
	}
}
