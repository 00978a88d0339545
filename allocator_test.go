package cryptobox

import (
	"testing"

	"github.com/absfs/memfs"
)

func TestAllocateOutputPathRandom(t *testing.T) {
	fs, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("memfs.NewFS: %v", err)
	}
	params := FilenameParams{MinLen: 8, MaxLen: 16}
	path, err := allocateOutputPath(fs, "/", "", ".enc", params)
	if err != nil {
		t.Fatalf("allocateOutputPath: %v", err)
	}
	if exists(fs, path) {
		t.Fatalf("allocateOutputPath must not create the file itself")
	}
}

func TestAllocateOutputPathCustomNameConflict(t *testing.T) {
	fs, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("memfs.NewFS: %v", err)
	}
	f, err := fs.Create("/taken.enc")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	f.Close()

	params := FilenameParams{MinLen: 8, MaxLen: 16}
	if _, err := allocateOutputPath(fs, "/", "taken", ".enc", params); KindOf(err) != KindConflict {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestAllocateOutputPathCustomNameStripsExtension(t *testing.T) {
	fs, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("memfs.NewFS: %v", err)
	}
	params := FilenameParams{MinLen: 8, MaxLen: 16}
	path, err := allocateOutputPath(fs, "/", "report.enc", ".enc", params)
	if err != nil {
		t.Fatalf("allocateOutputPath: %v", err)
	}
	if path != "/report.enc" {
		t.Fatalf("got %q, want /report.enc", path)
	}
}

func TestCreateExclusiveRejectsExisting(t *testing.T) {
	fs, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("memfs.NewFS: %v", err)
	}
	f, err := createExclusive(fs, "/once.bin")
	if err != nil {
		t.Fatalf("createExclusive: %v", err)
	}
	f.Close()

	if _, err := createExclusive(fs, "/once.bin"); KindOf(err) != KindConflict {
		t.Fatalf("expected Conflict on second createExclusive, got %v", err)
	}
}

func TestResolveTargetDirRequiresExistingOutputDir(t *testing.T) {
	fs, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("memfs.NewFS: %v", err)
	}
	if _, err := resolveTargetDir(fs, "/in/file.txt", "/does-not-exist"); KindOf(err) != KindDirNotFound {
		t.Fatalf("expected DirNotFound, got %v", err)
	}
}

func TestResolveTargetDirFallsBackToInputDir(t *testing.T) {
	fs, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("memfs.NewFS: %v", err)
	}
	dir, err := resolveTargetDir(fs, "/in/sub/file.txt", "")
	if err != nil {
		t.Fatalf("resolveTargetDir: %v", err)
	}
	if dir != "/in/sub" {
		t.Fatalf("got %q, want /in/sub", dir)
	}
}
