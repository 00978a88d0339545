package cryptobox

import (
	"os"
	"testing"

	"github.com/absfs/absfs"
	"github.com/absfs/memfs"
)

// testConfig returns a Config with a cheap KDF so tests run quickly;
// production callers should use DefaultConfig's much higher cost.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.KDFParams = KDFParams{Length: 32, Iterations: 1, MemoryCost: 8, Lanes: 1}
	return cfg
}

func newTestFS(t *testing.T) absfs.FileSystem {
	t.Helper()
	fs, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("memfs.NewFS: %v", err)
	}
	return fs
}

func writeFile(t *testing.T, fs absfs.FileSystem, path string, data []byte) {
	t.Helper()
	f, err := fs.Create(path)
	if err != nil {
		t.Fatalf("Create(%s): %v", path, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		t.Fatalf("Write(%s): %v", path, err)
	}
}

func readFile(t *testing.T, fs absfs.FileSystem, path string) []byte {
	t.Helper()
	f, err := fs.Open(path)
	if err != nil {
		t.Fatalf("Open(%s): %v", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		t.Fatalf("Stat(%s): %v", path, err)
	}
	buf := make([]byte, info.Size())
	if _, err := f.Read(buf); err != nil {
		t.Fatalf("Read(%s): %v", path, err)
	}
	return buf
}

// writeFileOS writes directly to the host filesystem, for tests that
// exercise os-specific helpers (like freeDiskSpace) bypassing absfs.
func writeFileOS(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("os.WriteFile(%s): %v", path, err)
	}
}
