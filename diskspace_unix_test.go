//go:build !windows

package cryptobox

import "testing"

func TestFreeDiskSpaceReportsPositiveValue(t *testing.T) {
	free, err := freeDiskSpace(t.TempDir())
	if err != nil {
		t.Fatalf("freeDiskSpace: %v", err)
	}
	if free <= 0 {
		t.Fatalf("expected a positive free-space reading, got %d", free)
	}
}

func TestFreeDiskSpaceRejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	file := dir + "/not-a-dir"
	writeFileOS(t, file, []byte("x"))

	if _, err := freeDiskSpace(file); KindOf(err) != KindIO {
		t.Fatalf("expected IO error for a non-directory path, got %v", err)
	}
}
