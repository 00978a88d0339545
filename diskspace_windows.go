//go:build windows

package cryptobox

import (
	"os"

	"golang.org/x/sys/windows"
)

// freeDiskSpace reports the free space available to the calling user
// on the volume containing path (§6 free-space preflight).
func freeDiskSpace(path string) (int64, error) {
	stat, err := os.Stat(path)
	if err != nil || !stat.IsDir() {
		return 0, wrapErr(KindIO, "freeDiskSpace", path, "path is not a directory", err)
	}

	ptr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, wrapErr(KindIO, "freeDiskSpace", path, "failed to convert path", err)
	}

	var freeBytes, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(ptr, &freeBytes, &totalBytes, &totalFreeBytes); err != nil {
		return 0, wrapErr(KindIO, "freeDiskSpace", path, "GetDiskFreeSpaceEx failed", err)
	}
	return int64(freeBytes), nil
}
