//go:build !windows

package cryptobox

import (
	"os"
	"syscall"
)

// freeDiskSpace reports the free space available to the calling user
// on the volume containing path (§6 free-space preflight).
func freeDiskSpace(path string) (int64, error) {
	stat, err := os.Stat(path)
	if err != nil || !stat.IsDir() {
		return 0, wrapErr(KindIO, "freeDiskSpace", path, "path is not a directory", err)
	}

	var fs syscall.Statfs_t
	if err := syscall.Statfs(path, &fs); err != nil {
		return 0, wrapErr(KindIO, "freeDiskSpace", path, "statfs failed", err)
	}
	return int64(fs.Bavail) * int64(fs.Bsize), nil
}
