package cryptobox

import (
	"crypto/rand"
	"io"
	"os"
	"path/filepath"

	"github.com/absfs/absfs"
	"github.com/google/uuid"
)

const shredChunkSize = 64 * 1024

// obfuscateAlphabet is the 62-symbol alphabet used to rename a file
// or directory to something unrelated to its original name before
// unlinking it (§8), matching the original's string.ascii_letters +
// string.digits.
const obfuscateAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
const obfuscateNameLen = 16
const obfuscateAttempts = 5

// obfuscatePath renames path to a random sibling name before
// deletion, best-effort: if every attempt collides or the rename
// itself fails (e.g. the file is locked), it returns path unchanged
// so the caller still has something to remove.
func obfuscatePath(fs absfs.FileSystem, path string) string {
	dir := filepath.Dir(path)
	for i := 0; i < obfuscateAttempts; i++ {
		name, err := randomAlphabetName(obfuscateAlphabet, obfuscateNameLen)
		if err != nil {
			return path
		}
		candidate := filepath.Join(dir, name)
		if exists(fs, candidate) {
			continue
		}
		if err := fs.Rename(path, candidate); err != nil {
			return path
		}
		return candidate
	}
	return path
}

// randomAlphabetName draws a fixed-length random string from alphabet
// using the OS CSPRNG.
func randomAlphabetName(alphabet string, length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", wrapErr(KindIO, "randomAlphabetName", "", "failed to read random bytes", err)
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}

// ShredFile overwrites the file at path in place with passes rounds
// of data, then renames and deletes it (§8). Every pass but the last
// writes CSPRNG noise; the final pass writes zeros, so the visible
// file content just before removal carries no leftover entropy. This
// gives best-effort resistance against casual undelete, not a
// guarantee against forensic recovery on wear-leveling SSDs or
// copy-on-write filesystems, which this package cannot detect from
// inside an absfs.FileSystem abstraction.
func ShredFile(fs absfs.FileSystem, path string, passes int, reporter Reporter) error {
	if passes < 1 {
		passes = 1
	}
	info, err := fs.Stat(path)
	if err != nil {
		return wrapErr(KindNotFound, "ShredFile", path, "file not found", err)
	}
	size := info.Size()

	f, err := fs.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return wrapErr(KindIO, "ShredFile", path, "failed to open file for overwrite", err)
	}

	runID := newRunID()
	chunk := make([]byte, shredChunkSize)
	for pass := 0; pass < passes; pass++ {
		report(reporter, runID, EventStarted, path, "overwrite pass", nil)
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return wrapErr(KindIO, "ShredFile", path, "failed to seek for overwrite", err)
		}
		final := pass == passes-1
		remaining := size
		for remaining > 0 {
			writeLen := int64(len(chunk))
			if remaining < writeLen {
				writeLen = remaining
			}
			buf := chunk[:writeLen]
			if final {
				zero(buf)
			} else if _, err := rand.Read(buf); err != nil {
				f.Close()
				return wrapErr(KindIO, "ShredFile", path, "failed to read random overwrite data", err)
			}
			if _, err := f.Write(buf); err != nil {
				f.Close()
				return wrapErr(KindIO, "ShredFile", path, "failed to write overwrite data", err)
			}
			remaining -= writeLen
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return wrapErr(KindIO, "ShredFile", path, "failed to sync overwrite", err)
		}
	}
	if err := f.Close(); err != nil {
		return wrapErr(KindIO, "ShredFile", path, "failed to close file after overwrite", err)
	}

	finalPath := obfuscatePath(fs, path)
	if err := fs.Remove(finalPath); err != nil {
		return wrapErr(KindIO, "ShredFile", finalPath, "failed to remove file after overwrite", err)
	}
	return nil
}

// ShredDirectory recursively shreds every regular file under dirPath
// bottom-up, then obfuscates and removes each now-empty directory,
// finally removing dirPath itself (§8). Per-file and per-directory
// failures are reported and do not abort the walk, matching the
// original's continue-on-error batch semantics; the caller inspects
// the Reporter stream for KindIO-tagged EventWarn events to learn
// what survived.
func ShredDirectory(fs absfs.FileSystem, dirPath string, passes int, reporter Reporter) error {
	if !exists(fs, dirPath) {
		return wrapErr(KindDirNotFound, "ShredDirectory", dirPath, "directory not found", nil)
	}
	runID := newRunID()
	report(reporter, runID, EventStarted, dirPath, "shred started", nil)

	if err := shredDirectoryContents(fs, dirPath, passes, runID, reporter); err != nil {
		return err
	}

	finalPath := obfuscatePath(fs, dirPath)
	if err := fs.Remove(finalPath); err != nil {
		report(reporter, runID, EventWarn, finalPath, "failed to remove root directory", err)
		return wrapErr(KindIO, "ShredDirectory", finalPath, "failed to remove root directory", err)
	}
	return nil
}

func shredDirectoryContents(fs absfs.FileSystem, dirPath string, passes int, runID uuid.UUID, reporter Reporter) error {
	f, err := fs.Open(dirPath)
	if err != nil {
		return wrapErr(KindIO, "ShredDirectory", dirPath, "failed to open directory", err)
	}
	entries, err := f.Readdir(-1)
	f.Close()
	if err != nil {
		return wrapErr(KindIO, "ShredDirectory", dirPath, "failed to list directory", err)
	}

	for _, entry := range entries {
		full := filepath.Join(dirPath, entry.Name())
		if entry.IsDir() {
			if err := shredDirectoryContents(fs, full, passes, runID, reporter); err != nil {
				report(reporter, runID, EventWarn, full, "failed to shred subdirectory contents", err)
				continue
			}
			obf := obfuscatePath(fs, full)
			if err := fs.Remove(obf); err != nil {
				report(reporter, runID, EventWarn, obf, "failed to remove directory", err)
				continue
			}
			report(reporter, runID, EventFileDone, full, "directory removed", nil)
			continue
		}
		if err := ShredFile(fs, full, passes, reporter); err != nil {
			report(reporter, runID, EventWarn, full, "failed to shred file", err)
			continue
		}
		report(reporter, runID, EventFileDone, full, "file shredded", nil)
	}
	return nil
}
