package cryptobox

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/absfs/absfs"
)

// nameAlphabet is the 64-symbol alphabet random output names are
// drawn from (§4.6). Harmonized across both containers, unlike the
// Python original where the GUI variant dropped "_-" — this rewrite
// always uses the full alphabet.
const nameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

// maxNameCollisionAttempts bounds how many random names are tried
// before giving up (§4.6: "implementer chooses; >= 16").
const maxNameCollisionAttempts = 64

// randomName draws a name of length uniform in [minLen, maxLen] from
// nameAlphabet using the OS CSPRNG.
func randomName(minLen, maxLen int) (string, error) {
	span := maxLen - minLen + 1
	limit := 256 - 256%span
	lengthByte := make([]byte, 1)
	for {
		if _, err := rand.Read(lengthByte); err != nil {
			return "", wrapErr(KindIO, "randomName", "", "failed to read random length byte", err)
		}
		if int(lengthByte[0]) < limit {
			break
		}
	}
	length := minLen + int(lengthByte[0])%span

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", wrapErr(KindIO, "randomName", "", "failed to read random name bytes", err)
	}
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = nameAlphabet[int(b)%len(nameAlphabet)]
	}
	return string(out), nil
}

// resolveTargetDir implements the §4.3 target-directory rule used by
// EncryptFile, EncryptStream, and DecryptFile: an explicit outputDir
// must exist (DirNotFound otherwise); absent one, fall back to the
// input file's own directory.
func resolveTargetDir(fs absfs.FileSystem, inputPath, outputDir string) (string, error) {
	if outputDir != "" {
		info, err := fs.Stat(outputDir)
		if err != nil || !info.IsDir() {
			return "", wrapErr(KindDirNotFound, "resolveTargetDir", outputDir, "output directory does not exist", err)
		}
		return outputDir, nil
	}
	return filepath.Dir(inputPath), nil
}

// streamDecryptTargetDir implements the §4.4 step 4 target-directory
// rule for DecryptStream: unlike resolveTargetDir, it never requires
// the directory to already exist. The directory is created on the
// first successfully authenticated chunk instead (mirroring the
// original's os.makedirs(..., exist_ok=True), which has no
// pre-existence check at all), so a password-guessing attempt that
// fails authentication never has side effects on the filesystem.
func streamDecryptTargetDir(inputPath, outputDir string) string {
	if outputDir != "" {
		return outputDir
	}
	return filepath.Dir(inputPath)
}

// allocateOutputPath resolves the final output path for an encrypt
// operation (§4.6). With customName set, the extension is stripped if
// the caller already typed it, and an existing path is a Conflict —
// encrypt never overwrites. Without customName, a random name is
// drawn and retried on collision.
func allocateOutputPath(fs absfs.FileSystem, targetDir, customName, ext string, params FilenameParams) (string, error) {
	if customName != "" {
		final := strings.TrimSuffix(customName, ext)
		path := filepath.Join(targetDir, final+ext)
		if exists(fs, path) {
			return "", wrapErr(KindConflict, "allocateOutputPath", path, "target already exists", nil)
		}
		return path, nil
	}

	for attempt := 0; attempt < maxNameCollisionAttempts; attempt++ {
		name, err := randomName(params.MinLen, params.MaxLen)
		if err != nil {
			return "", err
		}
		path := filepath.Join(targetDir, name+ext)
		if !exists(fs, path) {
			return path, nil
		}
	}
	return "", wrapErr(KindConflict, "allocateOutputPath", targetDir, "exhausted random name attempts", nil)
}

// createExclusive opens path for writing, failing with Conflict if it
// already exists. This is the atomic create-or-fail semantics §4.6
// relies on to make two concurrent encryptions targeting the same
// customName resolve to exactly one winner.
func createExclusive(fs absfs.FileSystem, path string) (absfs.File, error) {
	f, err := fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, wrapErr(KindConflict, "createExclusive", path, "target already exists", err)
		}
		return nil, wrapErr(KindIO, "createExclusive", path, "failed to create output file", err)
	}
	return f, nil
}
