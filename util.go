package cryptobox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/absfs/absfs"
)

// passwordAlphabet mirrors nameAlphabet: GeneratePassword and
// allocateOutputPath draw from the same 64-symbol set so a generated
// password is visually consistent with a generated filename.
const passwordAlphabet = nameAlphabet

// GeneratePassword returns a random password of length n drawn from
// passwordAlphabet, suitable for use as the password argument to
// EncryptFile/EncryptStream when the caller wants the tool to pick
// one rather than the user.
func GeneratePassword(n int) (string, error) {
	if n <= 0 {
		return "", wrapErr(KindInvalidConfig, "GeneratePassword", "", "length must be positive", nil)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", wrapErr(KindIO, "GeneratePassword", "", "failed to read random bytes", err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = passwordAlphabet[int(b)%len(passwordAlphabet)]
	}
	return string(out), nil
}

// SHA256File hashes the full contents of path, for callers that want
// to verify a restored file against a known-good checksum independent
// of this package's own AEAD tag check.
func SHA256File(fs absfs.FileSystem, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", wrapErr(KindNotFound, "SHA256File", path, "file not found", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", wrapErr(KindIO, "SHA256File", path, "failed to read file", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
