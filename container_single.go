package cryptobox

import (
	"io"
	"path/filepath"

	"github.com/absfs/absfs"
)

// EncryptFileOptions configures a single-shot encryption (§4.3).
type EncryptFileOptions struct {
	// OutputDir, if non-empty, must already exist; the encrypted
	// file is written there instead of alongside the input.
	OutputDir string
	// CustomName, if non-empty, is used instead of a random output
	// name: a trailing configured extension is stripped if present,
	// then the extension is appended.
	CustomName string
}

// EncryptFile reads the entire file at inputPath into memory, wraps it
// in the single-shot container (§3: salt, nonce, AEAD(NL‖name‖EL‖ext‖
// payload, AAD), tag), and writes it to a newly allocated output path.
// It never overwrites an existing file; a name collision is a
// Conflict. This is the asymmetric half of the single-shot round
// trip: DecryptFile, by contrast, is permitted to overwrite (see its
// doc comment) because restoring a plaintext is assumed to be the
// user reclaiming their own file, while encrypting must never
// clobber a sibling ciphertext it didn't create.
func EncryptFile(fs absfs.FileSystem, inputPath string, password []byte, cfg *Config, opts EncryptFileOptions) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	in, err := fs.Open(inputPath)
	if err != nil {
		return "", wrapErr(KindNotFound, "EncryptFile", inputPath, "failed to open input", err)
	}
	plaintext, err := io.ReadAll(in)
	in.Close()
	if err != nil {
		return "", wrapErr(KindIO, "EncryptFile", inputPath, "failed to read input", err)
	}

	name, ext := splitNameExt(filepath.Base(inputPath))
	header, err := encodeNameExtHeader(name, ext)
	if err != nil {
		return "", err
	}
	body := make([]byte, len(header)+len(plaintext))
	copy(body, header)
	copy(body[len(header):], plaintext)
	defer zero(body)

	salt, err := generateSalt()
	if err != nil {
		return "", err
	}
	provider := NewKeyProvider(password, cfg.KDFParams)
	key, err := provider.DeriveKey(salt)
	if err != nil {
		return "", err
	}
	defer zero(key)

	engine, err := newAEADEngine(key)
	if err != nil {
		return "", err
	}
	nonce, err := freshNonce()
	if err != nil {
		return "", err
	}
	aad := cfg.GeneralParams.aadBytes()
	ciphertext := engine.seal(nonce, body, aad)

	targetDir, err := resolveTargetDir(fs, inputPath, opts.OutputDir)
	if err != nil {
		return "", err
	}
	outPath, err := allocateOutputPath(fs, targetDir, opts.CustomName, cfg.GeneralParams.Extension, cfg.FilenameParams)
	if err != nil {
		return "", err
	}

	out, err := createExclusive(fs, outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := out.Write(salt); err != nil {
		return "", wrapErr(KindIO, "EncryptFile", outPath, "failed to write salt", err)
	}
	if _, err := out.Write(nonce); err != nil {
		return "", wrapErr(KindIO, "EncryptFile", outPath, "failed to write nonce", err)
	}
	if _, err := out.Write(ciphertext); err != nil {
		return "", wrapErr(KindIO, "EncryptFile", outPath, "failed to write ciphertext", err)
	}
	return outPath, nil
}

// DecryptFile reverses EncryptFile: it reads salt‖nonce‖ciphertext
// from inputPath, derives the key, authenticates and decrypts in one
// shot, and writes the recovered payload under its embedded name and
// extension. A failed tag check (wrong password or tampered
// ciphertext) returns ErrInvalidTag and creates no output file at
// all — decryption either fully succeeds or leaves the filesystem
// untouched.
//
// Unlike EncryptFile, DecryptFile overwrites an existing file at the
// resolved destination path when outputDir/name happen to collide
// with something already there. Restoring a file is treated as
// reclaiming known plaintext the caller already owns the name for,
// not as allocating a fresh anonymous output slot, so the Conflict
// protection that guards random/custom output allocation does not
// apply here.
func DecryptFile(fs absfs.FileSystem, inputPath string, password []byte, cfg *Config, outputDir string) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	in, err := fs.Open(inputPath)
	if err != nil {
		return "", wrapErr(KindNotFound, "DecryptFile", inputPath, "failed to open input", err)
	}
	raw, err := io.ReadAll(in)
	in.Close()
	if err != nil {
		return "", wrapErr(KindIO, "DecryptFile", inputPath, "failed to read input", err)
	}

	if len(raw) < saltSize+nonceSize+tagSize {
		return "", wrapErr(KindCorrupt, "DecryptFile", inputPath, "file too short to be a valid container", nil)
	}
	salt := raw[:saltSize]
	nonce := raw[saltSize : saltSize+nonceSize]
	ciphertext := raw[saltSize+nonceSize:]

	provider := NewKeyProvider(password, cfg.KDFParams)
	key, err := provider.DeriveKey(salt)
	if err != nil {
		return "", err
	}
	defer zero(key)

	engine, err := newAEADEngine(key)
	if err != nil {
		return "", err
	}
	aad := cfg.GeneralParams.aadBytes()
	body, err := engine.open(nonce, ciphertext, aad)
	if err != nil {
		return "", err
	}
	defer zero(body)

	name, ext, payload, err := decodeNameExtHeader(body)
	if err != nil {
		return "", err
	}

	targetDir, err := resolveTargetDir(fs, inputPath, outputDir)
	if err != nil {
		return "", err
	}
	outPath := filepath.Join(targetDir, name+ext)

	out, err := fs.Create(outPath)
	if err != nil {
		return "", wrapErr(KindIO, "DecryptFile", outPath, "failed to create output", err)
	}
	defer out.Close()
	if _, err := out.Write(payload); err != nil {
		return "", wrapErr(KindIO, "DecryptFile", outPath, "failed to write decrypted payload", err)
	}
	return outPath, nil
}
