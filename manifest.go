package cryptobox

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/absfs/absfs"
)

// ManifestEntry records one archived file: its path relative to the
// directory that was archived, and the random name it was stored
// under in the vault (§6). The manifest is plain JSON and is not
// itself authenticated; its worst-case tamper outcome is restoring
// files to attacker-chosen relative paths, which RestoreFromManifest
// defends against independently via its path-traversal check.
type ManifestEntry struct {
	Original string `json:"original"`
	Stored   string `json:"stored"`
}

const chunkFrameOverhead = nonceSize + lengthPrefixSize + tagSize
const singleFileOverhead = saltSize

// collectFiles walks rootDir (relative to fs) and returns every
// regular file beneath it as a path relative to rootDir, skipping any
// directory name present in exclude.
func collectFiles(fs absfs.FileSystem, rootDir string, exclude map[string]bool) ([]string, error) {
	var out []string
	var walk func(dir string) error
	walk = func(dir string) error {
		f, err := fs.Open(dir)
		if err != nil {
			return wrapErr(KindIO, "collectFiles", dir, "failed to open directory", err)
		}
		entries, err := f.Readdir(-1)
		f.Close()
		if err != nil {
			return wrapErr(KindIO, "collectFiles", dir, "failed to list directory", err)
		}
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				if exclude[entry.Name()] {
					continue
				}
				if err := walk(full); err != nil {
					return err
				}
				continue
			}
			rel, err := filepath.Rel(rootDir, full)
			if err != nil {
				return wrapErr(KindIO, "collectFiles", full, "failed to compute relative path", err)
			}
			out = append(out, rel)
		}
		return nil
	}
	if err := walk(rootDir); err != nil {
		return nil, err
	}
	return out, nil
}

// estimateVaultSize predicts the encrypted size of archiving rootDir
// with the given chunk size, mirroring the original's per-chunk
// overhead arithmetic (nonce + real_len + tag per frame, plus one
// salt per stored file).
func estimateVaultSize(fs absfs.FileSystem, rootDir string, chunkSize int) (int64, error) {
	var total int64
	var walk func(dir string) error
	walk = func(dir string) error {
		f, err := fs.Open(dir)
		if err != nil {
			return wrapErr(KindIO, "estimateVaultSize", dir, "failed to open directory", err)
		}
		entries, err := f.Readdir(-1)
		f.Close()
		if err != nil {
			return wrapErr(KindIO, "estimateVaultSize", dir, "failed to list directory", err)
		}
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				if err := walk(full); err != nil {
					return err
				}
				continue
			}
			size := entry.Size()
			numChunks := size / int64(chunkSize)
			if size%int64(chunkSize) != 0 || size == 0 {
				numChunks++
			}
			total += int64(singleFileOverhead) + numChunks*(int64(chunkSize)+int64(chunkFrameOverhead))
		}
		return nil
	}
	if err := walk(rootDir); err != nil {
		return 0, err
	}
	return total, nil
}

// checkFreeSpace reports whether vaultDir's underlying volume has
// enough free space to hold an archive of rootDir at the given chunk
// size. It returns the estimated required size and the free space
// observed, regardless of outcome, so callers can format a precise
// error. Free space is measured on the host path of the same name;
// when the host cannot report it (for example, for a vault that
// exists only in an in-memory filesystem), the check passes and free
// is reported as 0.
func checkFreeSpace(fs absfs.FileSystem, rootDir, vaultDir string, chunkSize int) (ok bool, needed, free int64, err error) {
	needed, err = estimateVaultSize(fs, rootDir, chunkSize)
	if err != nil {
		return false, 0, 0, err
	}
	target := vaultDir
	if _, statErr := fs.Stat(vaultDir); statErr != nil {
		target = filepath.Dir(vaultDir)
	}
	free, err = freeDiskSpace(target)
	if err != nil {
		return true, needed, 0, nil
	}
	return free >= needed, needed, free, nil
}

// BuildManifestOptions configures BuildManifest (§6).
type BuildManifestOptions struct {
	// ExcludeDirs names directories (by base name) to skip entirely.
	ExcludeDirs map[string]bool
	// ManifestDir, if set, is where manifest.json is written instead
	// of the default vaultDir/manifest/.
	ManifestDir string
	Reporter    Reporter
}

// BuildManifest archives every file under rootDir into vaultDir as
// independently streaming-encrypted blobs under random names, writing
// an external, unauthenticated JSON manifest mapping each original
// relative path to its stored name (§6). It fails before touching
// anything if there isn't enough free space for the whole archive, or
// if rootDir contains no files. A manifest already present at the
// destination is a Conflict: build never overwrites a prior run's
// manifest. Per-file encryption errors are reported through opts.
// Reporter and otherwise skipped, matching the original's
// continue-on-error batch semantics — one bad file does not abort the
// whole archive.
func BuildManifest(fs absfs.FileSystem, rootDir, vaultDir string, password []byte, cfg *Config, opts BuildManifestOptions) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	runID := newRunID()
	report(opts.Reporter, runID, EventStarted, rootDir, "archive started", nil)

	chunkSize := cfg.StreamingParams.ChunkSize
	ok, needed, free, err := checkFreeSpace(fs, rootDir, vaultDir, chunkSize)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", wrapErr(KindInsufficientSpace, "BuildManifest", vaultDir, "not enough free space for archive", nil)
	}
	_ = needed
	_ = free

	files, err := collectFiles(fs, rootDir, opts.ExcludeDirs)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", wrapErr(KindNotFound, "BuildManifest", rootDir, "no files to archive", nil)
	}

	if !exists(fs, vaultDir) {
		if err := fs.MkdirAll(vaultDir, 0o755); err != nil {
			return "", wrapErr(KindIO, "BuildManifest", vaultDir, "failed to create vault directory", err)
		}
	}

	manDir := opts.ManifestDir
	if strings.TrimSpace(manDir) == "" {
		manDir = filepath.Join(vaultDir, "manifest")
	}
	if err := fs.MkdirAll(manDir, 0o755); err != nil {
		return "", wrapErr(KindIO, "BuildManifest", manDir, "failed to create manifest directory", err)
	}
	manifestPath := filepath.Join(manDir, "manifest.json")
	if exists(fs, manifestPath) {
		return "", wrapErr(KindConflict, "BuildManifest", manifestPath, "manifest already exists", nil)
	}

	manFile, err := createExclusive(fs, manifestPath)
	if err != nil {
		return "", err
	}
	defer manFile.Close()

	if _, err := manFile.Write([]byte("[\n")); err != nil {
		return "", wrapErr(KindIO, "BuildManifest", manifestPath, "failed to write manifest header", err)
	}

	first := true
	for i, rel := range files {
		full := filepath.Join(rootDir, rel)
		stored, err := EncryptStream(fs, full, password, cfg, EncryptStreamOptions{OutputDir: vaultDir})
		if err != nil {
			report(opts.Reporter, runID, EventWarn, rel, "failed to encrypt", err)
			continue
		}
		entry := ManifestEntry{Original: rel, Stored: filepath.Base(stored)}

		encoded, jerr := json.Marshal(entry)
		if jerr != nil {
			report(opts.Reporter, runID, EventWarn, rel, "failed to encode manifest entry", jerr)
			continue
		}
		if !first {
			if _, err := manFile.Write([]byte(",\n")); err != nil {
				return "", wrapErr(KindIO, "BuildManifest", manifestPath, "failed to write manifest separator", err)
			}
		}
		if _, err := manFile.Write(encoded); err != nil {
			return "", wrapErr(KindIO, "BuildManifest", manifestPath, "failed to write manifest entry", err)
		}
		if err := manFile.Sync(); err != nil {
			return "", wrapErr(KindIO, "BuildManifest", manifestPath, "failed to fsync manifest", err)
		}
		first = false
		report(opts.Reporter, runID, EventFileDone, rel, "archived", nil)
		_ = i
	}

	if _, err := manFile.Write([]byte("\n]")); err != nil {
		return "", wrapErr(KindIO, "BuildManifest", manifestPath, "failed to write manifest footer", err)
	}
	return manifestPath, nil
}

// RestoreFromManifestOptions configures RestoreFromManifest (§6).
type RestoreFromManifestOptions struct {
	Reporter Reporter
}

// RestoreFromManifest decrypts every entry named in manifestPath back
// into outputDir, preserving each entry's original relative path. For
// every entry it resolves outputDir/original and rejects the entry
// with PathTraversal if that resolved path would land outside
// outputDir — a malicious or corrupted manifest cannot be used to
// write outside the restore target. A stored file missing from
// vaultDir is reported and skipped. An invalid tag (wrong password or
// tampered data) aborts the entire restore immediately: once one
// file fails authentication under the given password, every
// remaining file will too, so continuing would only produce partial,
// confusing output.
func RestoreFromManifest(fs absfs.FileSystem, manifestPath, vaultDir, outputDir string, password []byte, cfg *Config, opts RestoreFromManifestOptions) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	runID := newRunID()
	report(opts.Reporter, runID, EventStarted, manifestPath, "restore started", nil)

	if !exists(fs, manifestPath) {
		return wrapErr(KindNotFound, "RestoreFromManifest", manifestPath, "manifest not found", nil)
	}
	mf, err := fs.Open(manifestPath)
	if err != nil {
		return wrapErr(KindIO, "RestoreFromManifest", manifestPath, "failed to open manifest", err)
	}
	raw, err := io.ReadAll(mf)
	mf.Close()
	if err != nil {
		return wrapErr(KindIO, "RestoreFromManifest", manifestPath, "failed to read manifest", err)
	}

	content := strings.TrimSpace(string(raw))
	if !strings.HasSuffix(content, "]") {
		content += "\n]"
	}
	var entries []ManifestEntry
	if err := json.Unmarshal([]byte(content), &entries); err != nil {
		return wrapErr(KindCorruptManifest, "RestoreFromManifest", manifestPath, "failed to parse manifest JSON", err)
	}

	absOutputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return wrapErr(KindIO, "RestoreFromManifest", outputDir, "failed to resolve output directory", err)
	}

	for i, entry := range entries {
		finalPath, perr := filepath.Abs(filepath.Join(absOutputDir, entry.Original))
		if perr != nil {
			report(opts.Reporter, runID, EventWarn, entry.Original, "failed to resolve destination path", perr)
			continue
		}
		if !withinDir(absOutputDir, finalPath) {
			report(opts.Reporter, runID, EventWarn, entry.Original, "path escapes restore directory", ErrPathTraversal)
			continue
		}

		inputFile := filepath.Join(vaultDir, entry.Stored)
		if !exists(fs, inputFile) {
			report(opts.Reporter, runID, EventWarn, entry.Stored, "stored file not found in vault", nil)
			continue
		}

		destDir := filepath.Dir(finalPath)
		_, err := DecryptStream(fs, inputFile, password, cfg, destDir)
		if err != nil {
			if KindOf(err) == KindInvalidTag {
				report(opts.Reporter, runID, EventFatal, entry.Original, "wrong password, restore aborted", err)
				return err
			}
			report(opts.Reporter, runID, EventWarn, entry.Original, "failed to restore", err)
			continue
		}
		report(opts.Reporter, runID, EventFileDone, entry.Original, "restored", nil)
		_ = i
	}
	return nil
}

// withinDir reports whether target is equal to base or nested inside
// it, the Go equivalent of the original's os.path.commonpath check.
func withinDir(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != ".."
}

