package cryptobox

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"path/filepath"

	"github.com/absfs/absfs"
)

// lengthPrefixSize is the width of the real_len field written
// unencrypted ahead of every streaming frame's ciphertext (§3, §4.4,
// §6): a big-endian uint32 recording the true, unpadded length of
// that frame's plaintext chunk. It sits outside the AEAD call — the
// sealed region is always exactly chunk_size bytes.
const lengthPrefixSize = 4

// EncryptStreamOptions configures a streaming encryption (§4.4).
type EncryptStreamOptions struct {
	OutputDir  string
	CustomName string
}

// EncryptStream wraps inputPath in the streaming container (§3, §4.4):
// a 16-byte salt followed by a sequence of nonce[12]‖real_len[4]‖
// AES-GCM(chunk[chunk_size], AAD)‖tag[16] frames. real_len is written
// as plaintext ahead of the sealed chunk, not folded into the
// authenticated region; every chunk's plaintext is always exactly
// chunk_size bytes, the unused tail padded with fresh random bytes so
// ciphertext length reveals only a rounded-up size class, not the
// exact plaintext length. The embedded filename header occupies the
// front of the very first frame's plaintext, ahead of file content,
// exactly as the single-shot container embeds it ahead of the whole
// payload.
func EncryptStream(fs absfs.FileSystem, inputPath string, password []byte, cfg *Config, opts EncryptStreamOptions) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	name, ext := splitNameExt(filepath.Base(inputPath))
	header, err := encodeNameExtHeader(name, ext)
	if err != nil {
		return "", err
	}
	chunkSize := cfg.StreamingParams.ChunkSize
	headerLen := len(header)
	if chunkSize <= headerLen {
		return "", wrapErr(KindInvalidConfig, "EncryptStream", "", "chunk size must exceed the filename header size", nil)
	}

	in, err := fs.Open(inputPath)
	if err != nil {
		return "", wrapErr(KindNotFound, "EncryptStream", inputPath, "failed to open input", err)
	}
	defer in.Close()

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
	aad := cfg.GeneralParams.aadBytes()

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
		return "", wrapErr(KindIO, "EncryptStream", outPath, "failed to write salt", err)
	}

	first := true
	for {
		chunk := make([]byte, chunkSize)
		prefixLen := 0
		if first {
			copy(chunk, header)
			prefixLen = headerLen
		}
		n, rerr := io.ReadFull(in, chunk[prefixLen:])
		if rerr != nil && rerr != io.ErrUnexpectedEOF && rerr != io.EOF {
			return "", wrapErr(KindIO, "EncryptStream", inputPath, "failed to read input chunk", rerr)
		}
		realLen := prefixLen + n
		atEOF := rerr == io.ErrUnexpectedEOF || rerr == io.EOF
		if realLen == 0 {
			break
		}

		if realLen < chunkSize {
			if _, rerr := rand.Read(chunk[realLen:]); rerr != nil {
				return "", wrapErr(KindIO, "EncryptStream", outPath, "failed to read random padding", rerr)
			}
		}

		nonce, nerr := freshNonce()
		if nerr != nil {
			return "", nerr
		}
		sealed := engine.seal(nonce, chunk, aad)
		zero(chunk)

		var realLenBuf [lengthPrefixSize]byte
		binary.BigEndian.PutUint32(realLenBuf[:], uint32(realLen))

		if _, werr := out.Write(nonce); werr != nil {
			return "", wrapErr(KindIO, "EncryptStream", outPath, "failed to write frame nonce", werr)
		}
		if _, werr := out.Write(realLenBuf[:]); werr != nil {
			return "", wrapErr(KindIO, "EncryptStream", outPath, "failed to write frame length prefix", werr)
		}
		if _, werr := out.Write(sealed); werr != nil {
			return "", wrapErr(KindIO, "EncryptStream", outPath, "failed to write frame ciphertext", werr)
		}

		if atEOF {
			break
		}
		first = false
	}
	return outPath, nil
}

// DecryptStream reverses EncryptStream. Each frame is authenticated
// independently; the first invalid tag aborts the whole restore with
// ErrInvalidTag and no output file is left behind, matching the
// single-shot container's fail-closed behavior. Because GCM tags are
// checked per frame rather than once over the whole file, a corrupted
// frame in the middle of a large stream is caught without buffering
// the entire ciphertext in memory.
//
// Unlike EncryptFile/EncryptStream/DecryptFile, DecryptStream never
// requires its target directory to already exist: the containing
// directory is created only once the first chunk has authenticated
// successfully (§4.4 step 4), mirroring the original's
// os.makedirs(..., exist_ok=True) with no pre-existence check. This
// matters for RestoreFromManifest, which restores archived
// subdirectories that don't yet exist under the restore root.
func DecryptStream(fs absfs.FileSystem, inputPath string, password []byte, cfg *Config, outputDir string) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	chunkSize := cfg.StreamingParams.ChunkSize
	cipherLen := chunkSize + tagSize

	in, err := fs.Open(inputPath)
	if err != nil {
		return "", wrapErr(KindNotFound, "DecryptStream", inputPath, "failed to open input", err)
	}
	defer in.Close()

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(in, salt); err != nil {
		return "", wrapErr(KindCorrupt, "DecryptStream", inputPath, "failed to read salt", err)
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
	aad := cfg.GeneralParams.aadBytes()

	var out absfs.File
	var outPath string
	var name, ext string
	first := true

	nonce := make([]byte, nonceSize)
	realLenBuf := make([]byte, lengthPrefixSize)
	ciphertext := make([]byte, cipherLen)

	for {
		if _, rerr := io.ReadFull(in, nonce); rerr != nil {
			if rerr == io.EOF {
				break
			}
			return "", wrapErr(KindCorrupt, "DecryptStream", inputPath, "truncated frame nonce", rerr)
		}
		if _, rerr := io.ReadFull(in, realLenBuf); rerr != nil {
			return "", wrapErr(KindCorrupt, "DecryptStream", inputPath, "truncated frame length prefix", rerr)
		}
		if _, rerr := io.ReadFull(in, ciphertext); rerr != nil {
			return "", wrapErr(KindCorrupt, "DecryptStream", inputPath, "truncated frame ciphertext", rerr)
		}
		realLen := binary.BigEndian.Uint32(realLenBuf)

		plain, operr := engine.open(nonce, ciphertext, aad)
		if operr != nil {
			if out != nil {
				out.Close()
				fs.Remove(outPath)
			}
			return "", operr
		}
		if int(realLen) > len(plain) {
			zero(plain)
			return "", wrapErr(KindCorrupt, "DecryptStream", inputPath, "real_len exceeds chunk size", nil)
		}
		payload := plain[:realLen]

		if first {
			var derr error
			var rest []byte
			name, ext, rest, derr = decodeNameExtHeader(payload)
			if derr != nil {
				zero(plain)
				return "", derr
			}
			targetDir := streamDecryptTargetDir(inputPath, outputDir)
			outPath = filepath.Join(targetDir, name+ext)
			if err := fs.MkdirAll(targetDir, 0o755); err != nil {
				zero(plain)
				return "", wrapErr(KindIO, "DecryptStream", targetDir, "failed to create output directory", err)
			}
			out, err = fs.Create(outPath)
			if err != nil {
				zero(plain)
				return "", wrapErr(KindIO, "DecryptStream", outPath, "failed to create output", err)
			}
			if _, werr := out.Write(rest); werr != nil {
				zero(plain)
				out.Close()
				return "", wrapErr(KindIO, "DecryptStream", outPath, "failed to write decrypted chunk", werr)
			}
			first = false
		} else {
			if _, werr := out.Write(payload); werr != nil {
				zero(plain)
				out.Close()
				return "", wrapErr(KindIO, "DecryptStream", outPath, "failed to write decrypted chunk", werr)
			}
		}
		zero(plain)
	}

	if first {
		return "", wrapErr(KindCorrupt, "DecryptStream", inputPath, "stream contained no frames", nil)
	}
	out.Close()
	return outPath, nil
}
