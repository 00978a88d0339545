package cryptobox

import (
	"encoding/binary"
	"io"
	"path/filepath"

	"github.com/absfs/absfs"
)

// stegoSignature trails every file produced by HideInImage, letting
// ExtractFromImage recognize one without touching the cover image's
// own format (§7). There is no crypto here: the cover, secret name,
// and secret bytes are concatenated in the clear. Encrypt the secret
// first with EncryptFile if confidentiality matters.
var stegoSignature = [8]byte{'S', 'T', 'G', '_', 'V', '2', '.', '0'}

// HideInImage appends secretPath's bytes to coverPath's bytes,
// followed by a metadata trailer (secret name, cover name, secret
// length, signature), and writes the result to outputPath (§7). Each
// name is written followed by its 4-byte length. ExtractFromImage
// reads the trailer in reverse, starting from the signature at the
// end of the file.
func HideInImage(fs absfs.FileSystem, coverPath, secretPath, outputPath string) error {
	cover, err := fs.Open(coverPath)
	if err != nil {
		return wrapErr(KindNotFound, "HideInImage", coverPath, "cover file not found", err)
	}
	defer cover.Close()
	secret, err := fs.Open(secretPath)
	if err != nil {
		return wrapErr(KindNotFound, "HideInImage", secretPath, "secret file not found", err)
	}
	defer secret.Close()

	secretBytes, err := io.ReadAll(secret)
	if err != nil {
		return wrapErr(KindIO, "HideInImage", secretPath, "failed to read secret", err)
	}

	out, err := createExclusive(fs, outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, cover); err != nil {
		return wrapErr(KindIO, "HideInImage", outputPath, "failed to copy cover image", err)
	}
	if _, err := out.Write(secretBytes); err != nil {
		return wrapErr(KindIO, "HideInImage", outputPath, "failed to write secret data", err)
	}

	secretName := []byte(filepath.Base(secretPath))
	coverName := []byte(filepath.Base(coverPath))

	if err := writeTrailerField(out, secretName); err != nil {
		return err
	}
	if err := writeTrailerField(out, coverName); err != nil {
		return err
	}

	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(secretBytes)))
	if _, err := out.Write(lenBuf[:]); err != nil {
		return wrapErr(KindIO, "HideInImage", outputPath, "failed to write secret length", err)
	}
	if _, err := out.Write(stegoSignature[:]); err != nil {
		return wrapErr(KindIO, "HideInImage", outputPath, "failed to write signature", err)
	}
	return nil
}

func writeTrailerField(out absfs.File, name []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(name)))
	if _, err := out.Write(name); err != nil {
		return wrapErr(KindIO, "HideInImage", "", "failed to write trailer name", err)
	}
	if _, err := out.Write(lenBuf[:]); err != nil {
		return wrapErr(KindIO, "HideInImage", "", "failed to write trailer name length", err)
	}
	return nil
}

// ExtractFromImage recovers the cover image and secret file embedded
// by HideInImage into outputDir (§7). It refuses to overwrite either
// destination file, returning Conflict if the recovered cover or
// secret name already exists there. A missing or corrupted signature
// yields NotFound; inconsistent recorded sizes yield Corrupt.
func ExtractFromImage(fs absfs.FileSystem, stegoPath, outputDir string) (coverName, secretName string, err error) {
	in, err := fs.Open(stegoPath)
	if err != nil {
		return "", "", wrapErr(KindNotFound, "ExtractFromImage", stegoPath, "file not found", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", "", wrapErr(KindIO, "ExtractFromImage", stegoPath, "failed to stat file", err)
	}
	fileSize := info.Size()
	sigLen := int64(len(stegoSignature))

	sig := make([]byte, sigLen)
	if err := readTailAt(in, fileSize-sigLen, sig); err != nil {
		return "", "", wrapErr(KindNotFound, "ExtractFromImage", stegoPath, "hidden data not found", err)
	}
	for i := range sig {
		if sig[i] != stegoSignature[i] {
			return "", "", wrapErr(KindNotFound, "ExtractFromImage", stegoPath, "hidden data not found, signature mismatch", nil)
		}
	}

	var lenBuf8 [8]byte
	if err := readTailAt(in, fileSize-sigLen-8, lenBuf8[:]); err != nil {
		return "", "", wrapErr(KindCorrupt, "ExtractFromImage", stegoPath, "failed to read secret length", err)
	}
	secretLen := int64(binary.BigEndian.Uint64(lenBuf8[:]))

	var coverNameLenBuf [4]byte
	if err := readTailAt(in, fileSize-sigLen-8-4, coverNameLenBuf[:]); err != nil {
		return "", "", wrapErr(KindCorrupt, "ExtractFromImage", stegoPath, "failed to read cover name length", err)
	}
	coverNameLen := int64(binary.BigEndian.Uint32(coverNameLenBuf[:]))

	coverNameBytes := make([]byte, coverNameLen)
	if err := readTailAt(in, fileSize-sigLen-8-4-coverNameLen, coverNameBytes); err != nil {
		return "", "", wrapErr(KindCorrupt, "ExtractFromImage", stegoPath, "failed to read cover name", err)
	}

	var secretNameLenBuf [4]byte
	if err := readTailAt(in, fileSize-sigLen-8-4-coverNameLen-4, secretNameLenBuf[:]); err != nil {
		return "", "", wrapErr(KindCorrupt, "ExtractFromImage", stegoPath, "failed to read secret name length", err)
	}
	secretNameLen := int64(binary.BigEndian.Uint32(secretNameLenBuf[:]))

	secretNameBytes := make([]byte, secretNameLen)
	if err := readTailAt(in, fileSize-sigLen-8-4-coverNameLen-4-secretNameLen, secretNameBytes); err != nil {
		return "", "", wrapErr(KindCorrupt, "ExtractFromImage", stegoPath, "failed to read secret name", err)
	}

	metaSize := sigLen + 8 + 4 + coverNameLen + 4 + secretNameLen
	secretStart := fileSize - metaSize - secretLen
	if secretStart < 0 {
		return "", "", wrapErr(KindCorrupt, "ExtractFromImage", stegoPath, "recorded sizes exceed file length", nil)
	}

	coverName = string(coverNameBytes)
	secretName = string(secretNameBytes)
	pathImg := filepath.Join(outputDir, coverName)
	pathSec := filepath.Join(outputDir, secretName)
	if exists(fs, pathImg) {
		return "", "", wrapErr(KindConflict, "ExtractFromImage", pathImg, "target already exists", nil)
	}
	if exists(fs, pathSec) {
		return "", "", wrapErr(KindConflict, "ExtractFromImage", pathSec, "target already exists", nil)
	}

	if err := fs.MkdirAll(outputDir, 0o755); err != nil {
		return "", "", wrapErr(KindIO, "ExtractFromImage", outputDir, "failed to create output directory", err)
	}

	coverOut, err := createExclusive(fs, pathImg)
	if err != nil {
		return "", "", err
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		coverOut.Close()
		return "", "", wrapErr(KindIO, "ExtractFromImage", stegoPath, "failed to seek to start", err)
	}
	if _, err := io.CopyN(coverOut, in, secretStart); err != nil {
		coverOut.Close()
		return "", "", wrapErr(KindIO, "ExtractFromImage", pathImg, "failed to write cover image", err)
	}
	coverOut.Close()

	secretOut, err := createExclusive(fs, pathSec)
	if err != nil {
		return "", "", err
	}
	if _, err := in.Seek(secretStart, io.SeekStart); err != nil {
		secretOut.Close()
		return "", "", wrapErr(KindIO, "ExtractFromImage", stegoPath, "failed to seek to secret data", err)
	}
	if _, err := io.CopyN(secretOut, in, secretLen); err != nil {
		secretOut.Close()
		return "", "", wrapErr(KindIO, "ExtractFromImage", pathSec, "failed to write secret data", err)
	}
	secretOut.Close()

	return coverName, secretName, nil
}

// readTailAt reads len(buf) bytes starting at absolute offset off.
func readTailAt(f absfs.File, off int64, buf []byte) error {
	if off < 0 {
		return wrapErr(KindCorrupt, "readTailAt", "", "negative offset", nil)
	}
	if _, err := f.Seek(off, io.SeekStart); err != nil {
		return err
	}
	_, err := io.ReadFull(f, buf)
	return err
}
