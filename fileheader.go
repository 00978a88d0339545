package cryptobox

import (
	"encoding/binary"
	"fmt"
)

// maxNameLen and maxExtLen bound the embedded filename header shared
// by both containers (§3): NL is a 2-byte length, EL a 1-byte length.
const (
	maxNameLen = 65535
	maxExtLen  = 255
)

// splitNameExt mirrors the Python original's rpartition(".") logic: a
// filename with no dot has an empty extension; otherwise the extension
// keeps its leading dot.
func splitNameExt(filename string) (name, ext string) {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[:i], filename[i:]
		}
	}
	return filename, ""
}

// encodeNameExtHeader builds NL‖name‖EL‖ext (§3), validating the
// length bounds and returning NameTooLong/ExtTooLong on overflow.
func encodeNameExtHeader(name, ext string) ([]byte, error) {
	nameBytes := []byte(name)
	extBytes := []byte(ext)

	if len(nameBytes) > maxNameLen {
		return nil, wrapErr(KindNameTooLong, "encodeNameExtHeader", "", fmt.Sprintf("name is %d bytes, max %d", len(nameBytes), maxNameLen), nil)
	}
	if len(extBytes) > maxExtLen {
		return nil, wrapErr(KindExtTooLong, "encodeNameExtHeader", "", fmt.Sprintf("ext is %d bytes, max %d", len(extBytes), maxExtLen), nil)
	}

	header := make([]byte, 2+len(nameBytes)+1+len(extBytes))
	binary.BigEndian.PutUint16(header[0:2], uint16(len(nameBytes)))
	copy(header[2:], nameBytes)
	off := 2 + len(nameBytes)
	header[off] = byte(len(extBytes))
	copy(header[off+1:], extBytes)
	return header, nil
}

// headerSize returns the encoded size of encodeNameExtHeader(name, ext)
// without allocating the buffer, for chunk-budget arithmetic.
func headerSize(name, ext string) int {
	return 2 + len(name) + 1 + len(ext)
}

// decodeNameExtHeader parses NL‖name‖EL‖ext‖rest from buf, returning
// the name, extension, and the remaining bytes (the payload). Returns
// Corrupt if buf is too short to contain a well-formed header.
func decodeNameExtHeader(buf []byte) (name, ext string, rest []byte, err error) {
	if len(buf) < 2 {
		return "", "", nil, wrapErr(KindCorrupt, "decodeNameExtHeader", "", "buffer too short for name length", nil)
	}
	nl := int(binary.BigEndian.Uint16(buf[0:2]))
	off := 2
	if len(buf) < off+nl+1 {
		return "", "", nil, wrapErr(KindCorrupt, "decodeNameExtHeader", "", "buffer too short for name or ext length", nil)
	}
	name = string(buf[off : off+nl])
	off += nl
	el := int(buf[off])
	off++
	if len(buf) < off+el {
		return "", "", nil, wrapErr(KindCorrupt, "decodeNameExtHeader", "", "buffer too short for ext", nil)
	}
	ext = string(buf[off : off+el])
	off += el
	return name, ext, buf[off:], nil
}
