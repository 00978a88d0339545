package cryptobox

import "fmt"

// FilenameParams bounds the random output names the allocator draws
// (§4.6): length is sampled uniformly in [MinLen, MaxLen].
type FilenameParams struct {
	MinLen int `json:"min_len"`
	MaxLen int `json:"max_len"`
}

// StreamingParams configures the streaming container (§4.4).
type StreamingParams struct {
	ChunkSize int `json:"chunk_size"`
}

// KDFParams configures the Argon2id key derivation (§4.1).
type KDFParams struct {
	Length     int    `json:"length"`      // derived key size: 16, 24, or 32 bytes
	Iterations uint32 `json:"iterations"`  // time cost
	MemoryCost uint32 `json:"memory_cost"` // KiB
	Lanes      uint8  `json:"lanes"`       // parallelism
}

// GeneralParams carries the remaining options consumed by the core.
type GeneralParams struct {
	AAD         string `json:"aad"`
	Extension   string `json:"extension"`
	StegoSuffix string `json:"stego_suffix"`
}

// Config is the full option bundle every container/manifest operation
// takes. It is owned and populated by the host (GUI, CLI, tests); the
// core only validates and consumes it.
type Config struct {
	FilenameParams  FilenameParams  `json:"filename_params"`
	StreamingParams StreamingParams `json:"streaming_params"`
	KDFParams       KDFParams       `json:"kdf_params"`
	GeneralParams   GeneralParams   `json:"general_params"`
}

// DefaultConfig returns the configuration defaults enumerated in §6.
func DefaultConfig() *Config {
	return &Config{
		FilenameParams:  FilenameParams{MinLen: 16, MaxLen: 32},
		StreamingParams: StreamingParams{ChunkSize: 64 * 1024},
		KDFParams:       KDFParams{Length: 32, Iterations: 3, MemoryCost: 64 * 1024, Lanes: 1},
		GeneralParams:   GeneralParams{AAD: "", Extension: ".enc", StegoSuffix: "_stego"},
	}
}

// minHeaderFit is the smallest ChunkSize Validate accepts: the
// smallest NL‖name‖EL‖ext header (2-byte name length prefix + 1-byte
// ext length prefix) plus one payload byte. Whether a given file's
// real header fits is checked per file by EncryptStream.
const minHeaderFit = 2 + 1 + 1 // smallest possible header: empty name, empty ext, plus room for 1 payload byte

// Validate checks the invariants in §3 and §7 (InvalidConfig kind).
func (c *Config) Validate() error {
	if c == nil {
		return wrapErr(KindInvalidConfig, "Config.Validate", "", "config is nil", nil)
	}
	fp := c.FilenameParams
	if fp.MinLen < 1 || fp.MaxLen < fp.MinLen || fp.MaxLen > 255 {
		return wrapErr(KindInvalidConfig, "Config.Validate", "", fmt.Sprintf("invalid filename_params: min_len=%d max_len=%d", fp.MinLen, fp.MaxLen), nil)
	}

	cs := c.StreamingParams.ChunkSize
	if cs < minHeaderFit {
		return wrapErr(KindInvalidConfig, "Config.Validate", "", fmt.Sprintf("chunk_size %d too small to fit a header", cs), nil)
	}
	if cs > (1<<32 - 1) {
		return wrapErr(KindInvalidConfig, "Config.Validate", "", fmt.Sprintf("chunk_size %d exceeds uint32 length prefix", cs), nil)
	}

	kp := c.KDFParams
	if kp.Length != 16 && kp.Length != 24 && kp.Length != 32 {
		return wrapErr(KindInvalidConfig, "Config.Validate", "", fmt.Sprintf("kdf length %d must be 16, 24, or 32", kp.Length), nil)
	}
	if kp.Iterations < 1 {
		return wrapErr(KindInvalidConfig, "Config.Validate", "", "kdf iterations must be >= 1", nil)
	}
	if kp.MemoryCost < 8*uint32(kp.Lanes) {
		return wrapErr(KindInvalidConfig, "Config.Validate", "", "kdf memory_cost too small for requested lanes", nil)
	}
	if kp.Lanes < 1 {
		return wrapErr(KindInvalidConfig, "Config.Validate", "", "kdf lanes must be >= 1", nil)
	}

	if c.GeneralParams.Extension == "" {
		return wrapErr(KindInvalidConfig, "Config.Validate", "", "extension cannot be empty", nil)
	}

	return nil
}

// aadBytes returns the UTF-8 AAD bytes, or an empty slice when absent
// (§4.1: empty string is equivalent to absent AAD).
func (g GeneralParams) aadBytes() []byte {
	if g.AAD == "" {
		return []byte{}
	}
	return []byte(g.AAD)
}
