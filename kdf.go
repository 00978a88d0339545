package cryptobox

import (
	"crypto/rand"

	"golang.org/x/crypto/argon2"
)

// saltSize is the fixed salt length written at the start of every
// container (§3, §4.1): 16 bytes, fresh per encryption.
const saltSize = 16

// KeyProvider derives a symmetric key from a password and a salt.
// Implementations must fail closed rather than silently truncate or
// pad a key to the wrong length.
type KeyProvider interface {
	DeriveKey(salt []byte) ([]byte, error)
}

// argon2idProvider implements KeyProvider using Argon2id (§4.1). The
// password is held as raw UTF-8 bytes, exactly as given — no trimming
// or normalization happens in the core; that is the GUI's job.
type argon2idProvider struct {
	password []byte
	params   KDFParams
}

// NewKeyProvider builds the Argon2id key provider for one encrypt or
// decrypt call. password is not copied or retained beyond this call's
// lifetime by the caller's convention; DeriveKey does not store it
// past derivation.
func NewKeyProvider(password []byte, params KDFParams) KeyProvider {
	return &argon2idProvider{password: password, params: params}
}

func (p *argon2idProvider) DeriveKey(salt []byte) ([]byte, error) {
	if p.params.Length != 16 && p.params.Length != 24 && p.params.Length != 32 {
		return nil, wrapErr(KindInvalidConfig, "DeriveKey", "", "kdf length must be 16, 24, or 32 bytes", nil)
	}
	key := argon2.IDKey(
		p.password,
		salt,
		p.params.Iterations,
		p.params.MemoryCost,
		p.params.Lanes,
		uint32(p.params.Length),
	)
	return key, nil
}

// generateSalt draws a fresh 16-byte salt from the OS CSPRNG.
func generateSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, wrapErr(KindIO, "generateSalt", "", "failed to read random salt", err)
	}
	return salt, nil
}

// zero overwrites b with zeros in place. Call it on derived keys and
// assembled plaintext buffers as soon as they are no longer needed
// (§9 design note: zeroization is recommended, not just best-effort).
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
