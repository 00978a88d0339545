package cryptobox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
)

// nonceSize is the AES-GCM standard nonce length (§4.2): 96 bits.
const nonceSize = 12

// tagSize is the AES-GCM authentication tag length (§4.2): 128 bits.
const tagSize = 16

// aeadEngine wraps an AES-GCM AEAD keyed with whatever the KDF
// produced. AES-256/192/128-GCM are selected purely by key length;
// there is no user-facing cipher-suite choice (§4.2).
type aeadEngine struct {
	aead cipher.AEAD
}

// newAEADEngine builds an AES-GCM engine for key, failing closed if
// key is not a valid AES key length (16/24/32 bytes).
func newAEADEngine(key []byte) (*aeadEngine, error) {
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, wrapErr(KindInvalidConfig, "newAEADEngine", "", "key must be 16, 24, or 32 bytes", nil)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, wrapErr(KindIO, "newAEADEngine", "", "failed to construct AES cipher", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, wrapErr(KindIO, "newAEADEngine", "", "failed to construct GCM", err)
	}
	return &aeadEngine{aead: aead}, nil
}

// seal encrypts plaintext under nonce and aad, returning ciphertext
// with the authentication tag appended.
func (e *aeadEngine) seal(nonce, plaintext, aad []byte) []byte {
	return e.aead.Seal(nil, nonce, plaintext, aad)
}

// open authenticates and decrypts ciphertext. On any authentication
// failure it returns ErrInvalidTag and no plaintext — callers must
// never branch on a partially-returned result because none is ever
// returned on failure.
func (e *aeadEngine) open(nonce, ciphertext, aad []byte) ([]byte, error) {
	plaintext, err := e.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrInvalidTag
	}
	return plaintext, nil
}

// freshNonce draws a new CSPRNG nonce. Every AEAD invocation in this
// system uses a fresh nonce (§4.2); reuse under one key is forbidden.
func freshNonce() ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, wrapErr(KindIO, "freshNonce", "", "failed to read random nonce", err)
	}
	return nonce, nil
}
