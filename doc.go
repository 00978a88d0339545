// Package cryptobox implements password-based file encryption, manifest-driven
// directory archival, steganographic data hiding, and best-effort secure
// deletion, all built on top of the absfs.FileSystem abstraction so callers
// can target the host filesystem or an in-memory one interchangeably.
//
// Every encryption operation derives its key from a password with Argon2id
// and encrypts with AES-GCM, selecting the 128/192/256-bit variant purely by derived key
// length. There is no user-selectable cipher suite. Two container formats are
// supported: a single-shot format that loads a whole file into memory, and a
// streaming format that processes fixed-size chunks so large files never
// need to fit in memory at once and so ciphertext length only reveals a
// rounded size class rather than an exact one.
package cryptobox
