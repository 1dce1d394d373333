// Package password derives and verifies salted PBKDF2-HMAC-SHA256 credentials.
//
// A credential is stored as two independent base64 strings: the digest and
// the salt it was derived with. Both halves are produced together and travel
// together inside HashSalt.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// CredentialSize is the length of both the digest and the salt.
const CredentialSize = sha256.Size

// Iterations is the PBKDF2 round count.
const Iterations = 10_000

// Salt is the raw per-credential salt.
type Salt [CredentialSize]byte

// HashSalt pairs a digest with the salt it was derived from.
// The zero value matches no password.
type HashSalt struct {
	hash string
	salt string
}

// Hash returns the base64 encoded digest.
func (hs HashSalt) Hash() string {
	return hs.hash
}

// Salt returns the base64 encoded salt.
func (hs HashSalt) Salt() string {
	return hs.salt
}

// Matches reports whether plaintext derives to the stored digest.
func (hs HashSalt) Matches(plaintext string) bool {
	return Verify(plaintext, hs.salt, hs.hash)
}

// Restore rebuilds a HashSalt from values previously produced by Encrypt and
// read back from storage. The values are not validated here: a malformed pair
// simply never matches.
func Restore(encodedHash, encodedSalt string) HashSalt {
	return HashSalt{
		hash: encodedHash,
		salt: encodedSalt,
	}
}

// GenerateSalt fills a salt from the system CSPRNG.
func GenerateSalt() (Salt, error) {
	var salt Salt
	if _, err := rand.Read(salt[:]); err != nil {
		return Salt{}, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Encrypt derives plaintext under a fresh salt.
func Encrypt(plaintext string) (HashSalt, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return HashSalt{}, err
	}
	return EncryptWithSalt(plaintext, salt), nil
}

// EncryptWithSalt is a pure function of its inputs: the same password and
// salt always give the same HashSalt.
func EncryptWithSalt(plaintext string, salt Salt) HashSalt {
	digest := derive(plaintext, salt)

	return HashSalt{
		hash: base64.StdEncoding.EncodeToString(digest[:]),
		salt: base64.StdEncoding.EncodeToString(salt[:]),
	}
}

// Verify never fails loudly. Undecodable input, or input of the wrong
// length, is replaced by an all-zero array and so ends up as a mismatch.
func Verify(plaintext, encodedSalt, encodedDigest string) bool {
	salt := decode(encodedSalt)
	want := decode(encodedDigest)

	got := derive(plaintext, salt)
	return subtle.ConstantTimeCompare(got[:], want[:]) == 1
}

func derive(plaintext string, salt Salt) [CredentialSize]byte {
	var digest [CredentialSize]byte
	copy(digest[:], pbkdf2.Key(
		[]byte(plaintext), salt[:], Iterations, CredentialSize, sha256.New))
	return digest
}

func decode(encoded string) [CredentialSize]byte {
	var out [CredentialSize]byte

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) != CredentialSize {
		return out
	}
	copy(out[:], raw)
	return out
}
