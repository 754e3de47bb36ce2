// Package crypto wraps fernet encryption for fields stored at rest, currently
// the account's CPF document number.
package crypto

import (
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"
)

// ErrDecryptFailed indicates a stored token could not be verified, usually a
// key rotation without re-encryption.
var ErrDecryptFailed = errors.New("failed to decrypt value")

// Cipher encrypts and decrypts short string fields with a single fernet key.
type Cipher struct {
	key *fernet.Key
}

// NewCipher creates a Cipher from a base64url-encoded fernet key.
func NewCipher(encodedKey string) (*Cipher, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode fernet key: %w", err)
	}
	return &Cipher{key: key}, nil
}

// Encrypt returns the fernet token for the given plaintext.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(plaintext), c.key)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt value: %w", err)
	}
	return string(token), nil
}

// Decrypt verifies and opens a fernet token. Tokens do not expire: the stored
// document ID must stay readable indefinitely.
func (c *Cipher) Decrypt(token string) (string, error) {
	plaintext := fernet.VerifyAndDecrypt([]byte(token), 0, []*fernet.Key{c.key})
	if plaintext == nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}
