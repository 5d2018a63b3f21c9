package secrets

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// Wire format for encrypted values: hex(iv) + ":" + hex(ciphertext).
const labelSeparator = ":"

// scrypt parameters for deriving the AES key from the passphrase.
// The salt is fixed: labels carry no per-value salt, only a per-value IV.
const (
	keySalt = "salt"
	keyLen  = 32
	scryptN = 16384
	scryptR = 8
	scryptP = 1
	ivLen   = aes.BlockSize
)

var errMalformedLabel = errors.New("malformed encrypted label")

// Codec encrypts and decrypts individual configuration values with a key
// derived from a process-wide secret.
type Codec struct {
	key []byte
}

// NewCodec derives the AES-256 key from the passphrase. Derivation is
// deliberately slow (scrypt), so it happens once here rather than per call.
func NewCodec(passphrase string) (*Codec, error) {
	key, err := scrypt.Key([]byte(passphrase), []byte(keySalt), scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive encryption key: %w", err)
	}
	return &Codec{key: key}, nil
}

// Encrypt protects a plaintext value for storage at rest. A fresh random IV
// is generated per call, so encrypting the same plaintext twice yields
// different labels.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to build cipher: %w", err)
	}

	iv := make([]byte, ivLen)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)

	return hex.EncodeToString(iv) + labelSeparator + hex.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. It is fail-open: on any failure (malformed
// label, wrong key, corrupt ciphertext) the input is returned unchanged so
// legacy plaintext values and corrupted rows never break retrieval.
func (c *Codec) Decrypt(label string) string {
	plaintext, err := c.decrypt(label)
	if err != nil {
		log.Printf("WARN: settings value left undecrypted: %v", err)
		return label
	}
	return plaintext
}

func (c *Codec) decrypt(label string) (string, error) {
	ivHex, cipherHex, found := strings.Cut(label, labelSeparator)
	if !found {
		return "", errMalformedLabel
	}

	iv, err := hex.DecodeString(ivHex)
	if err != nil || len(iv) != ivLen {
		return "", errMalformedLabel
	}

	data, err := hex.DecodeString(cipherHex)
	if err != nil || len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", errMalformedLabel
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to build cipher: %w", err)
	}

	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)

	plain, err := pkcs7Unpad(out, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	pad := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(pad)}, pad)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > blockSize {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-pad], nil
}
