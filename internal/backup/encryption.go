package backup

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"schema-vault/internal/config"
)

const (
	encryptionSaltSize = 16
	encryptionKeySize  = 32 // AES-256
	pbkdf2Iterations   = 100000
)

// Encryptor encrypts exported archives with AES-256-GCM using a key
// derived from a passphrase via PBKDF2
type Encryptor struct {
	cfg config.EncryptionConfig
}

// NewEncryptor creates an encryptor from archive encryption settings
func NewEncryptor(cfg config.EncryptionConfig) *Encryptor {
	return &Encryptor{cfg: cfg}
}

// Enabled reports whether archive encryption is configured on
func (e *Encryptor) Enabled() bool {
	return e.cfg.Enabled
}

// passphrase retrieves the configured passphrase from the environment or
// a key file
func (e *Encryptor) passphrase() ([]byte, error) {
	switch e.cfg.KeySource {
	case "env", "":
		envVar := e.cfg.KeyEnvVar
		if envVar == "" {
			envVar = "SCHEMA_VAULT_ARCHIVE_KEY"
		}
		value := os.Getenv(envVar)
		if value == "" {
			return nil, NewEncryptionError("encryption passphrase not set in environment variable "+envVar, nil)
		}
		return []byte(value), nil
	case "file":
		if e.cfg.KeyPath == "" {
			return nil, NewEncryptionError("encryption key path not configured", nil)
		}
		data, err := os.ReadFile(e.cfg.KeyPath)
		if err != nil {
			return nil, NewEncryptionError("failed to read encryption key file", err)
		}
		return []byte(strings.TrimSpace(string(data))), nil
	default:
		return nil, NewEncryptionError("unknown encryption key source: "+e.cfg.KeySource, nil)
	}
}

// Encrypt seals data. The output layout is salt || nonce || ciphertext.
func (e *Encryptor) Encrypt(data []byte) ([]byte, error) {
	if !e.cfg.Enabled {
		return data, nil
	}

	passphrase, err := e.passphrase()
	if err != nil {
		return nil, err
	}

	salt := make([]byte, encryptionSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, NewEncryptionError("failed to generate salt", err)
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, NewEncryptionError("failed to generate nonce", err)
	}

	sealed := gcm.Seal(nil, nonce, data, nil)

	out := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// Decrypt opens data produced by Encrypt
func (e *Encryptor) Decrypt(data []byte) ([]byte, error) {
	if !e.cfg.Enabled {
		return data, nil
	}

	passphrase, err := e.passphrase()
	if err != nil {
		return nil, err
	}

	if len(data) < encryptionSaltSize {
		return nil, NewEncryptionError("encrypted payload too short", nil)
	}
	salt := data[:encryptionSaltSize]

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}

	rest := data[encryptionSaltSize:]
	if len(rest) < gcm.NonceSize() {
		return nil, NewEncryptionError("encrypted payload too short", nil)
	}
	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, NewEncryptionError("decryption failed", err)
	}
	return plain, nil
}

func newGCM(passphrase, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(passphrase, salt, pbkdf2Iterations, encryptionKeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, NewEncryptionError("failed to initialize cipher", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, NewEncryptionError("failed to initialize GCM", err)
	}
	return gcm, nil
}
