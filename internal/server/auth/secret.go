package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	secretScheme  = "argon2id"
	argonTime     = 1
	argonMemory   = 64 * 1024
	argonThreads  = 4
	argonKeyLen   = 32
	secretSaltLen = 16
)

// SecretVerifier checks client secrets against an argon2id digest, so the
// plaintext need not stay in memory or in config files.
type SecretVerifier struct {
	salt    []byte
	digest  []byte
	time    uint32
	memory  uint32
	threads uint8
}

// HashSecret returns the encoded digest of secret with a fresh salt, in the
// form accepted by NewSecretVerifier:
//
//	argon2id$v=19$m=65536,t=1,p=4$<salt>$<digest>
func HashSecret(secret string) (string, error) {
	v, err := hashSecret(secret)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// NewSecretVerifier accepts either an encoded digest from HashSecret or a
// plaintext secret, which is hashed on the spot.
func NewSecretVerifier(configured string) (*SecretVerifier, error) {
	if configured == "" {
		return nil, fmt.Errorf("client secret is empty")
	}
	if strings.HasPrefix(configured, secretScheme+"$") {
		return parseSecret(configured)
	}
	return hashSecret(configured)
}

func hashSecret(secret string) (*SecretVerifier, error) {
	salt := make([]byte, secretSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	v := &SecretVerifier{salt: salt, time: argonTime, memory: argonMemory, threads: argonThreads}
	v.digest = v.derive(secret)
	return v, nil
}

func parseSecret(encoded string) (*SecretVerifier, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 {
		return nil, fmt.Errorf("malformed secret digest")
	}

	var version int
	if _, err := fmt.Sscanf(parts[1], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %q", parts[1])
	}

	v := &SecretVerifier{}
	if _, err := fmt.Sscanf(parts[2], "m=%d,t=%d,p=%d", &v.memory, &v.time, &v.threads); err != nil {
		return nil, fmt.Errorf("malformed argon2 parameters: %w", err)
	}
	if v.time == 0 || v.threads == 0 {
		return nil, fmt.Errorf("malformed argon2 parameters %q", parts[2])
	}
	var err error
	if v.salt, err = base64.RawStdEncoding.DecodeString(parts[3]); err != nil {
		return nil, fmt.Errorf("malformed salt: %w", err)
	}
	if v.digest, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("malformed digest: %w", err)
	}
	if len(v.digest) == 0 {
		return nil, fmt.Errorf("malformed digest: empty")
	}
	return v, nil
}

func (v *SecretVerifier) derive(secret string) []byte {
	keyLen := uint32(argonKeyLen)
	if len(v.digest) > 0 {
		keyLen = uint32(len(v.digest))
	}
	return argon2.IDKey([]byte(secret), v.salt, v.time, v.memory, v.threads, keyLen)
}

// Verify reports whether secret matches.
func (v *SecretVerifier) Verify(secret string) bool {
	return subtle.ConstantTimeCompare(v.derive(secret), v.digest) == 1
}

func (v *SecretVerifier) String() string {
	return fmt.Sprintf("%s$v=%d$m=%d,t=%d,p=%d$%s$%s", secretScheme, argon2.Version,
		v.memory, v.time, v.threads,
		base64.RawStdEncoding.EncodeToString(v.salt),
		base64.RawStdEncoding.EncodeToString(v.digest))
}
