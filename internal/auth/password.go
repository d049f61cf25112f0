package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/yasinhessnawi1/Forum_Backend/internal/config"
	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
)

// PasswordConfig holds the parameters for the Argon2id password hashing algorithm
type PasswordConfig struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultPasswordConfig returns the default configuration for password hashing
func DefaultPasswordConfig() *PasswordConfig {
	return &PasswordConfig{
		Memory:      constants.DefaultPasswordHashMemory,
		Iterations:  constants.DefaultPasswordHashIterations,
		Parallelism: constants.DefaultPasswordHashParallelism,
		SaltLength:  constants.DefaultPasswordHashSaltLength,
		KeyLength:   constants.DefaultPasswordHashKeyLength,
	}
}

// ConfigFromAppConfig creates a password config from the application config.
// Zero values fall back to the defaults.
func ConfigFromAppConfig(cfg *config.AppConfig) *PasswordConfig {
	pc := DefaultPasswordConfig()
	if cfg == nil {
		return pc
	}

	h := cfg.PasswordHash
	if h.Memory > 0 {
		pc.Memory = h.Memory
	}
	if h.Iterations > 0 {
		pc.Iterations = h.Iterations
	}
	if h.Parallelism > 0 {
		pc.Parallelism = h.Parallelism
	}
	if h.SaltLength > 0 {
		pc.SaltLength = h.SaltLength
	}
	if h.KeyLength > 0 {
		pc.KeyLength = h.KeyLength
	}
	return pc
}

// HashPassword hashes password with Argon2id and a random salt.
// It returns the base64 hash and the base64 salt.
func HashPassword(password string, cfg *PasswordConfig) (string, string, error) {
	salt := make([]byte, cfg.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, cfg.Iterations, cfg.Memory, cfg.Parallelism, cfg.KeyLength)

	return base64.StdEncoding.EncodeToString(hash), base64.StdEncoding.EncodeToString(salt), nil
}

// VerifyPassword compares a password with a hash and salt using Argon2id
func VerifyPassword(password, encodedHash, encodedSalt string, cfg *PasswordConfig) (bool, error) {
	hash, err := base64.StdEncoding.DecodeString(encodedHash)
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(encodedSalt)
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}

	keyLength := cfg.KeyLength
	if len(hash) > 0 {
		keyLength = uint32(len(hash))
	}

	comparisonHash := argon2.IDKey([]byte(password), salt, cfg.Iterations, cfg.Memory, cfg.Parallelism, keyLength)

	return subtle.ConstantTimeCompare(hash, comparisonHash) == 1, nil
}
