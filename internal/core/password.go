// AngelaMos | 2026
// password.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// PasswordParams are the argon2id settings stamped into every stored hash.
type PasswordParams struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

var DefaultPasswordParams = PasswordParams{
	Memory:  64 * 1024,
	Time:    1,
	Threads: 4,
	KeyLen:  32,
	SaltLen: 16,
}

var ErrMalformedHash = errors.New("malformed password hash")

func (p PasswordParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

func (p PasswordParams) encode(salt, key []byte) string {
	enc := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		enc.EncodeToString(salt), enc.EncodeToString(key))
}

func (p PasswordParams) matches(other PasswordParams) bool {
	return p.Memory == other.Memory &&
		p.Time == other.Time &&
		p.Threads == other.Threads &&
		p.KeyLen == other.KeyLen
}

// storedHash is a decoded "$argon2id$v=..$m=..,t=..,p=..$salt$key" string.
type storedHash struct {
	params PasswordParams
	salt   []byte
	key    []byte
}

func parseHash(encoded string) (storedHash, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return storedHash{}, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return storedHash{}, fmt.Errorf("%w: version %q", ErrMalformedHash, fields[2])
	}

	var h storedHash
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d",
		&h.params.Memory, &h.params.Time, &h.params.Threads); err != nil {
		return storedHash{}, fmt.Errorf("%w: params: %v", ErrMalformedHash, err)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return storedHash{}, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil {
		return storedHash{}, fmt.Errorf("%w: key: %v", ErrMalformedHash, err)
	}
	//nolint:gosec // G115: argon2id keys are a few dozen bytes
	h.params.KeyLen = uint32(len(h.key))
	h.params.SaltLen = len(h.salt)
	return h, nil
}

func (h storedHash) verify(password string) bool {
	return subtle.ConstantTimeCompare(h.key, h.params.derive(password, h.salt)) == 1
}

func HashPassword(password string) (string, error) {
	return hashWith(DefaultPasswordParams, password)
}

func hashWith(p PasswordParams, password string) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return p.encode(salt, p.derive(password, salt)), nil
}

// decoy is verified when no account matches, so a missing email costs the
// same as a wrong password.
var decoy = func() storedHash {
	encoded, err := HashPassword("no account has this password")
	if err != nil {
		panic(fmt.Sprintf("core: build decoy hash: %v", err))
	}
	h, err := parseHash(encoded)
	if err != nil {
		panic(fmt.Sprintf("core: parse decoy hash: %v", err))
	}
	return h
}()

// CheckPassword verifies password against a stored hash. A nil or empty
// hash runs a decoy verification and reports false. When the hash was made
// with older parameters, rehash holds a fresh hash to store.
func CheckPassword(password string, encoded *string) (ok bool, rehash string, err error) {
	if encoded == nil || *encoded == "" {
		decoy.verify(password)
		return false, "", nil
	}

	h, err := parseHash(*encoded)
	if err != nil {
		return false, "", err
	}
	if !h.verify(password) {
		return false, "", nil
	}

	if !h.params.matches(DefaultPasswordParams) {
		if fresh, hashErr := HashPassword(password); hashErr == nil {
			rehash = fresh
		}
	}
	return true, rehash, nil
}
