package hashing

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hasbyte1/go-argon2-pepper/internal/argon2"
)

// Algorithm is the PHC identifier of every hash this package produces.
const Algorithm = "argon2id"

// phcHash holds the fields decoded from a PHC hash string.
type phcHash struct {
	variant     argon2.Variant
	version     uint32
	memory      uint32
	iterations  uint32
	parallelism uint32
	keyID       []byte
	data        []byte
	salt        []byte
	hash        []byte
}

// params returns the cost parameters embedded in h. SaltLen and KeyLen are
// the decoded lengths.
func (h *phcHash) params() Params {
	return Params{
		MemoryKiB:   h.memory,
		Iterations:  h.iterations,
		Parallelism: h.parallelism,
		KeyLen:      uint32(len(h.hash)),
		SaltLen:     uint32(len(h.salt)),
	}
}

// kdf returns the primitive parameters needed to re-derive h.
func (h *phcHash) kdf() argon2.Params {
	p := h.params().kdf()
	p.Variant = h.variant
	p.Version = h.version
	return p
}

// encodePHC serialises an Argon2id hash in PHC string format:
//
//	$argon2id$v=19$m=1024,t=1,p=1$<salt_base64>$<hash_base64>
//
// The base64 encoding uses the standard alphabet without padding, the
// convention of the Argon2 reference implementation.
func encodePHC(p Params, salt, hash []byte) string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		Algorithm,
		Version,
		p.MemoryKiB,
		p.Iterations,
		p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
}

// decodePHC parses an Argon2 PHC hash string.
//
// Expected format (5 or 6 dollar-delimited segments, first is empty):
//
//	$argon2{id,i,d}[$v=19]$m=1024,t=1,p=1[,keyid=<b64>][,data=<b64>]$<salt>$<hash>
//
// A missing version segment means v=19. Errors describe which field is
// wrong but never echo the field's content.
func decodePHC(encoded string) (*phcHash, error) {
	parts := strings.Split(encoded, "$")
	if (len(parts) != 5 && len(parts) != 6) || parts[0] != "" {
		return nil, fmt.Errorf("expected 4 or 5 PHC segments, got %d", len(parts)-1)
	}

	variant, ok := argon2.ParseVariant(parts[1])
	if !ok {
		return nil, errors.New("unsupported algorithm identifier")
	}
	h := &phcHash{variant: variant, version: Version}

	rest := parts[2:]
	if len(parts) == 6 {
		version, err := parseKV(parts[2], "v")
		if err != nil {
			return nil, fmt.Errorf("version segment: %w", err)
		}
		if version != argon2.Version && version != argon2.Version10 {
			return nil, fmt.Errorf("unsupported argon2 version %d", version)
		}
		h.version = uint32(version)
		rest = parts[3:]
	}

	if err := parseParams(rest[0], h); err != nil {
		return nil, err
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(rest[1]); err != nil {
		return nil, errors.New("invalid salt encoding")
	}
	if len(h.salt) == 0 {
		return nil, errors.New("empty salt")
	}

	if h.hash, err = base64.RawStdEncoding.DecodeString(rest[2]); err != nil {
		return nil, errors.New("invalid hash encoding")
	}
	if len(h.hash) == 0 {
		return nil, errors.New("empty hash")
	}
	return h, nil
}

// parseKV parses a "key=value" decimal segment.
func parseKV(s, key string) (uint64, error) {
	prefix := key + "="
	if !strings.HasPrefix(s, prefix) {
		return 0, fmt.Errorf("expected %q prefix", prefix)
	}
	v, err := strconv.ParseUint(s[len(prefix):], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("non-numeric %q value", key)
	}
	return v, nil
}

// parseParams decodes "m=1024,t=1,p=1" plus the optional keyid and data
// parameters into h. m, t and p are required; duplicates and unknown keys
// are rejected.
func parseParams(s string, h *phcHash) error {
	seen := make(map[string]bool, 5)
	for _, kv := range strings.Split(s, ",") {
		eq := strings.IndexByte(kv, '=')
		if eq <= 0 {
			return errors.New("malformed parameter")
		}
		key, val := kv[:eq], kv[eq+1:]
		if seen[key] {
			return errors.New("duplicate parameter")
		}
		seen[key] = true

		var err error
		switch key {
		case "m":
			h.memory, err = parseUint32(val)
		case "t":
			h.iterations, err = parseUint32(val)
		case "p":
			h.parallelism, err = parseUint32(val)
		case "keyid":
			h.keyID, err = base64.RawStdEncoding.DecodeString(val)
		case "data":
			h.data, err = base64.RawStdEncoding.DecodeString(val)
		default:
			return errors.New("unsupported parameter")
		}
		if err != nil {
			return fmt.Errorf("invalid %q parameter", key)
		}
	}
	if !seen["m"] || !seen["t"] || !seen["p"] {
		return errors.New("missing m/t/p in parameter segment")
	}
	return nil
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}
