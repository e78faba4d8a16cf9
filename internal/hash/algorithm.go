package hash

import (
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"hash"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/opencontainers/go-digest"
	"github.com/zeebo/blake3"
)

// Algorithm names a content digest algorithm.
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	SHA512 Algorithm = "sha512"
	BLAKE3 Algorithm = "blake3"
	XXH64  Algorithm = "xxh64"
)

// DefaultAlgorithm is used when none is configured.
const DefaultAlgorithm = SHA256

var algorithms = map[Algorithm]func() hash.Hash{
	SHA256: digest.SHA256.Hash,
	SHA512: digest.SHA512.Hash,
	BLAKE3: func() hash.Hash { return blake3.New() },
	XXH64:  func() hash.Hash { return xxhash.New() },
}

// ParseAlgorithm resolves a case-insensitive algorithm name. "sha-256" style
// spellings are accepted.
func ParseAlgorithm(name string) (Algorithm, error) {
	alg := Algorithm(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", ""))
	if _, ok := algorithms[alg]; !ok {
		return "", fmt.Errorf("unsupported hash algorithm: %s (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return alg, nil
}

// Names lists the supported algorithms in sorted order.
func Names() []string {
	names := make([]string, 0, len(algorithms))
	for alg := range algorithms {
		names = append(names, string(alg))
	}
	sort.Strings(names)
	return names
}

// New returns a fresh streaming hash for the algorithm.
func (a Algorithm) New() (hash.Hash, error) {
	newFunc, ok := algorithms[a]
	if !ok {
		return nil, fmt.Errorf("unsupported hash algorithm: %s", a)
	}
	return newFunc(), nil
}

// String implements pflag.Value.
func (a Algorithm) String() string { return string(a) }

// Set implements pflag.Value.
func (a *Algorithm) Set(s string) error {
	alg, err := ParseAlgorithm(s)
	if err != nil {
		return err
	}
	*a = alg
	return nil
}

// Type implements pflag.Value.
func (a *Algorithm) Type() string { return "algorithm" }
