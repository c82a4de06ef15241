package app

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/neomorfeo/keyledger/internal/domain"
)

const (
	apiKeyAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	apiKeyLength    = 64
	licenseAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	licenseBlocks   = 5
	licenseBlockLen = 5
)

// Generator produces random key strings. It is not cryptographically secure.
// Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	src *rand.ChaCha8
	rng *rand.Rand
}

// NewGenerator creates a generator seeded from the runtime's random source.
func NewGenerator() *Generator {
	var seed [32]byte
	for i := 0; i < len(seed); i += 8 {
		v := rand.Uint64()
		for j := 0; j < 8; j++ {
			seed[i+j] = byte(v >> (8 * j))
		}
	}
	return NewSeededGenerator(seed)
}

// NewSeededGenerator creates a deterministic generator, mainly for tests.
func NewSeededGenerator(seed [32]byte) *Generator {
	src := rand.NewChaCha8(seed)
	return &Generator{src: src, rng: rand.New(src)}
}

// Generate produces a key of the given kind.
func (g *Generator) Generate(kind domain.Kind) (domain.GeneratedKey, error) {
	var value string
	switch kind {
	case domain.KindUUID:
		value = g.UUID()
	case domain.KindAPIKey:
		value = g.APIKey()
	case domain.KindLicenseKey:
		value = g.LicenseKey()
	default:
		return domain.GeneratedKey{}, &domain.UnknownKindError{Value: string(kind)}
	}
	return domain.GeneratedKey{Value: value, Kind: kind}, nil
}

// UUID returns a version 4, RFC 4122 variant identifier in 8-4-4-4-12 layout.
func (g *Generator) UUID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	// ChaCha8.Read never fails.
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		panic("keyledger: reading random source: " + err.Error())
	}
	return id.String()
}

// APIKey returns 64 characters drawn from [A-Za-z0-9].
func (g *Generator) APIKey() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.Grow(apiKeyLength)
	for range apiKeyLength {
		b.WriteByte(apiKeyAlphabet[g.rng.IntN(len(apiKeyAlphabet))])
	}
	return b.String()
}

// LicenseKey returns five blocks of five [A-Z0-9] characters joined by "-".
func (g *Generator) LicenseKey() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	b.Grow(licenseBlocks*licenseBlockLen + licenseBlocks - 1)
	for i := range licenseBlocks * licenseBlockLen {
		if i > 0 && i%licenseBlockLen == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(licenseAlphabet[g.rng.IntN(len(licenseAlphabet))])
	}
	return b.String()
}
