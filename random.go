package okt8

import (
	cryptorand "crypto/rand"
	"math/rand"
)

// RandomSource supplies the bytes consumed by the RND instruction.
// The source is plugged in once per session.
type RandomSource interface {
	Next() (byte, error)
}

type cryptoRandomSource struct{}

// NewCryptoRandomSource returns a source backed by crypto/rand.
func NewCryptoRandomSource() RandomSource {
	return cryptoRandomSource{}
}

func (cryptoRandomSource) Next() (byte, error) {
	buff := [1]byte{}
	if _, err := cryptorand.Read(buff[:]); err != nil {
		return 0, err
	}

	return buff[0], nil
}

type seededRandomSource struct {
	rng *rand.Rand
}

// NewSeededRandomSource returns a deterministic source, useful for
// reproducible sessions and tests.
func NewSeededRandomSource(seed int64) RandomSource {
	return &seededRandomSource{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (s *seededRandomSource) Next() (byte, error) {
	return byte(s.rng.Intn(256)), nil
}
