package app

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// newOpID returns a short identifier correlating the logs and events of one
// dispatched operation. It draws from crypto/rand, unlike the key generator.
func newOpID() (string, error) {
	id, err := uuid.NewRandomFromReader(rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String()[:8], nil
}
