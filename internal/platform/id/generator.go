package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Generator creates opaque IDs, used to tag ranking runs in logs and responses.
type Generator interface {
	NewID() (string, error)
}

// RunIDGenerator yields "<prefix>_<utc stamp>_<8 hex>" so run ids sort by
// creation time and stay unique within the same second.
type RunIDGenerator struct {
	prefix string
	now    func() time.Time
}

func NewRunIDGenerator(prefix string) *RunIDGenerator {
	return &RunIDGenerator{prefix: prefix, now: time.Now}
}

func (g *RunIDGenerator) NewID() (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	stamp := g.now().UTC().Format("20060102T150405Z")
	if g.prefix == "" {
		return stamp + "_" + hex.EncodeToString(suffix), nil
	}
	return g.prefix + "_" + stamp + "_" + hex.EncodeToString(suffix), nil
}
