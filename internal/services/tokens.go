package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

const capabilityTokenBytes = 32

// newCapabilityToken returns an unguessable hex token for invite and portal links.
func newCapabilityToken() (string, error) {
	b := make([]byte, capabilityTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// dedupe drops empty and repeated ids, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// validIDs splits ids into well-formed UUIDs, in canonical lowercase form,
// and the rest.
func validIDs(ids []string) (valid, invalid []string) {
	canonical := make([]string, 0, len(ids))
	for _, id := range ids {
		u, err := uuid.Parse(id)
		if err != nil {
			invalid = append(invalid, id)
			continue
		}
		canonical = append(canonical, u.String())
	}
	return dedupe(canonical), dedupe(invalid)
}
