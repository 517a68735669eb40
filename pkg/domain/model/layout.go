package model

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/vlah-sh/mosaic/pkg/domain/types"
)

// Layout maps page sections to the component assigned to each
type Layout map[types.SectionType]types.ComponentID

// Clone returns a copy of the layout
func (l Layout) Clone() Layout {
	copied := make(Layout, len(l))
	for section, componentID := range l {
		copied[section] = componentID
	}
	return copied
}

// Pairs returns the layout as a lexicographically sorted list of
// "section:component" strings. The ordering makes the representation
// independent of map insertion order.
func (l Layout) Pairs() []string {
	pairs := make([]string, 0, len(l))
	for section, componentID := range l {
		pairs = append(pairs, string(section)+":"+string(componentID))
	}
	sort.Strings(pairs)
	return pairs
}

// Hash computes the deterministic layout fingerprint: SHA-256 over the
// sorted (section, component) pairs. Identical assignments always produce
// the identical hash regardless of insertion order.
func (l Layout) Hash() types.LayoutHash {
	digest := sha256.Sum256([]byte(strings.Join(l.Pairs(), "\n")))
	return types.LayoutHash(hex.EncodeToString(digest[:]))
}

// JaccardSimilarity computes the Jaccard index between the
// (section, component) pair sets of two layouts
func JaccardSimilarity(a, b Layout) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	union := make(map[string]struct{}, len(a)+len(b))
	for _, p := range a.Pairs() {
		union[p] = struct{}{}
	}

	var intersection int
	for _, p := range b.Pairs() {
		if _, ok := union[p]; ok {
			intersection++
		} else {
			union[p] = struct{}{}
		}
	}

	return float64(intersection) / float64(len(union))
}
