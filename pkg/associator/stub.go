package associator

import (
	"context"

	"github.com/kittclouds/notegraph/pkg/bigram"
)

// StubAssociator is a deterministic Associator for tests and offline runs:
// it scores two bodies by their bigram Jaccard overlap, with no network
// calls and no randomness. It never errors.
type StubAssociator struct{}

// Associate returns |tokens(bodyA) ∩ tokens(bodyB)| / |tokens(bodyA) ∪
// tokens(bodyB)|, using the same bigram tokeniser the retriever uses. An
// empty or whitespace-only body contributes no tokens, so two such bodies
// score 0.
func (StubAssociator) Associate(_ context.Context, _ string, bodyA string, _ string, bodyB string) (float64, error) {
	a := toSet(bigram.Tokenize(bodyA))
	b := toSet(bigram.Tokenize(bodyB))

	if len(a) == 0 && len(b) == 0 {
		return 0, nil
	}

	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0, nil
	}
	return float64(intersection) / float64(union), nil
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue // Tokenize yields [""] for an empty or whitespace-only body
		}
		set[t] = true
	}
	return set
}
