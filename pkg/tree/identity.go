package tree

import (
	"fmt"
	"regexp"
	"strings"
)

var cleanRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.-]`)

// CleanName strips characters that would collide with statement
// punctuation, keeping letters, digits, underscore, whitespace, dots
// and dashes, and trims surrounding space.
func CleanName(s string) string {
	return strings.TrimSpace(cleanRe.ReplaceAllString(s, ""))
}

// BaseName returns the base used for the node's statement identity: the
// first of label, name and type ID that survives CleanName.
func (n *Node) BaseName() string {
	for _, s := range []string{n.Label, n.Name, n.TypeID} {
		if c := CleanName(s); c != "" {
			return c
		}
	}
	return "Node"
}

// Namer hands out "#n" occurrence suffixes for display bases. Each
// statement block gets its own Namer, so identities restart at #1 for
// the top level and for every group, and two runs over the same graph
// produce identical output. Counters are 1-based and per base name.
type Namer struct {
	counts map[string]int
}

// NewNamer creates an empty Namer.
func NewNamer() *Namer { return &Namer{counts: make(map[string]int)} }

// Next returns base with its next occurrence suffix, e.g. "Math#1",
// then "Math#2".
func (m *Namer) Next(base string) string {
	m.counts[base]++
	return fmt.Sprintf("%s#%d", base, m.counts[base])
}
