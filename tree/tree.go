package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/XRotoX/sdlc-models/feature"
)

// Node is a node of a grown decision tree: either a *Leaf or a
// *Decision. The type is sealed so that consumers can dispatch on
// the two variants with a type switch and the compiler can see
// there are no others.
type Node interface {
	fmt.Stringer
	node()
}

// Leaf is a terminal node. It holds, for every label value seen in
// the samples that reached it, how many of them carried that
// label. Leaves are never mutated after creation.
type Leaf struct {
	counts map[string]int
	weight int
}

// Decision is an internal node. It holds the question that best
// split the samples that reached it and exclusively owns the two
// subtrees grown from the samples answering true and false. Both
// branches are always non-nil.
type Decision struct {
	Question feature.Question
	True     Node
	False    Node
}

// NewLeaf takes a map from label value to occurrence count and
// returns a Leaf summarizing it. The map is copied: the leaf does
// not alias the caller's storage.
func NewLeaf(counts map[string]int) *Leaf {
	owned := make(map[string]int, len(counts))
	var weight int
	for label, count := range counts {
		owned[label] = count
		weight += count
	}
	return &Leaf{counts: owned, weight: weight}
}

// NewDecision takes a question and the two subtrees grown from the
// samples that answer it true and false, and returns the Decision
// node holding them.
func NewDecision(q feature.Question, trueBranch, falseBranch Node) *Decision {
	return &Decision{Question: q, True: trueBranch, False: falseBranch}
}

// Counts returns the label-count mapping of the leaf. Callers must
// not modify the returned map.
func (l *Leaf) Counts() map[string]int {
	return l.counts
}

// CountFor returns how many samples with the given label value
// reached the leaf.
func (l *Leaf) CountFor(label string) int {
	return l.counts[label]
}

// Weight returns the total number of samples that reached the
// leaf.
func (l *Leaf) Weight() int {
	return l.weight
}

func (l *Leaf) node() {}

func (l *Leaf) String() string {
	labels := make([]string, 0, len(l.counts))
	for label := range l.counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%s: %d", label, l.counts[label]))
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}

func (d *Decision) node() {}

func (d *Decision) String() string {
	return Sprint(d)
}
