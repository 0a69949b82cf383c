package extraTree

import "gonum.org/v1/gonum/floats"

// Node is either a *Decision or a *Leaf.
type Node[F Feature, L Label] interface {
	node()
}

// Decision routes a sample left when its value at Column satisfies the
// comparison against Value, right otherwise. It owns both children.
type Decision[F Feature, L Label] struct {
	Column   int
	Value    F
	Impurity float64 // weighted impurity of the two groups at creation
	Gain     float64 // impurity of the subset minus Impurity
	Size     int
	Left     Node[F, L]
	Right    Node[F, L]
}

// Leaf predicts the majority label of the rows that reached it. Purity is
// the fraction of those rows carrying Label.
type Leaf[F Feature, L Label] struct {
	Label  L
	Purity float64
	Size   int
}

func (*Decision[F, L]) node() {}
func (*Leaf[F, L]) node()     {}

func genLeafNode[F Feature, L Label](labels []L) *Leaf[F, L] {
	label, count := countLabels(labels).majority()
	return &Leaf[F, L]{
		Label:  label,
		Purity: float64(count) / float64(len(labels)),
		Size:   len(labels),
	}
}

// Tree is a trained extra tree. It is read-only once returned by a Builder
// and safe for concurrent prediction.
type Tree[F Feature, L Label] struct {
	Root     Node[F, L]
	Features int
	Config   Config
}

// walk visits n and its descendants in pre-order.
func walk[F Feature, L Label](n Node[F, L], visit func(Node[F, L], int), depth int) {
	visit(n, depth)
	if d, ok := n.(*Decision[F, L]); ok {
		walk(d.Left, visit, depth+1)
		walk(d.Right, visit, depth+1)
	}
}

// Depth returns the number of decision nodes on the longest root-to-leaf path.
func (t *Tree[F, L]) Depth() int {
	depth := 0
	walk(t.Root, func(n Node[F, L], d int) {
		if _, ok := n.(*Leaf[F, L]); ok && d > depth {
			depth = d
		}
	}, 0)
	return depth
}

func (t *Tree[F, L]) Leaves() []*Leaf[F, L] {
	var leaves []*Leaf[F, L]
	walk(t.Root, func(n Node[F, L], _ int) {
		if l, ok := n.(*Leaf[F, L]); ok {
			leaves = append(leaves, l)
		}
	}, 0)
	return leaves
}

// Importance returns, per feature, the size-weighted impurity decrease of
// the decision nodes splitting on it, normalized to sum to 1.
func (t *Tree[F, L]) Importance() []float64 {
	imp := make([]float64, t.Features)
	walk(t.Root, func(n Node[F, L], _ int) {
		if d, ok := n.(*Decision[F, L]); ok {
			imp[d.Column] += float64(d.Size) * d.Gain
		}
	}, 0)
	if sum := floats.Sum(imp); sum > 0 {
		floats.Scale(1/sum, imp)
	}
	return imp
}
