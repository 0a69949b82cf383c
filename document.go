package extraTree

import "fmt"

// NodeDocument is one node of a flattened tree. Children are referenced by
// their position in TreeDocument.Nodes.
type NodeDocument[F Feature, L Label] struct {
	Leaf     bool    `json:"leaf" bson:"leaf"`
	Column   int     `json:"column,omitempty" bson:"column,omitempty"`
	Value    F       `json:"value" bson:"value"`
	Impurity float64 `json:"impurity,omitempty" bson:"impurity,omitempty"`
	Gain     float64 `json:"gain,omitempty" bson:"gain,omitempty"`
	Left     int     `json:"left,omitempty" bson:"left,omitempty"`
	Right    int     `json:"right,omitempty" bson:"right,omitempty"`
	Label    L       `json:"label" bson:"label"`
	Purity   float64 `json:"purity,omitempty" bson:"purity,omitempty"`
	Size     int     `json:"size" bson:"size"`
}

// TreeDocument is a tree laid out as an arena in pre-order, the root first.
type TreeDocument[F Feature, L Label] struct {
	Features int                  `json:"features" bson:"features"`
	Config   Config               `json:"config" bson:"config"`
	Nodes    []NodeDocument[F, L] `json:"nodes" bson:"nodes"`
}

// Document flattens the tree.
func (t *Tree[F, L]) Document() TreeDocument[F, L] {
	doc := TreeDocument[F, L]{Features: t.Features, Config: t.Config}
	if t.Root != nil {
		doc.flatten(t.Root)
	}
	return doc
}

func (doc *TreeDocument[F, L]) flatten(n Node[F, L]) int {
	pos := len(doc.Nodes)
	switch n := n.(type) {
	case *Leaf[F, L]:
		doc.Nodes = append(doc.Nodes, NodeDocument[F, L]{
			Leaf:   true,
			Label:  n.Label,
			Purity: n.Purity,
			Size:   n.Size,
		})
	case *Decision[F, L]:
		doc.Nodes = append(doc.Nodes, NodeDocument[F, L]{
			Column:   n.Column,
			Value:    n.Value,
			Impurity: n.Impurity,
			Gain:     n.Gain,
			Size:     n.Size,
		})
		left := doc.flatten(n.Left)
		right := doc.flatten(n.Right)
		doc.Nodes[pos].Left = left
		doc.Nodes[pos].Right = right
	}
	return pos
}

// Tree rebuilds the tree. Every node must be reachable from the root exactly
// once and every child must come after its parent.
func (doc TreeDocument[F, L]) Tree() (*Tree[F, L], error) {
	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrCorruptDocument)
	}
	seen := make([]bool, len(doc.Nodes))
	root, err := doc.rebuild(0, seen)
	if err != nil {
		return nil, err
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%w: node %d is unreachable", ErrCorruptDocument, i)
		}
	}
	return &Tree[F, L]{Root: root, Features: doc.Features, Config: doc.Config}, nil
}

func (doc TreeDocument[F, L]) rebuild(pos int, seen []bool) (Node[F, L], error) {
	if seen[pos] {
		return nil, fmt.Errorf("%w: node %d has two parents", ErrCorruptDocument, pos)
	}
	seen[pos] = true

	nd := doc.Nodes[pos]
	if nd.Leaf {
		return &Leaf[F, L]{Label: nd.Label, Purity: nd.Purity, Size: nd.Size}, nil
	}
	if nd.Column < 0 || nd.Column >= doc.Features {
		return nil, fmt.Errorf("%w: node %d splits on column %d of %d", ErrCorruptDocument, pos, nd.Column, doc.Features)
	}
	for _, child := range []int{nd.Left, nd.Right} {
		if child <= pos || child >= len(doc.Nodes) {
			return nil, fmt.Errorf("%w: node %d has child %d", ErrCorruptDocument, pos, child)
		}
	}

	left, err := doc.rebuild(nd.Left, seen)
	if err != nil {
		return nil, err
	}
	right, err := doc.rebuild(nd.Right, seen)
	if err != nil {
		return nil, err
	}
	return &Decision[F, L]{
		Column:   nd.Column,
		Value:    nd.Value,
		Impurity: nd.Impurity,
		Gain:     nd.Gain,
		Size:     nd.Size,
		Left:     left,
		Right:    right,
	}, nil
}
