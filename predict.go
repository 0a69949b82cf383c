package extraTree

import "fmt"

// Predict returns the label of the leaf reached by sample.
func (t *Tree[F, L]) Predict(sample []F) (L, error) {
	leaf, err := t.leaf(sample)
	if err != nil {
		var zero L
		return zero, err
	}
	return leaf.Label, nil
}

// PredictProba returns the label of the leaf reached by sample together
// with that leaf's purity.
func (t *Tree[F, L]) PredictProba(sample []F) (L, float64, error) {
	leaf, err := t.leaf(sample)
	if err != nil {
		var zero L
		return zero, 0, err
	}
	return leaf.Label, leaf.Purity, nil
}

func (t *Tree[F, L]) leaf(sample []F) (*Leaf[F, L], error) {
	if t == nil || t.Root == nil {
		return nil, ErrNotTrained
	}
	if len(sample) != t.Features {
		return nil, &DimensionError{Want: t.Features, Got: len(sample)}
	}

	ct := columnType[F]()
	node := t.Root
	for {
		switch n := node.(type) {
		case *Leaf[F, L]:
			return n, nil
		case *Decision[F, L]:
			if satisfies(ct, sample[n.Column], n.Value) {
				node = n.Left
			} else {
				node = n.Right
			}
		default:
			return nil, fmt.Errorf("%w: unexpected node %T", ErrCorruptDocument, node)
		}
	}
}
