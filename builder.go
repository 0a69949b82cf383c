package extraTree

import (
	"log/slog"
	"time"
)

// Builder grows trees from datasets. A Builder draws on a single Source and
// must not be used by several goroutines at once.
type Builder[F Feature, L Label] struct {
	Config Config
	Logger *slog.Logger

	src      Source
	impurity Impurity[L]
}

// NewBuilder returns a Builder drawing on src. A nil src is replaced by one
// seeded from the clock.
func NewBuilder[F Feature, L Label](cfg Config, src Source) *Builder[F, L] {
	if src == nil {
		src = NewSource(uint64(time.Now().UnixNano()))
	}
	return &Builder[F, L]{
		Config:   cfg,
		src:      src,
		impurity: impurityFor[L](cfg.Criterion),
	}
}

// Train grows a tree from ds with a clock-seeded Source.
func Train[F Feature, L Label](ds Dataset[F, L], cfg Config) (*Tree[F, L], error) {
	return NewBuilder[F, L](cfg, nil).Build(ds)
}

// Build validates the configuration, then grows a tree depth-first from ds.
func (b *Builder[F, L]) Build(ds Dataset[F, L]) (*Tree[F, L], error) {
	if err := b.Config.Validate(); err != nil {
		return nil, err
	}
	if ds == nil || ds.NumRows() == 0 {
		return nil, ErrEmptyDataset
	}
	if ds.NumFeatures() < 1 {
		return nil, ErrNoFeatures
	}

	sp := newSplitter[F, L](ds.NumFeatures(), b.Config.MaxFeatures, b.Config.Tolerance, b.impurity, b.src)
	tree := &Tree[F, L]{
		Root:     b.grow(sp, ds, 0),
		Features: ds.NumFeatures(),
		Config:   b.Config,
	}

	if b.Logger != nil {
		b.Logger.Debug("tree built",
			slog.Int("rows", ds.NumRows()),
			slog.Int("depth", tree.Depth()),
			slog.Int("leaves", len(tree.Leaves())))
	}
	return tree, nil
}

func (b *Builder[F, L]) grow(sp *splitter[F, L], ds Dataset[F, L], depth int) Node[F, L] {
	labels := ds.Labels()
	if isPure(labels) {
		return &Leaf[F, L]{Label: labels[0], Purity: 1.0, Size: len(labels)}
	}
	if len(labels) < b.Config.MinSamplesToSplit {
		return genLeafNode[F](labels)
	}
	if b.Config.MaxDepth > 0 && depth >= b.Config.MaxDepth {
		return genLeafNode[F](labels)
	}

	split := sp.bestSplit(ds)
	if split.Left.NumRows() == 0 || split.Right.NumRows() == 0 {
		return genLeafNode[F](labels)
	}

	return &Decision[F, L]{
		Column:   split.Column,
		Value:    split.Value,
		Impurity: split.Impurity,
		Gain:     b.impurity(labels) - split.Impurity,
		Size:     len(labels),
		Left:     b.grow(sp, split.Left, depth+1),
		Right:    b.grow(sp, split.Right, depth+1),
	}
}

func isPure[L Label](labels []L) bool {
	for _, l := range labels[1:] {
		if l != labels[0] {
			return false
		}
	}
	return true
}
