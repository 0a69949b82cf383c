package extraTree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubConfig() Config {
	return Config{MaxFeatures: 1, Tolerance: 0, MinSamplesToSplit: 2}
}

func TestBuildFourRowScenario(t *testing.T) {
	ds := mustLabeled(t, [][]float64{{1}, {2}, {3}, {4}}, []string{"A", "A", "B", "B"})

	// row 1 holds the separating value 2
	tree, err := NewBuilder[float64, string](stubConfig(), &stubSource{rows: []int{1}}).Build(ds)
	require.NoError(t, err)

	root, ok := tree.Root.(*Decision[float64, string])
	require.True(t, ok, "root should be a decision node")
	assert.Equal(t, 0, root.Column)
	assert.Equal(t, 2.0, root.Value)
	assert.Equal(t, 0.0, root.Impurity)
	assert.Equal(t, 0.5, root.Gain)
	assert.Equal(t, 4, root.Size)

	assert.Equal(t, &Leaf[float64, string]{Label: "A", Purity: 1, Size: 2}, root.Left)
	assert.Equal(t, &Leaf[float64, string]{Label: "B", Purity: 1, Size: 2}, root.Right)

	label, err := tree.Predict([]float64{1})
	require.NoError(t, err)
	assert.Equal(t, "A", label)

	label, purity, err := tree.PredictProba([]float64{4})
	require.NoError(t, err)
	assert.Equal(t, "B", label)
	assert.Equal(t, 1.0, purity)
}

func TestBuildPureDatasetSkipsSplitting(t *testing.T) {
	ds := mustLabeled(t, [][]float64{{1, 2}, {3, 4}, {5, 6}}, []string{"A", "A", "A"})
	for _, cfg := range []Config{stubConfig(), DefaultConfig(), {MaxFeatures: 2, Tolerance: 0.5, MinSamplesToSplit: 10, MaxDepth: 1}} {
		imp := &countingImpurity[string]{fn: Gini[string]}
		src := &stubSource{rows: []int{0}}
		b := NewBuilder[float64, string](cfg, src)
		b.impurity = imp.impurity

		tree, err := b.Build(ds)
		require.NoError(t, err)
		assert.Equal(t, &Leaf[float64, string]{Label: "A", Purity: 1, Size: 3}, tree.Root)
		assert.Equal(t, 0, imp.calls)
		assert.Equal(t, 0, src.shuffles)
	}
}

func TestBuildBelowMinSamples(t *testing.T) {
	ds := mustLabeled(t, [][]float64{{1}, {2}, {3}}, []string{"B", "A", "A"})
	cfg := stubConfig()
	cfg.MinSamplesToSplit = 4

	tree, err := NewBuilder[float64, string](cfg, &stubSource{rows: []int{0}}).Build(ds)
	require.NoError(t, err)
	assert.Equal(t, &Leaf[float64, string]{Label: "A", Purity: 2.0 / 3, Size: 3}, tree.Root)
}

func TestBuildMaxDepth(t *testing.T) {
	X, Y := noisyGrid(3, 300)
	ds := mustLabeled(t, X, Y)
	cfg := DefaultConfig()
	cfg.MaxDepth = 2

	tree, err := NewBuilder[float64, string](cfg, NewSource(11)).Build(ds)
	require.NoError(t, err)
	assert.LessOrEqual(t, tree.Depth(), 2)
}

func TestBuildDegenerateSplitMakesLeaf(t *testing.T) {
	ds := mustLabeled(t, [][]float64{{1}, {2}, {3}, {4}}, []string{"A", "B", "B", "A"})

	// threshold 4 sends every row left
	tree, err := NewBuilder[float64, string](stubConfig(), &stubSource{rows: []int{3}}).Build(ds)
	require.NoError(t, err)
	assert.Equal(t, &Leaf[float64, string]{Label: "A", Purity: 0.5, Size: 4}, tree.Root)
}

func TestBuildErrors(t *testing.T) {
	ds := mustLabeled(t, [][]float64{{1}}, []string{"A"})
	cases := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"max features", Config{MaxFeatures: 0, MinSamplesToSplit: 2}, "max_features"},
		{"min samples", Config{MaxFeatures: 1, MinSamplesToSplit: 1}, "min_samples_to_split"},
		{"tolerance", Config{MaxFeatures: 1, MinSamplesToSplit: 2, Tolerance: -0.1}, "tolerance"},
		{"max depth", Config{MaxFeatures: 1, MinSamplesToSplit: 2, MaxDepth: -1}, "max_depth"},
		{"criterion", Config{MaxFeatures: 1, MinSamplesToSplit: 2, Criterion: "variance"}, "criterion"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			counted := &countingDataset{Dataset: ds}
			_, err := NewBuilder[float64, string](c.cfg, nil).Build(counted)
			require.ErrorIs(t, err, ErrInvalidConfig)
			var ce *ConfigError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, c.field, ce.Field)
			assert.Equal(t, 0, counted.calls, "no row may be read before the config is validated")
		})
	}

	empty := mustLabeled[float64, string](t, nil, nil)
	_, err := Train[float64, string](empty, DefaultConfig())
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = Train[float64, string](nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

// zeroWidthDataset hides the features of a dataset that still has rows.
type zeroWidthDataset struct {
	Dataset[float64, string]
}

func (zeroWidthDataset) NumFeatures() int { return 0 }

func TestBuildRejectsDatasetWithoutFeatures(t *testing.T) {
	ds := zeroWidthDataset{mustLabeled(t, [][]float64{{1}, {2}}, []string{"A", "B"})}

	var tree *Tree[float64, string]
	var err error
	require.NotPanics(t, func() {
		tree, err = NewBuilder[float64, string](DefaultConfig(), NewSource(1)).Build(ds)
	})
	assert.ErrorIs(t, err, ErrNoFeatures)
	assert.Nil(t, tree)
}

// countingDataset counts every call made on it.
type countingDataset struct {
	Dataset[float64, string]
	calls int
}

func (p *countingDataset) NumRows() int {
	p.calls++
	return p.Dataset.NumRows()
}

func (p *countingDataset) Labels() []string {
	p.calls++
	return p.Dataset.Labels()
}

func (p *countingDataset) Row(i int) ([]float64, string) {
	p.calls++
	return p.Dataset.Row(i)
}

func TestBuildPartitionsEveryRowOnce(t *testing.T) {
	X, Y := noisyGrid(5, 400)
	ds := mustLabeled(t, X, Y)

	for seed := uint64(1); seed <= 10; seed++ {
		cfg := DefaultConfig()
		cfg.MaxFeatures = 2
		cfg.Tolerance = 0
		tree, err := NewBuilder[float64, string](cfg, NewSource(seed)).Build(ds)
		require.NoError(t, err)

		total := 0
		for _, l := range tree.Leaves() {
			total += l.Size
		}
		require.Equal(t, len(X), total)

		walk(tree.Root, func(n Node[float64, string], _ int) {
			if d, ok := n.(*Decision[float64, string]); ok {
				require.Equal(t, d.Size, size(d.Left)+size(d.Right))
				require.Positive(t, size(d.Left))
				require.Positive(t, size(d.Right))
			}
		}, 0)

		// routing the training rows reproduces the partition of every leaf
		routed := make(map[*Leaf[float64, string]][]string)
		for i, row := range X {
			leaf, err := tree.leaf(row)
			require.NoError(t, err)
			routed[leaf] = append(routed[leaf], Y[i])

			if leaf.Purity == 1 {
				label, purity, err := tree.PredictProba(row)
				require.NoError(t, err)
				assert.Equal(t, Y[i], label)
				assert.Equal(t, 1.0, purity)
			}
		}
		require.Len(t, routed, len(tree.Leaves()))
		for leaf, labels := range routed {
			require.Equal(t, leaf.Size, len(labels))
			want := genLeafNode[float64](labels)
			require.Equal(t, want.Label, leaf.Label)
			require.InDelta(t, want.Purity, leaf.Purity, 1e-12)
		}
	}
}

func size(n Node[float64, string]) int {
	switch n := n.(type) {
	case *Leaf[float64, string]:
		return n.Size
	case *Decision[float64, string]:
		return n.Size
	}
	return 0
}

func TestBuildDeterministicPerSeed(t *testing.T) {
	X, Y := noisyGrid(9, 200)
	ds := mustLabeled(t, X, Y)

	a, err := NewBuilder[float64, string](DefaultConfig(), NewSource(42)).Build(ds)
	require.NoError(t, err)
	b, err := NewBuilder[float64, string](DefaultConfig(), NewSource(42)).Build(ds)
	require.NoError(t, err)
	assert.Equal(t, a.Document(), b.Document())
}

func TestImportance(t *testing.T) {
	ds := mustLabeled(t, [][]float64{{1, 0}, {2, 0}, {3, 0}, {4, 0}}, []string{"A", "A", "B", "B"})
	tree, err := NewBuilder[float64, string](stubConfig(), &stubSource{rows: []int{1}}).Build(ds)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, tree.Importance())

	leafOnly := &Tree[float64, string]{Root: &Leaf[float64, string]{Label: "A", Purity: 1, Size: 1}, Features: 2}
	assert.Equal(t, []float64{0, 0}, leafOnly.Importance())
}
