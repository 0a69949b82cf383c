package extraTree

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictDimensionMismatch(t *testing.T) {
	ds := mustLabeled(t, [][]float64{{1, 1}, {2, 2}}, []string{"A", "B"})
	tree, err := Train[float64, string](ds, DefaultConfig())
	require.NoError(t, err)

	for _, sample := range [][]float64{{1}, {1, 2, 3}, nil} {
		_, err := tree.Predict(sample)
		require.ErrorIs(t, err, ErrDimensionMismatch)
		var de *DimensionError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, 2, de.Want)
		assert.Equal(t, len(sample), de.Got)
	}
}

func TestPredictNotTrained(t *testing.T) {
	var tree *Tree[float64, string]
	_, err := tree.Predict([]float64{1})
	assert.ErrorIs(t, err, ErrNotTrained)

	_, _, err = (&Tree[float64, string]{Features: 1}).PredictProba([]float64{1})
	assert.ErrorIs(t, err, ErrNotTrained)
}

func TestPredictCategorical(t *testing.T) {
	ds := mustLabeled(t,
		[][]string{{"red", "round"}, {"green", "round"}, {"red", "long"}, {"yellow", "long"}},
		[]string{"apple", "apple", "pepper", "banana"})

	// the stub never shuffles, so every split tries column 0 at the value of row 0
	cfg := Config{MaxFeatures: 1, MinSamplesToSplit: 2}
	tree, err := NewBuilder[string, string](cfg, &stubSource{rows: []int{0}}).Build(ds)
	require.NoError(t, err)

	root := tree.Root.(*Decision[string, string])
	assert.Equal(t, 0, root.Column)
	assert.Equal(t, "red", root.Value)

	cases := map[string][]string{
		"apple":  {"red", "round"},
		"banana": {"yellow", "long"},
	}
	for want, sample := range cases {
		got, err := tree.Predict(sample)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestPredictConcurrentReaders(t *testing.T) {
	X, Y := noisyGrid(21, 300)
	tree, err := NewBuilder[float64, string](DefaultConfig(), NewSource(3)).Build(mustLabeled(t, X, Y))
	require.NoError(t, err)

	want := make([]string, len(X))
	for i, row := range X {
		want[i], err = tree.Predict(row)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	got := make([][]string, 8)
	for g := range got {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			got[g] = make([]string, len(X))
			for i, row := range X {
				got[g][i], _ = tree.Predict(row)
			}
		}(g)
	}
	wg.Wait()
	for g := range got {
		assert.Equal(t, want, got[g])
	}
}

func TestPredictCorruptNode(t *testing.T) {
	tree := &Tree[float64, string]{
		Root:     &Decision[float64, string]{Column: 0, Value: 1, Left: nil, Right: nil},
		Features: 1,
	}
	_, err := tree.Predict([]float64{0})
	assert.ErrorIs(t, err, ErrCorruptDocument)
}
