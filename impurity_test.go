package extraTree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGini(t *testing.T) {
	cases := []struct {
		name   string
		groups [][]string
		want   float64
	}{
		{"single class", [][]string{{"a", "a", "a"}}, 0},
		{"even two class", [][]string{{"a", "b", "a", "b"}}, 0.5},
		{"pure groups", [][]string{{"a", "a"}, {"b", "b", "b"}}, 0},
		{"empty group has no weight", [][]string{{"a", "b"}, {}}, 0.5},
		{"all empty", [][]string{{}, {}}, 0},
		{"no groups", nil, 0},
		// left 1/3 at 0, right 2/3 at 1-(1/4+1/4)
		{"weighted", [][]string{{"a"}, {"a", "b"}}, 1.0 / 3},
		{"three classes", [][]string{{"a", "b", "c"}}, 2.0 / 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, Gini(c.groups...), 1e-12)
		})
	}
}

func TestGiniExactValues(t *testing.T) {
	assert.Equal(t, 0.0, Gini([]int{7, 7, 7, 7}))
	assert.Equal(t, 0.5, Gini([]int{1, 2}))
}

func TestEntropy(t *testing.T) {
	assert.Equal(t, 0.0, Entropy([]string{"a", "a"}, []string{"b"}))
	assert.InDelta(t, math.Ln2, Entropy([]string{"a", "b"}), 1e-12)
	assert.InDelta(t, math.Ln2/2, Entropy([]string{"a", "b"}, []string{"c", "c"}), 1e-12)
}

func TestImpurityFor(t *testing.T) {
	labels := []string{"a", "b"}
	assert.Equal(t, 0.5, impurityFor[string](GiniCriterion)(labels))
	assert.Equal(t, 0.5, impurityFor[string]("")(labels))
	assert.InDelta(t, math.Ln2, impurityFor[string](EntropyCriterion)(labels), 1e-12)
}

func TestMajorityTieGoesToFirstSeen(t *testing.T) {
	l, n := countLabels([]string{"b", "a", "a", "b", "c"}).majority()
	assert.Equal(t, "b", l)
	assert.Equal(t, 2, n)
}
