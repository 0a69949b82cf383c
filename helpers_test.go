package extraTree

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// stubSource draws rows from a fixed cycle and never reorders the feature pool.
type stubSource struct {
	rows     []int
	next     int
	shuffles int
}

func (s *stubSource) Intn(n int) int {
	r := s.rows[s.next%len(s.rows)] % n
	s.next++
	return r
}

func (s *stubSource) Shuffle(n int, swap func(i, j int)) { s.shuffles++ }

// countingImpurity wraps fn and counts its calls.
type countingImpurity[L Label] struct {
	calls int
	fn    Impurity[L]
}

func (c *countingImpurity[L]) impurity(groups ...[]L) float64 {
	c.calls++
	return c.fn(groups...)
}

func constImpurity[L Label](score float64) Impurity[L] {
	return func(groups ...[]L) float64 { return score }
}

// scriptedImpurity returns scores in order, one per call.
func scriptedImpurity[L Label](scores ...float64) Impurity[L] {
	i := 0
	return func(groups ...[]L) float64 {
		s := scores[i]
		i++
		return s
	}
}

func mustLabeled[F Feature, L Label](t *testing.T, samples [][]F, labels []L) *Labeled[F, L] {
	t.Helper()
	ds, err := NewLabeled(samples, labels)
	require.NoError(t, err)
	return ds
}

// noisyGrid labels rows of four small integer features by x0+x1 with some
// labels flipped, so trees need several levels and end with impure leaves.
func noisyGrid(seed uint64, n int) ([][]float64, []string) {
	r := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	Y := make([]string, n)
	for i := range X {
		row := make([]float64, 4)
		for j := range row {
			row[j] = float64(r.Intn(10))
		}
		X[i] = row
		Y[i] = "low"
		if row[0]+row[1] > 9 {
			Y[i] = "high"
		}
		if r.Intn(10) == 0 {
			Y[i] = "noise"
		}
	}
	return X, Y
}
