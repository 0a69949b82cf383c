package extraTree

import "math"

// Impurity scores the groups produced by a candidate split. Lower is better;
// zero means every non-empty group holds a single class.
type Impurity[L Label] func(groups ...[]L) float64

type Criterion string

const (
	GiniCriterion    Criterion = "gini"
	EntropyCriterion Criterion = "entropy"
)

func impurityFor[L Label](c Criterion) Impurity[L] {
	if c == EntropyCriterion {
		return Entropy[L]
	}
	return Gini[L]
}

// Gini returns the size-weighted Gini impurity of the groups, where a group's
// impurity is 1 - sum over classes of p_c^2. Empty groups carry no weight.
func Gini[L Label](groups ...[]L) float64 {
	return weighted(groups, getGini[L])
}

// Entropy returns the size-weighted Shannon entropy (natural log) of the groups.
func Entropy[L Label](groups ...[]L) float64 {
	return weighted(groups, getEntropy[L])
}

func weighted[L Label](groups [][]L, measure func(tally[L], int) float64) float64 {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	if total == 0 {
		return 0
	}
	score := 0.0
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		score += float64(len(g)) / float64(total) * measure(countLabels(g), len(g))
	}
	return score
}

func getGini[L Label](t tally[L], total int) float64 {
	sum := 0.0
	for _, l := range t.order {
		p := float64(t.counts[l]) / float64(total)
		sum += p * p
	}
	return 1.0 - sum
}

func getEntropy[L Label](t tally[L], total int) float64 {
	entropy := 0.0
	for _, l := range t.order {
		v := float64(t.counts[l]) / float64(total)
		entropy += v * math.Log(1.0/v)
	}
	return entropy
}

// tally counts labels and remembers the order in which they were first seen.
type tally[L Label] struct {
	order  []L
	counts map[L]int
}

func countLabels[L Label](labels []L) tally[L] {
	t := tally[L]{counts: make(map[L]int)}
	for _, l := range labels {
		if _, ok := t.counts[l]; !ok {
			t.order = append(t.order, l)
		}
		t.counts[l]++
	}
	return t
}

// majority returns the most frequent label; ties go to the label seen first.
func (t tally[L]) majority() (L, int) {
	var best L
	bestCount := 0
	for _, l := range t.order {
		if c := t.counts[l]; c > bestCount {
			best = l
			bestCount = c
		}
	}
	return best, bestCount
}
