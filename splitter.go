package extraTree

import "math"

// Split is the best candidate found by one round of split selection.
type Split[F Feature, L Label] struct {
	Column    int
	Value     F
	Left      Dataset[F, L]
	Right     Dataset[F, L]
	Impurity  float64
	Evaluated int // candidates scored before returning
}

type splitter[F Feature, L Label] struct {
	maxFeatures int
	tolerance   float64
	impurity    Impurity[L]
	src         Source
	indices     []int
}

func newSplitter[F Feature, L Label](nFeatures, maxFeatures int, tolerance float64, impurity Impurity[L], src Source) *splitter[F, L] {
	if maxFeatures > nFeatures {
		maxFeatures = nFeatures
	}
	indices := make([]int, nFeatures)
	for i := range indices {
		indices[i] = i
	}
	return &splitter[F, L]{
		maxFeatures: maxFeatures,
		tolerance:   tolerance,
		impurity:    impurity,
		src:         src,
		indices:     indices,
	}
}

// bestSplit shuffles the feature pool and scores the first maxFeatures
// features, each at the value of an independently drawn row. The lowest score
// wins, ties keep the earlier candidate, and the search stops at the first
// score within tolerance. ds must hold at least one row.
func (s *splitter[F, L]) bestSplit(ds Dataset[F, L]) Split[F, L] {
	best := Split[F, L]{Impurity: math.Inf(1)}

	s.src.Shuffle(len(s.indices), func(i, j int) {
		s.indices[i], s.indices[j] = s.indices[j], s.indices[i]
	})

	rows := ds.NumRows()
	for _, column := range s.indices[:s.maxFeatures] {
		sample, _ := ds.Row(s.src.Intn(rows))
		value := sample[column]

		left, right := ds.Partition(column, value)
		score := s.impurity(left.Labels(), right.Labels())
		best.Evaluated++

		if score < best.Impurity {
			best.Column = column
			best.Value = value
			best.Left = left
			best.Right = right
			best.Impurity = score
		}

		if score <= s.tolerance {
			break
		}
	}

	return best
}
