// Package extraTree grows extremely randomized classification trees.
//
// Split candidates are drawn from a random subset of features, each one
// evaluated at the value of a randomly drawn row, instead of searching every
// threshold. See P. Geurts et al. (2005) "Extremely Randomized Trees".
package extraTree

import (
	"reflect"
)

type Feature interface {
	~string | ~float64 | ~int
}

type Label interface {
	~string | ~int
}

type ColumnType int

const (
	CAT ColumnType = iota
	NUMERIC
)

// columnType reports how values of F are compared: string kinds by equality,
// everything else by order.
func columnType[F Feature]() ColumnType {
	if reflect.TypeOf((*F)(nil)).Elem().Kind() == reflect.String {
		return CAT
	}
	return NUMERIC
}

// satisfies is the comparison shared by partitioning and prediction.
// A value satisfying it belongs to the left group.
func satisfies[F Feature](ct ColumnType, value, threshold F) bool {
	if ct == CAT {
		return value == threshold
	}
	return value <= threshold
}

// Dataset is the labeled row container consumed by the tree builder.
type Dataset[F Feature, L Label] interface {
	NumRows() int
	NumFeatures() int
	Row(i int) ([]F, L)
	Labels() []L
	// Partition splits the rows on column at value. The left group holds the
	// rows satisfying the comparison, the right group the rest.
	Partition(column int, value F) (Dataset[F, L], Dataset[F, L])
}

// Labeled is an in-memory Dataset. Rows are shared by reference between a
// Labeled and every partition or subset taken from it.
type Labeled[F Feature, L Label] struct {
	samples  [][]F
	labels   []L
	features int
	column   ColumnType
}

// NewLabeled wraps samples and their labels. Every row must have the same,
// non-zero, number of features.
func NewLabeled[F Feature, L Label](samples [][]F, labels []L) (*Labeled[F, L], error) {
	if len(samples) != len(labels) {
		return nil, ErrLengthMismatch
	}
	features := 0
	if len(samples) > 0 {
		features = len(samples[0])
		if features == 0 {
			return nil, ErrRaggedDataset
		}
	}
	for _, s := range samples {
		if len(s) != features {
			return nil, ErrRaggedDataset
		}
	}
	return newLabeled(samples, labels, features), nil
}

func newLabeled[F Feature, L Label](samples [][]F, labels []L, features int) *Labeled[F, L] {
	return &Labeled[F, L]{
		samples:  samples,
		labels:   labels,
		features: features,
		column:   columnType[F](),
	}
}

func (d *Labeled[F, L]) NumRows() int { return len(d.samples) }

func (d *Labeled[F, L]) NumFeatures() int { return d.features }

func (d *Labeled[F, L]) Row(i int) ([]F, L) { return d.samples[i], d.labels[i] }

func (d *Labeled[F, L]) Samples() [][]F { return d.samples }

func (d *Labeled[F, L]) Labels() []L { return d.labels }

func (d *Labeled[F, L]) Partition(column int, value F) (Dataset[F, L], Dataset[F, L]) {
	left, right := d.partition(column, value)
	return left, right
}

func (d *Labeled[F, L]) partition(column int, value F) (*Labeled[F, L], *Labeled[F, L]) {
	partL := make([]int, 0, len(d.samples))
	partR := make([]int, 0, len(d.samples))
	for j := 0; j < len(d.samples); j++ {
		if satisfies(d.column, d.samples[j][column], value) {
			partL = append(partL, j)
		} else {
			partR = append(partR, j)
		}
	}
	return d.Subset(partL), d.Subset(partR)
}

// Subset returns the rows at index, in that order. Indices may repeat.
func (d *Labeled[F, L]) Subset(index []int) *Labeled[F, L] {
	return newLabeled(getSamples(d.samples, index), getLabels(d.labels, index), d.features)
}

func getSamples[F Feature](ary [][]F, index []int) [][]F {
	result := make([][]F, len(index))
	for i := 0; i < len(index); i++ {
		result[i] = ary[index[i]]
	}
	return result
}

func getLabels[L any](ary []L, index []int) []L {
	result := make([]L, len(index))
	for i := 0; i < len(index); i++ {
		result[i] = ary[index[i]]
	}
	return result
}
