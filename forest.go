package extraTree

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"time"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

var NUM_CPU = runtime.NumCPU()

func shiftLeft[E any](nums []E, n int) []E {
	n = n % len(nums)
	return nums[n:len(nums):len(nums)]
}

// ForestTree is a member of a Forest. Validation is its accuracy on the
// buffered rows left out of its bootstrap sample, or -1 when none were.
type ForestTree[F Feature, L Label] struct {
	*Tree[F, L]
	Validation float64
}

// Forest is an ensemble of extra trees. Every tree is grown on its own Source
// seeded from the forest's seed, so results do not depend on scheduling.
type Forest[F Feature, L Label] struct {
	ForestConfig
	Features int
	Classes  int
	Trees    []*ForestTree[F, L]
	Data     [][]F
	Labels   []L
	Logger   *slog.Logger

	seed  uint64
	drawn int
}

func NewForest[F Feature, L Label](cfg ForestConfig) *Forest[F, L] {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Forest[F, L]{
		ForestConfig: cfg,
		Trees:        make([]*ForestTree[F, L], 0),
		seed:         seed,
	}
}

// treeSeeds returns the next n per-tree seeds of the master stream without
// consuming them.
func (forest *Forest[F, L]) treeSeeds(n int) []uint64 {
	master := rand.New(rand.NewSource(forest.seed))
	for i := 0; i < forest.drawn; i++ {
		master.Uint64()
	}
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = master.Uint64()
	}
	return seeds
}

func (forest *Forest[F, L]) logger() *slog.Logger {
	if forest.Logger == nil {
		return slog.Default()
	}
	return forest.Logger
}

// Train adds the rows to the forest's buffer, dropping the oldest ones beyond
// BufferSize, and grows NumTrees new trees on the buffered rows. On error the
// forest is left as it was.
func (forest *Forest[F, L]) Train(ctx context.Context, inputs [][]F, labels []L) error {
	if err := forest.ForestConfig.Validate(); err != nil {
		return err
	}
	if _, err := NewLabeled(inputs, labels); err != nil {
		return err
	}
	if forest.Features > 0 && len(inputs) > 0 && len(inputs[0]) != forest.Features {
		return &DimensionError{Want: forest.Features, Got: len(inputs[0])}
	}

	buffer := append(forest.Data[:len(forest.Data):len(forest.Data)], inputs...)
	bufferLabels := append(forest.Labels[:len(forest.Labels):len(forest.Labels)], labels...)
	if forest.BufferSize > 0 && len(buffer) > forest.BufferSize {
		buffer = shiftLeft(buffer, len(buffer)-forest.BufferSize)
		bufferLabels = shiftLeft(bufferLabels, len(bufferLabels)-forest.BufferSize)
	}
	if len(buffer) == 0 {
		return ErrEmptyDataset
	}
	if len(buffer[0]) == 0 {
		return ErrNoFeatures
	}

	features := len(buffer[0])
	classes := len(countLabels(bufferLabels).order)
	data := newLabeled(buffer, bufferLabels, features)
	seeds := forest.treeSeeds(forest.NumTrees)

	workers := forest.Workers
	if workers < 1 {
		workers = 1
	}

	trees := make([]*ForestTree[F, L], len(seeds))
	progCounter := 0
	mutex := &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range seeds {
		x := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			forest.logger().Debug("building tree", slog.Int("tree", x))

			tree, err := forest.BuildTree(data, NewSource(seeds[x]))
			if err != nil {
				return fmt.Errorf("tree %d: %w", x, err)
			}
			trees[x] = tree

			mutex.Lock()
			progCounter++
			forest.logger().Info("training progress",
				slog.Int("done", progCounter),
				slog.Int("total", len(seeds)))
			mutex.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	forest.Data = buffer
	forest.Labels = bufferLabels
	forest.Features = features
	forest.Classes = classes
	forest.drawn += len(seeds)
	forest.Trees = append(forest.Trees, trees...)
	return nil
}

// BuildTree grows one tree on a bootstrap sample of data drawn with src and
// scores it on the rows the sample missed.
func (forest *Forest[F, L]) BuildTree(data *Labeled[F, L], src Source) (*ForestTree[F, L], error) {
	sample := data
	used := make([]bool, data.NumRows())
	if forest.SampleFactor > 0 {
		size := int(float64(data.NumRows()) * forest.SampleFactor)
		if size < 1 {
			size = 1
		}
		index := make([]int, size)
		for i := range index {
			index[i] = src.Intn(data.NumRows())
			used[index[i]] = true
		}
		sample = data.Subset(index)
	} else {
		for i := range used {
			used[i] = true
		}
	}

	builder := NewBuilder[F, L](forest.Config, src)
	builder.Logger = forest.logger()
	tree, err := builder.Build(sample)
	if err != nil {
		return nil, err
	}

	count := 0
	correct := 0
	for i := 0; i < data.NumRows(); i++ {
		if used[i] {
			continue
		}
		row, label := data.Row(i)
		predicted, err := tree.Predict(row)
		if err != nil {
			return nil, err
		}
		count++
		if predicted == label {
			correct++
		}
	}

	validation := -1.0
	if count > 0 {
		validation = float64(correct) / float64(count)
	}
	return &ForestTree[F, L]{Tree: tree, Validation: validation}, nil
}

// ballot accumulates weighted votes; ties go to the label voted for first.
type ballot[L Label] struct {
	order   []L
	weights map[L]float64
}

func newBallot[L Label]() *ballot[L] {
	return &ballot[L]{weights: make(map[L]float64)}
}

func (b *ballot[L]) add(label L, w float64) {
	if _, ok := b.weights[label]; !ok {
		b.order = append(b.order, label)
	}
	b.weights[label] += w
}

func (b *ballot[L]) winner() (L, float64) {
	var best L
	bestWeight := math.Inf(-1)
	for _, l := range b.order {
		if w := b.weights[l]; w > bestWeight {
			best = l
			bestWeight = w
		}
	}
	return best, bestWeight
}

func (forest *Forest[F, L]) check(input []F) error {
	if len(forest.Trees) == 0 {
		return ErrNotTrained
	}
	if len(input) != forest.Features {
		return &DimensionError{Want: forest.Features, Got: len(input)}
	}
	return nil
}

// Predict returns the label most trees vote for.
func (forest *Forest[F, L]) Predict(input []F) (L, error) {
	var zero L
	b, err := forest.vote(input)
	if err != nil {
		return zero, err
	}
	l, _ := b.winner()
	return l, nil
}

// PredictWithData returns the share of trees voting for each label. Each tree
// casts one vote for its leaf label, so the values are vote shares rather
// than class probabilities.
func (forest *Forest[F, L]) PredictWithData(input []F) (map[L]float64, error) {
	b, err := forest.vote(input)
	if err != nil {
		return nil, err
	}
	for l := range b.weights {
		b.weights[l] /= float64(len(forest.Trees))
	}
	return b.weights, nil
}

func (forest *Forest[F, L]) vote(input []F) (*ballot[L], error) {
	if err := forest.check(input); err != nil {
		return nil, err
	}
	b := newBallot[L]()
	for _, t := range forest.Trees {
		l, err := t.Predict(input)
		if err != nil {
			return nil, err
		}
		b.add(l, 1)
	}
	return b, nil
}

// WeightedPredict weighs each tree's vote by 0.5*ln((K-1)(1-e)/e), e being
// its out-of-bag error. Trees with a non-positive weight or no out-of-bag
// rows abstain; when all abstain it falls back to Predict.
func (forest *Forest[F, L]) WeightedPredict(input []F) (L, error) {
	var zero L
	if err := forest.check(input); err != nil {
		return zero, err
	}
	b := newBallot[L]()
	total := 0.0
	for _, t := range forest.Trees {
		if t.Validation < 0 {
			continue
		}
		e := 1.0001 - t.Validation
		w := 0.5 * math.Log(float64(forest.Classes-1)*(1-e)/e)
		if w > 0 {
			l, err := t.Predict(input)
			if err != nil {
				return zero, err
			}
			b.add(l, w)
			total += w
		}
	}
	if total == 0 {
		return forest.Predict(input)
	}
	l, _ := b.winner()
	return l, nil
}

// Importance averages the trees' feature importances.
func (forest *Forest[F, L]) Importance() []float64 {
	imp := make([]float64, forest.Features)
	for _, t := range forest.Trees {
		floats.Add(imp, t.Importance())
	}
	if len(forest.Trees) > 0 {
		floats.Scale(1/float64(len(forest.Trees)), imp)
	}
	return imp
}

type ForestTreeDocument[F Feature, L Label] struct {
	Tree       TreeDocument[F, L] `json:"tree" bson:"tree"`
	Validation float64            `json:"validation" bson:"validation"`
}

// ForestDocument is the stored form of a Forest. The row buffer is not kept.
// Seed and SeedsDrawn record the position in the per-tree seed stream, so a
// reloaded forest grows new trees from fresh seeds.
type ForestDocument[F Feature, L Label] struct {
	Config     ForestConfig               `json:"config" bson:"config"`
	Features   int                        `json:"features" bson:"features"`
	Classes    int                        `json:"classes" bson:"classes"`
	Seed       uint64                     `json:"seed" bson:"seed"`
	SeedsDrawn int                        `json:"seeds_drawn" bson:"seeds_drawn"`
	Trees      []ForestTreeDocument[F, L] `json:"trees" bson:"trees"`
}

func (forest *Forest[F, L]) Document() ForestDocument[F, L] {
	doc := ForestDocument[F, L]{
		Config:     forest.ForestConfig,
		Features:   forest.Features,
		Classes:    forest.Classes,
		Seed:       forest.seed,
		SeedsDrawn: forest.drawn,
		Trees:      make([]ForestTreeDocument[F, L], len(forest.Trees)),
	}
	for i, t := range forest.Trees {
		doc.Trees[i] = ForestTreeDocument[F, L]{Tree: t.Document(), Validation: t.Validation}
	}
	return doc
}

// Forest rebuilds the forest. The rebuilt forest predicts like the original
// and may be trained further, starting from an empty buffer.
func (doc ForestDocument[F, L]) Forest() (*Forest[F, L], error) {
	forest := NewForest[F, L](doc.Config)
	forest.Features = doc.Features
	forest.Classes = doc.Classes
	if doc.Seed != 0 {
		forest.seed = doc.Seed
	}
	if doc.SeedsDrawn < 0 {
		return nil, fmt.Errorf("%w: negative seeds_drawn", ErrCorruptDocument)
	}
	forest.drawn = doc.SeedsDrawn
	for i, td := range doc.Trees {
		t, err := td.Tree.Tree()
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		forest.Trees = append(forest.Trees, &ForestTree[F, L]{Tree: t, Validation: td.Validation})
	}
	return forest, nil
}
