package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/zeidlermicha/extraTree"
	"github.com/zeidlermicha/extraTree/mongostore"
)

const (
	kindTree   = "tree"
	kindForest = "forest"
)

// model is a trained tree or forest over numeric features and string labels.
type model struct {
	Kind   string                                     `json:"kind"`
	Tree   *extraTree.TreeDocument[float64, string]   `json:"tree,omitempty"`
	Forest *extraTree.ForestDocument[float64, string] `json:"forest,omitempty"`

	tree   *extraTree.Tree[float64, string]
	forest *extraTree.Forest[float64, string]
}

func treeModel(t *extraTree.Tree[float64, string]) *model {
	return &model{Kind: kindTree, tree: t}
}

func forestModel(f *extraTree.Forest[float64, string]) *model {
	return &model{Kind: kindForest, forest: f}
}

// predict returns the predicted label and, for trees, the purity of the leaf
// reached; for forests the share of trees voting for the label.
func (m *model) predict(sample []float64) (string, float64, error) {
	if m.tree != nil {
		return m.tree.PredictProba(sample)
	}
	if m.forest != nil {
		label, err := m.forest.Predict(sample)
		if err != nil {
			return "", 0, err
		}
		votes, err := m.forest.PredictWithData(sample)
		if err != nil {
			return "", 0, err
		}
		return label, votes[label], nil
	}
	return "", 0, extraTree.ErrNotTrained
}

func (m *model) writeFile(path string) error {
	switch m.Kind {
	case kindTree:
		doc := m.tree.Document()
		m.Tree = &doc
	case kindForest:
		doc := m.forest.Document()
		m.Forest = &doc
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

func readModelFile(path string) (*model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &model{}
	if err := json.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", path, err)
	}
	switch {
	case m.Kind == kindTree && m.Tree != nil:
		m.tree, err = m.Tree.Tree()
	case m.Kind == kindForest && m.Forest != nil:
		m.forest, err = m.Forest.Forest()
	default:
		err = fmt.Errorf("model %s has unknown kind %q", path, m.Kind)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *model) save(ctx context.Context, store *mongostore.Store, name string) error {
	if m.Kind == kindForest {
		return mongostore.SaveForest(ctx, store, name, m.forest)
	}
	return mongostore.SaveTree(ctx, store, name, m.tree)
}

// loadModel looks name up among stored trees, then among stored forests.
func loadModel(ctx context.Context, store *mongostore.Store, name string) (*model, error) {
	t, err := mongostore.LoadTree[float64, string](ctx, store, name)
	if err == nil {
		return treeModel(t), nil
	}
	if !errors.Is(err, mongostore.ErrNotFound) {
		return nil, err
	}
	f, err := mongostore.LoadForest[float64, string](ctx, store, name)
	if err != nil {
		return nil, err
	}
	return forestModel(f), nil
}
