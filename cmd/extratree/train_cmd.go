package main

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeidlermicha/extraTree"
	"github.com/zeidlermicha/extraTree/mongostore"
)

type trainCmdConfig struct {
	*rootCmdConfig
	dataInput  string
	configFile string
	output     string
	mongoURI   string
	mongoDB    string
	name       string

	maxFeatures  int
	tolerance    float64
	minSamples   int
	maxDepth     int
	criterion    string
	trees        int
	sampleFactor float64
	workers      int
	seed         uint64
}

func (c *trainCmdConfig) Validate() error {
	if c.dataInput == "" {
		return errors.New("a data file is required (--data)")
	}
	if c.output == "" && c.mongoURI == "" {
		return errors.New("an output file (--output) or a MongoDB URI (--mongo-uri) is required")
	}
	if c.mongoURI != "" && c.name == "" {
		return errors.New("a model name (--name) is required to store it in MongoDB")
	}
	return nil
}

// forestConfig reads the config file, if any, and applies the flags set on cmd over it.
func (c *trainCmdConfig) forestConfig(cmd *cobra.Command) (extraTree.ForestConfig, error) {
	cfg := extraTree.DefaultForestConfig()
	if c.configFile != "" {
		var err error
		if cfg, err = extraTree.LoadConfig(c.configFile); err != nil {
			return cfg, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("max-features") {
		cfg.MaxFeatures = c.maxFeatures
	}
	if flags.Changed("tolerance") {
		cfg.Tolerance = c.tolerance
	}
	if flags.Changed("min-samples") {
		cfg.MinSamplesToSplit = c.minSamples
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = c.maxDepth
	}
	if flags.Changed("criterion") {
		cfg.Criterion = extraTree.Criterion(c.criterion)
	}
	if flags.Changed("trees") {
		cfg.NumTrees = c.trees
	}
	if flags.Changed("sample-factor") {
		cfg.SampleFactor = c.sampleFactor
	}
	if flags.Changed("workers") {
		cfg.Workers = c.workers
	}
	if flags.Changed("seed") {
		cfg.Seed = c.seed
	}
	return cfg, cfg.Validate()
}

func trainCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &trainCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a tree or a forest from a CSV file",
		Long: `Train an extra tree, or a forest of them when --trees is above 1, from a CSV
file of numeric features with the label in the last column.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			cfg, err := config.forestConfig(cmd)
			if err != nil {
				return err
			}
			logger := config.logger()

			X, Y, err := readCSVFile(config.dataInput)
			if err != nil {
				return err
			}
			logger.Info("training",
				slog.Int("rows", len(X)),
				slog.Int("trees", cfg.NumTrees),
				slog.String("criterion", string(cfg.Criterion)))

			start := time.Now()
			m, err := train(cmd, cfg, logger, X, Y)
			if err != nil {
				return err
			}
			logger.Info("training done", slog.Duration("took", time.Since(start)))

			if config.output != "" {
				if err := m.writeFile(config.output); err != nil {
					return err
				}
				logger.Info("model written", slog.String("path", config.output))
			}
			if config.mongoURI != "" {
				store, disconnect, err := mongostore.Connect(cmd.Context(), config.mongoURI, config.mongoDB)
				if err != nil {
					return err
				}
				defer disconnect(cmd.Context())
				if err := m.save(cmd.Context(), store, config.name); err != nil {
					return err
				}
				logger.Info("model stored", slog.String("name", config.name))
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&(config.dataInput), "data", "d", "", "CSV file with the training rows")
	flags.StringVarP(&(config.configFile), "config", "c", "", "YAML file with the training configuration")
	flags.StringVarP(&(config.output), "output", "o", "", "file to write the trained model to")
	flags.StringVar(&(config.mongoURI), "mongo-uri", "", "MongoDB URI to store the trained model at")
	flags.StringVar(&(config.mongoDB), "mongo-db", "extratree", "MongoDB database")
	flags.StringVar(&(config.name), "name", "", "name to store the model under in MongoDB")
	flags.IntVar(&(config.maxFeatures), "max-features", 0, "features tried per split")
	flags.Float64Var(&(config.tolerance), "tolerance", 0, "impurity at which the split search stops")
	flags.IntVar(&(config.minSamples), "min-samples", 0, "minimum number of rows to split a node")
	flags.IntVar(&(config.maxDepth), "max-depth", 0, "maximum depth of the tree, 0 for unbounded")
	flags.StringVar(&(config.criterion), "criterion", "", "impurity measure, gini or entropy")
	flags.IntVar(&(config.trees), "trees", 0, "number of trees, 1 trains a single tree")
	flags.Float64Var(&(config.sampleFactor), "sample-factor", 0, "bootstrap size as a fraction of the rows, 0 uses every row")
	flags.IntVar(&(config.workers), "workers", 0, "number of trees trained at once")
	flags.Uint64Var(&(config.seed), "seed", 0, "random seed, 0 seeds from the clock")
	return cmd
}

func train(cmd *cobra.Command, cfg extraTree.ForestConfig, logger *slog.Logger, X [][]float64, Y []string) (*model, error) {
	if cfg.NumTrees == 1 {
		ds, err := extraTree.NewLabeled(X, Y)
		if err != nil {
			return nil, err
		}
		seed := cfg.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		b := extraTree.NewBuilder[float64, string](cfg.Config, extraTree.NewSource(seed))
		b.Logger = logger
		t, err := b.Build(ds)
		if err != nil {
			return nil, err
		}
		return treeModel(t), nil
	}

	forest := extraTree.NewForest[float64, string](cfg)
	forest.Logger = logger
	if err := forest.Train(cmd.Context(), X, Y); err != nil {
		return nil, err
	}
	return forestModel(forest), nil
}
