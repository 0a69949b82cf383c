package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zeidlermicha/extraTree/mongostore"
)

type predictCmdConfig struct {
	*rootCmdConfig
	dataInput string
	model     string
	output    string
	mongoURI  string
	mongoDB   string
	name      string
}

func (c *predictCmdConfig) Validate() error {
	if c.dataInput == "" {
		return errors.New("a data file is required (--data)")
	}
	if (c.model == "") == (c.mongoURI == "") {
		return errors.New("exactly one of a model file (--model) or a MongoDB URI (--mongo-uri) is required")
	}
	if c.mongoURI != "" && c.name == "" {
		return errors.New("a model name (--name) is required to load it from MongoDB")
	}
	return nil
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the labels of the rows of a CSV file",
		Long: `Predict the label of every row of a CSV file with a trained model. The last
column of the file is ignored. Each output line holds the predicted label and
its confidence.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Validate(); err != nil {
				return err
			}
			logger := config.logger()

			var (
				m   *model
				err error
			)
			if config.model != "" {
				m, err = readModelFile(config.model)
			} else {
				store, disconnect, cErr := mongostore.Connect(cmd.Context(), config.mongoURI, config.mongoDB)
				if cErr != nil {
					return cErr
				}
				defer disconnect(cmd.Context())
				m, err = loadModel(cmd.Context(), store, config.name)
			}
			if err != nil {
				return err
			}
			logger.Debug("model loaded", slog.String("kind", m.Kind))

			X, _, err := readCSVFile(config.dataInput)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if config.output != "" {
				f, err := os.Create(config.output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return writePredictions(out, m, X)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&(config.dataInput), "data", "d", "", "CSV file with the rows to predict")
	flags.StringVarP(&(config.model), "model", "m", "", "model file written by train")
	flags.StringVarP(&(config.output), "output", "o", "", "file to write predictions to, stdout by default")
	flags.StringVar(&(config.mongoURI), "mongo-uri", "", "MongoDB URI to load the model from")
	flags.StringVar(&(config.mongoDB), "mongo-db", "extratree", "MongoDB database")
	flags.StringVar(&(config.name), "name", "", "name of the model in MongoDB")
	return cmd
}

func writePredictions(w io.Writer, m *model, X [][]float64) error {
	wtr := bufio.NewWriter(w)
	for i, sample := range X {
		label, confidence, err := m.predict(sample)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
		if _, err := fmt.Fprintf(wtr, "%s,%s\n", label, strconv.FormatFloat(confidence, 'f', -1, 64)); err != nil {
			return err
		}
	}
	return wtr.Flush()
}
