package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/zeidlermicha/extraTree"
)

// Trains a forest on the UCI car evaluation data, whose features are all
// categorical, and reports its accuracy on the held out half.
func main() {
	start := time.Now()
	content, err := os.ReadFile("car.data")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	lines := strings.Split(string(content), "\n")

	inputs := make([][]string, 0)
	targets := make([]string, 0)
	for _, line := range lines {
		line = strings.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}
		tup := strings.Split(line, ",")
		inputs = append(inputs, tup[:len(tup)-1])
		targets = append(targets, tup[len(tup)-1])
	}

	trainInputs := make([][]string, 0)
	trainTargets := make([]string, 0)
	testInputs := make([][]string, 0)
	testTargets := make([]string, 0)
	for i := range inputs {
		if i%2 == 1 {
			testInputs = append(testInputs, inputs[i])
			testTargets = append(testTargets, targets[i])
		} else {
			trainInputs = append(trainInputs, inputs[i])
			trainTargets = append(trainTargets, targets[i])
		}
	}

	cfg := extraTree.DefaultForestConfig()
	cfg.NumTrees = 100
	cfg.MaxFeatures = 3
	cfg.SampleFactor = 0.8
	forest := extraTree.NewForest[string, string](cfg)
	if err := forest.Train(context.Background(), trainInputs, trainTargets); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	errCount := 0.0
	for i := range testInputs {
		output, err := forest.WeightedPredict(testInputs[i])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if output != testTargets[i] {
			errCount += 1
		}
	}
	fmt.Println("success rate:", 1.0-errCount/float64(len(testInputs)))
	fmt.Println("importance:", forest.Importance())
	fmt.Println(time.Since(start))
}
