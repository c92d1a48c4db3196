// Package main provides the backprop CLI: train a multi-layer perceptron on
// MNIST (or synthetic data) with hand-written reverse-mode differentiation.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/backprop/internal/config"
	"github.com/born-ml/backprop/internal/data"
	"github.com/born-ml/backprop/internal/nn"
	"github.com/born-ml/backprop/internal/optim"
	"github.com/born-ml/backprop/internal/train"
	"github.com/pkg/errors"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("backprop %s\n", version)
	case "train":
		if err := runTrain(os.Args[2:]); err != nil {
			log.Fatalf("training failed: %v", err)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("backprop - MLP training with explicit reverse-mode differentiation")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  train      Train an MLP classifier (see: backprop train -h)")
	fmt.Println("  version    Show version")
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (optional)")
	dataDir := fs.String("data", "", "Directory containing MNIST IDX files")
	synthetic := fs.Bool("synthetic", false, "Use synthetic data instead of MNIST")
	samples := fs.Int("samples", 0, "Max samples to load (0 = all)")
	hidden := fs.String("hidden", "", "Hidden layer sizes, comma separated (e.g. 128,64)")
	epochs := fs.Int("epochs", 0, "Number of training epochs")
	batchSize := fs.Int("batch", 0, "Batch size")
	lr := fs.Float64("lr", 0, "SGD learning rate")
	seed := fs.Int64("seed", 0, "PRNG seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	hiddenSizes, err := parseSizes(*hidden)
	if err != nil {
		return err
	}
	cfg.ApplyOverrides(config.Overrides{
		DataDir:      *dataDir,
		Synthetic:    *synthetic,
		Samples:      *samples,
		Hidden:       hiddenSizes,
		Epochs:       *epochs,
		BatchSize:    *batchSize,
		LearningRate: *lr,
		Seed:         *seed,
	})
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid config")
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	dataset, err := loadDataset(cfg, rng)
	if err != nil {
		return err
	}
	log.Printf("dataset samples=%d features=%d classes=%d", dataset.Len(), dataset.NumFeatures(), dataset.NumClasses())

	model, err := nn.NewMLP(cfg.Layers(dataset.NumFeatures(), dataset.NumClasses()), rng)
	if err != nil {
		return err
	}
	log.Printf("model %s params=%d", model, model.NumParameters())

	optimizer, err := optim.NewSGD(model.Parameters(), optim.SGDConfig{LR: cfg.LearningRate})
	if err != nil {
		return err
	}

	loaderCfg := data.LoaderConfig{BatchSize: cfg.BatchSize}
	if cfg.Shuffle {
		loaderCfg.Shuffle = rng
	}
	loader, err := data.NewLoader(dataset, loaderCfg)
	if err != nil {
		return err
	}

	log.Printf("training epochs=%d batch_size=%d lr=%g", cfg.Epochs, cfg.BatchSize, optimizer.LR())
	trainer := train.New(model, optimizer, train.LogReporter{})
	if _, err := trainer.Fit(loader, cfg.Epochs); err != nil {
		return err
	}

	acc, err := model.Accuracy(dataset.Matrix(), dataset.Labels)
	if err != nil {
		return err
	}
	log.Printf("train_accuracy=%.2f%%", acc*100)
	return nil
}

func loadDataset(cfg *config.Config, rng *rand.Rand) (*data.Dataset, error) {
	if cfg.Synthetic {
		n := cfg.Samples
		if n == 0 {
			n = 1000
		}
		return data.Synthetic(n, 16, 4, 0.3, rng)
	}

	ds, err := data.LoadMNIST(cfg.DataDir, true, cfg.Samples)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Wrapf(err, "MNIST IDX files not found in %s (download them or pass -synthetic)", cfg.DataDir)
		}
		return nil, err
	}
	return ds, nil
}

// parseSizes parses "128,64" into []int{128, 64}. An empty string yields nil.
func parseSizes(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	sizes := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrapf(err, "hidden size %q", p)
		}
		sizes[i] = v
	}
	return sizes, nil
}
