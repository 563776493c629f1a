package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scitune/scitune/pkg/errors"
)

// Config is the YAML search configuration consumed by both subcommands.
type Config struct {
	Data   DataConfig   `yaml:"data"`
	Model  string       `yaml:"model"`
	Grid   GridConfig   `yaml:"grid"`
	Bayes  BayesConfig  `yaml:"bayes"`
	Search SearchConfig `yaml:"search"`
	Output OutputConfig `yaml:"output"`
}

// DataConfig locates the dataset. Train is required; when Test is empty the
// objective falls back to k-fold cross-validation on the training set.
type DataConfig struct {
	Train string `yaml:"train"`
	Test  string `yaml:"test"`
	Folds int    `yaml:"folds"`
	Seed  int64  `yaml:"seed"`
}

// GridConfig declares the discrete grid for the grid subcommand.
type GridConfig struct {
	Params []GridParamConfig `yaml:"params"`
}

type GridParamConfig struct {
	Name   string    `yaml:"name"`
	Values []float64 `yaml:"values"`
}

// BayesConfig declares the continuous space and budget for the bayes
// subcommand.
type BayesConfig struct {
	InitPoints  int           `yaml:"init_points"`
	NIter       int           `yaml:"n_iter"`
	Candidates  int           `yaml:"candidates"`
	Acquisition string        `yaml:"acquisition"`
	Seed        int64         `yaml:"seed"`
	Bounds      []BoundConfig `yaml:"bounds"`
}

type BoundConfig struct {
	Name    string  `yaml:"name"`
	Lo      float64 `yaml:"lo"`
	Hi      float64 `yaml:"hi"`
	Integer bool    `yaml:"integer"`
}

// SearchConfig holds settings shared by both drivers.
type SearchConfig struct {
	Workers     int      `yaml:"workers"`
	EvalTimeout Duration `yaml:"eval_timeout"`
}

// Duration parses Go duration strings such as "30s" from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "parsing duration %q", s)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// OutputConfig selects the artifacts written after the search.
type OutputConfig struct {
	ConvergencePlot  string `yaml:"convergence_plot"`
	ScatterPlot      string `yaml:"scatter_plot"`
	ScatterPlotParam string `yaml:"scatter_plot_param"`
}

// LoadConfig reads and validates the YAML configuration at path.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}

	if cfg.Data.Train == "" {
		return nil, errors.NewValidationError("data.train", "training dataset path is required", cfg.Data.Train)
	}
	if cfg.Model == "" {
		cfg.Model = "gbm"
	}
	if cfg.Data.Folds == 0 {
		cfg.Data.Folds = 5
	}
	return cfg, nil
}
