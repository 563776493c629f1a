package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scitune/scitune/core/model"
	"github.com/scitune/scitune/dataset"
	"github.com/scitune/scitune/ensemble"
	"github.com/scitune/scitune/linear"
	"github.com/scitune/scitune/pkg/errors"
	"github.com/scitune/scitune/pkg/log"
	"github.com/scitune/scitune/report"
	"github.com/scitune/scitune/tune"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:           "scitune",
	Short:         "Hyperparameter search for regression models",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetupLogger(logLevel)
	},
}

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Exhaustively evaluate a hyperparameter grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		if len(cfg.Grid.Params) == 0 {
			return errors.NewValidationError("grid.params", "grid subcommand needs at least one parameter", len(cfg.Grid.Params))
		}

		obj, err := buildObjective(cfg)
		if err != nil {
			return err
		}

		space := make(tune.GridSpace, len(cfg.Grid.Params))
		for i, p := range cfg.Grid.Params {
			space[i] = tune.Param{Name: p.Name, Values: p.Values}
		}

		gs := &tune.GridSearch{
			Workers:     cfg.Search.Workers,
			EvalTimeout: cfg.Search.EvalTimeout.Std(),
		}
		trials, err := gs.Search(cmd.Context(), space, obj)
		if err != nil {
			return err
		}
		return writeOutputs(cfg, trials)
	},
}

var bayesCmd = &cobra.Command{
	Use:   "bayes",
	Short: "Tune continuous hyperparameters with Bayesian optimization",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		if len(cfg.Bayes.Bounds) == 0 {
			return errors.NewValidationError("bayes.bounds", "bayes subcommand needs at least one bound", len(cfg.Bayes.Bounds))
		}

		obj, err := buildObjective(cfg)
		if err != nil {
			return err
		}

		space := make(tune.Space, len(cfg.Bayes.Bounds))
		for i, b := range cfg.Bayes.Bounds {
			space[i] = tune.Bounds{Name: b.Name, Lo: b.Lo, Hi: b.Hi, Integer: b.Integer}
		}

		bs := tune.NewBayesSearch(cfg.Bayes.InitPoints, cfg.Bayes.NIter)
		bs.Seed = cfg.Bayes.Seed
		bs.Workers = cfg.Search.Workers
		bs.EvalTimeout = cfg.Search.EvalTimeout.Std()
		if cfg.Bayes.Candidates > 0 {
			bs.Candidates = cfg.Bayes.Candidates
		}
		if cfg.Bayes.Acquisition != "" {
			acq, err := tune.AcquisitionByName(cfg.Bayes.Acquisition)
			if err != nil {
				return err
			}
			bs.Acquisition = acq
		}

		_, trials, err := bs.Search(cmd.Context(), space, obj)
		if err != nil {
			return err
		}
		return writeOutputs(cfg, trials)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "scitune.yaml", "path to the search configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log verbosity: debug, info, warn, error")
	rootCmd.AddCommand(gridCmd, bayesCmd)
}

// modelFactory maps a model family name to a hyperparameter-driven factory.
// Unset hyperparameters fall back to the family defaults.
func modelFactory(name string) (tune.ModelFactory, error) {
	switch name {
	case "ridge":
		return func(params map[string]float64) (model.Estimator, error) {
			return linear.NewRidge(paramOr(params, "lambda", 1.0)), nil
		}, nil
	case "gbm":
		return func(params map[string]float64) (model.Estimator, error) {
			return ensemble.NewGBMRegressor(
				paramOr(params, "eta", 0.3),
				int(paramOr(params, "nrounds", 100)),
				paramOr(params, "lambda", 1.0),
			), nil
		}, nil
	default:
		return nil, errors.NewValidationError("model", "unknown model family", name)
	}
}

func paramOr(params map[string]float64, name string, fallback float64) float64 {
	if v, ok := params[name]; ok {
		return v
	}
	return fallback
}

// buildObjective loads the dataset and wires the configured model into a
// holdout or cross-validation objective.
func buildObjective(cfg *Config) (tune.Objective, error) {
	factory, err := modelFactory(cfg.Model)
	if err != nil {
		return nil, err
	}

	XTrain, yTrain, err := loadCSV(cfg.Data.Train)
	if err != nil {
		return nil, err
	}
	n, d := XTrain.Dims()
	log.GetLoggerWithName("cli").Info("dataset loaded",
		log.ModelNameKey, cfg.Model,
		log.SamplesKey, n,
		log.FeaturesKey, d,
	)

	if cfg.Data.Test != "" {
		XTest, yTest, err := loadCSV(cfg.Data.Test)
		if err != nil {
			return nil, err
		}
		return tune.HoldoutObjective(factory, XTrain, yTrain, XTest, yTest)
	}

	kf := dataset.NewKFold(cfg.Data.Folds, true, cfg.Data.Seed)
	return tune.CrossValObjective(factory, XTrain, yTrain, kf)
}

// writeOutputs prints the summary table and saves any configured charts.
func writeOutputs(cfg *Config, trials []tune.Trial) error {
	if err := report.Summary(os.Stdout, trials); err != nil {
		return err
	}

	if path := cfg.Output.ConvergencePlot; path != "" {
		if err := report.ConvergencePlot(trials, path); err != nil {
			return err
		}
		fmt.Printf("convergence chart written to %s\n", path)
	}
	if path := cfg.Output.ScatterPlot; path != "" {
		param := cfg.Output.ScatterPlotParam
		if param == "" {
			return errors.NewValidationError("output.scatter_plot_param", "scatter plot needs a parameter name", param)
		}
		if err := report.ScatterPlot(trials, param, path); err != nil {
			return err
		}
		fmt.Printf("scatter chart written to %s\n", path)
	}
	return nil
}
