// Package scitune provides hyperparameter search for regression models in
// Go: exhaustive grid search and Gaussian-process based Bayesian
// optimization, plus the regressors, metrics and data utilities needed to
// drive them.
//
// # Packages
//
//   - tune: grid and Bayesian search drivers, objectives, trial history
//   - linear: ridge regression
//   - ensemble: gradient boosted stump regression
//   - metrics: regression losses and scores
//   - dataset: k-fold and holdout splitting
//   - report: history summaries and convergence charts
//
// # Quick Start
//
// Tuning a ridge penalty over a small grid:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "gonum.org/v1/gonum/mat"
//
//	    "github.com/scitune/scitune/core/model"
//	    "github.com/scitune/scitune/dataset"
//	    "github.com/scitune/scitune/linear"
//	    "github.com/scitune/scitune/tune"
//	)
//
//	func main() {
//	    X := mat.NewDense(8, 1, []float64{0, 1, 2, 3, 4, 5, 6, 7})
//	    y := mat.NewDense(8, 1, []float64{1, 3, 5, 7, 9, 11, 13, 15})
//
//	    factory := func(params map[string]float64) (model.Estimator, error) {
//	        return linear.NewRidge(params["lambda"]), nil
//	    }
//	    obj, err := tune.CrossValObjective(factory, X, y, dataset.NewKFold(4, true, 42))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    space := tune.GridSpace{{Name: "lambda", Values: []float64{0, 0.1, 1, 10}}}
//	    trials, err := tune.NewGridSearch().Search(context.Background(), space, obj)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    best, _ := tune.Best(trials)
//	    fmt.Printf("lambda=%g loss=%g\n", best.Params["lambda"], best.Loss)
//	}
//
// For continuous spaces, tune.BayesSearch explores bounds instead of
// candidate lists and typically needs far fewer trials than a dense grid.
package scitune
