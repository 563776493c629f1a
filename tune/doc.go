// Package tune provides hyperparameter search drivers for regression models:
// exhaustive grid search over discrete candidate lists and Gaussian-process
// guided Bayesian optimization over continuous bounds.
//
// Throughout the package, a trial's Loss is the quantity being minimized
// (mean squared error for the built-in objectives). Lower is always better;
// components that internally need a quantity to maximize, such as the
// Bayesian surrogate and its acquisition functions, negate the loss rather
// than changing the convention at the API surface.
//
// Objectives are plain functions, so any model and scoring scheme can be
// tuned; HoldoutObjective and CrossValObjective cover the common cases for
// estimators from this module.
package tune
