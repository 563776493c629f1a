// Package model defines the estimator contracts that the tuning drivers are
// polymorphic over. A search only needs something it can fit on training data
// and ask for predictions on held-out data; everything else about the model
// family is opaque to the driver.
package model

import "gonum.org/v1/gonum/mat"

// Fitter is the interface for trainable models.
type Fitter interface {
	// Fit trains the model on X (n×d features) and y (n×1 targets).
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for models that can predict.
type Predictor interface {
	// Predict returns predictions for X as an n×1 matrix.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator is a trainable, predicting model. This is the full contract a
// hyperparameter search needs from the model family it tunes.
type Estimator interface {
	Fitter
	Predictor
}

// Scorer is the interface for models that can compute a score.
type Scorer interface {
	// Score returns the coefficient of determination R² of the prediction.
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor combines the interfaces a regression model exposes.
type Regressor interface {
	Estimator
	Scorer
}
