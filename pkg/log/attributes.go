// Standard attribute keys for hyperparameter-search operations. Using these
// keys keeps search logs filterable across drivers: a grid sweep and a
// Bayesian sweep emit the same fields for the same concepts.

package log

// Search and driver context.
const (
	// StrategyKey identifies the search driver emitting the record.
	// Standard values: "grid", "bayes".
	StrategyKey = "search.strategy"

	// PhaseKey indicates the phase of the search.
	// Standard values: "init", "refine", "sweep", "report".
	PhaseKey = "search.phase"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "tune", "linear", "ensemble", "report".
	ComponentKey = "ml.component"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "evaluate", "search".
	OperationKey = "ml.operation"

	// ModelNameKey identifies the estimator family under tuning.
	// Examples: "Ridge", "GBMRegressor".
	ModelNameKey = "model.name"
)

// Trial context.
const (
	// TrialIndexKey is the evaluation-order index of a trial.
	TrialIndexKey = "trial.index"

	// TrialLossKey is the recorded loss of a completed trial.
	TrialLossKey = "trial.loss"

	// TrialFailedKey flags a trial whose evaluation failed.
	TrialFailedKey = "trial.failed"

	// BestLossKey is the best (lowest) loss observed so far in a search.
	BestLossKey = "search.best_loss"

	// TrialsTotalKey is the total number of trials a search will run.
	TrialsTotalKey = "search.trials_total"
)

// Data shape.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"
)

// Performance.
const (
	// DurationMsKey records the execution time of an operation in
	// milliseconds.
	DurationMsKey = "perf.duration_ms"

	// WorkersKey records the worker-pool size of a concurrent sweep.
	WorkersKey = "perf.workers"
)
