package model

import (
	"io"

	"gonum.org/v1/gonum/mat"
)

// Fitter is any model that can be trained on a feature matrix and target.
type Fitter interface {
	Fit(X, y mat.Matrix) error
}

// Predictor is any model that produces predictions for a feature matrix.
type Predictor interface {
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer evaluates a fitted model on labeled data. The meaning of the
// score depends on the task: accuracy for classifiers, R² for regressors.
type Scorer interface {
	Score(X, y mat.Matrix) float64
}

// Regressor is a supervised model for numeric targets.
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// Classifier is a supervised model for finite-label targets.
type Classifier interface {
	Fitter
	Predictor
	Scorer
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// ParameterGetter exposes hyperparameters as a map, sklearn-style.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// ParameterSetter updates hyperparameters from a map, sklearn-style.
type ParameterSetter interface {
	SetParams(params map[string]interface{}) error
}

// Persistable is a model whose learned state can be streamed.
type Persistable interface {
	Save(w io.Writer) error
	Load(r io.Reader) error
}
