package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// ParamInt reads an integer hyperparameter. Integral float64 values are
// accepted so that grids decoded from YAML or JSON work unchanged.
func ParamInt(name string, v interface{}) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case float64:
		if x == math.Trunc(x) {
			return int(x), nil
		}
	}
	return 0, errors.NewValidationError(name, "must be an integer", v)
}

// ParamFloat reads a float hyperparameter.
func ParamFloat(name string, v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return 0, errors.NewValidationError(name, "must be a number", v)
}

// ParamString reads a string hyperparameter.
func ParamString(name string, v interface{}) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", errors.NewValidationError(name, "must be a string", v)
}

// ParamBool reads a boolean hyperparameter.
func ParamBool(name string, v interface{}) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, errors.NewValidationError(name, "must be a bool", v)
}

// UnknownParam is the error SetParams returns for names it does not know.
func UnknownParam(estimator, name string) error {
	return errors.NewValueError(estimator+".SetParams", fmt.Sprintf("invalid parameter %q", name))
}

// FormatParams renders params in sorted key order, e.g.
// "max_features: sqrt, min_samples_leaf: 2".
func FormatParams(params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		v := params[k]
		if v == nil {
			out += k + ": None"
			continue
		}
		out += fmt.Sprintf("%s: %v", k, v)
	}
	return out
}
