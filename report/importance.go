package report

import (
	"github.com/YuminosukeSato/clfreport/core/frame"
	"github.com/YuminosukeSato/clfreport/core/model"
	"github.com/YuminosukeSato/clfreport/core/table"
	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// Feature importance table columns.
const (
	ColFeature    = "Feature"
	ColImportance = "Importance"
)

// FeatureImportances pairs X's column names with the fitted model's
// importance scores, sorted by importance descending. Equal scores keep
// column order and the scores are not renormalized.
func FeatureImportances(m model.FeatureImportancer, X *frame.Frame) (*table.Table, error) {
	if m == nil || X == nil {
		return nil, errors.NewValueError("FeatureImportances", "nil model or frame")
	}
	imp, err := m.FeatureImportances()
	if err != nil {
		return nil, err
	}
	names := X.Columns()
	if len(imp) != len(names) {
		return nil, errors.NewDimensionError("FeatureImportances", len(names), len(imp), 1)
	}

	t := table.New(ColFeature, ColImportance)
	for j, name := range names {
		if err := t.Append(name, imp[j]); err != nil {
			return nil, err
		}
	}
	if err := t.SortByFloat(ColImportance, true); err != nil {
		return nil, err
	}
	return t, nil
}
