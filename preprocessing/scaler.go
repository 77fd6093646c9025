// Package preprocessing provides feature scaling for distance-based models.
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/clfreport/core/frame"
	"github.com/YuminosukeSato/clfreport/core/model"
	"github.com/YuminosukeSato/clfreport/pkg/errors"
)

// StandardScaler はscikit-learn互換の標準化スケーラー
// データを平均0、標準偏差1に変換する
type StandardScaler struct {
	state *model.StateManager

	// WithMean は平均を引くかどうか (デフォルト: true)
	WithMean bool

	// WithStd は標準偏差で割るかどうか (デフォルト: true)
	WithStd bool

	mean_  []float64
	scale_ []float64
}

// NewStandardScaler は新しいStandardScalerを作成する
//
//	scaler := preprocessing.NewStandardScaler(true, true)
//	XScaled, err := scaler.FitTransform(XTrain)
//	XTestScaled, err := scaler.Transform(XTest)
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		state:    model.NewStateManager(),
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault はデフォルト設定でStandardScalerを作成する
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit は訓練データから平均と母標準偏差 (ddof=0) を計算する。
// 分散0の列の scale は 1 になる。
func (s *StandardScaler) Fit(X mat.Matrix) error {
	if X == nil {
		return errors.Wrap(errors.ErrEmptyData, "StandardScaler.Fit")
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "StandardScaler.Fit")
	}

	s.mean_ = make([]float64, c)
	s.scale_ = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		for _, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewValueError("StandardScaler.Fit", fmt.Sprintf("column %d contains NaN or Inf", j))
			}
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		s.mean_[j] = mean
		if std == 0 {
			std = 1
		}
		s.scale_[j] = std
	}
	s.state.SetFitted(c, r)
	return nil
}

// Transform は学習済みの統計量で X を標準化する。
// X が *frame.Frame なら列名を保った Frame を返す。
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("StandardScaler", "Transform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := s.state.RequireFeatures("StandardScaler.Transform", c); err != nil {
		return nil, err
	}

	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		if s.WithMean {
			v -= s.mean_[j]
		}
		if s.WithStd {
			v /= s.scale_[j]
		}
		return v
	}, X)

	if f, ok := X.(*frame.Frame); ok {
		labelled, err := frame.New(f.Columns(), out)
		if err != nil {
			return nil, err
		}
		return labelled, nil
	}
	return out, nil
}

// FitTransform は Fit と Transform を続けて実行する
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform は標準化されたデータを元のスケールに戻す
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.state.RequireFitted("StandardScaler", "InverseTransform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := s.state.RequireFeatures("StandardScaler.InverseTransform", c); err != nil {
		return nil, err
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		if s.WithStd {
			v *= s.scale_[j]
		}
		if s.WithMean {
			v += s.mean_[j]
		}
		return v
	}, X)
	return out, nil
}

// Mean returns the per-feature means seen during Fit.
func (s *StandardScaler) Mean() []float64 {
	return s.mean_
}

// Scale returns the per-feature scale (population std, 1 for constant columns).
func (s *StandardScaler) Scale() []float64 {
	return s.scale_
}

// IsFitted reports whether Fit has completed.
func (s *StandardScaler) IsFitted() bool {
	return s.state.IsFitted()
}

// GetParams はscikit-learn互換のパラメータを返す
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

// String はスケーラーの状態を返す
func (s *StandardScaler) String() string {
	if !s.state.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	nFeatures, _ := s.state.GetDimensions()
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)", s.WithMean, s.WithStd, nFeatures)
}
