// Package mlmodel loads the pre-trained per-competitor regression models
// and exposes them behind an immutable registry. A model is an opaque
// callable: it takes one feature row with exactly the columns it was
// trained on and returns a numeric price estimate.
package mlmodel

import (
	"errors"
	"fmt"
	"math"

	"github.com/pricecast/pricecast/features"
)

var (
	// ErrModelNotFound is returned for competitors with no loaded model,
	// whether unknown or failed at load time.
	ErrModelNotFound = errors.New("no model loaded for competitor")

	// ErrSchemaMismatch is returned when a feature row's columns disagree
	// with the schema the model was trained on.
	ErrSchemaMismatch = errors.New("feature row does not match model schema")
)

// Model is a loaded regression model.
type Model interface {
	// Features returns the input columns the model was trained with, in
	// order.
	Features() []string

	// Predict maps one feature row to a price estimate. The row's columns
	// must equal Features() exactly.
	Predict(row *features.Row) (float64, error)
}

// LinearModel predicts with an intercept plus a weighted sum of the inputs.
// NaN inputs propagate into a NaN estimate.
type LinearModel struct {
	features     []string
	intercept    float64
	coefficients map[string]float64
}

// NewLinearModel builds a linear model over the given trained schema.
// Columns absent from coefficients contribute zero weight.
func NewLinearModel(featureNames []string, intercept float64, coefficients map[string]float64) *LinearModel {
	return &LinearModel{
		features:     append([]string(nil), featureNames...),
		intercept:    intercept,
		coefficients: coefficients,
	}
}

func (m *LinearModel) Features() []string {
	return append([]string(nil), m.features...)
}

func (m *LinearModel) Predict(row *features.Row) (float64, error) {
	vals, err := numericValues(row, m.features)
	if err != nil {
		return 0, err
	}
	y := m.intercept
	for _, name := range m.features {
		y += m.coefficients[name] * vals[name]
	}
	return y, nil
}

// TreeEnsemble predicts with a base score plus the sum of per-tree leaf
// values. A NaN input at a split follows the node's default branch.
type TreeEnsemble struct {
	features  []string
	baseScore float64
	trees     []*treeNode
}

func newTreeEnsemble(featureNames []string, baseScore float64, trees []*treeNode) *TreeEnsemble {
	return &TreeEnsemble{
		features:  append([]string(nil), featureNames...),
		baseScore: baseScore,
		trees:     trees,
	}
}

func (m *TreeEnsemble) Features() []string {
	return append([]string(nil), m.features...)
}

func (m *TreeEnsemble) Predict(row *features.Row) (float64, error) {
	vals, err := numericValues(row, m.features)
	if err != nil {
		return 0, err
	}
	y := m.baseScore
	for _, tree := range m.trees {
		y += tree.eval(vals)
	}
	return y, nil
}

// treeNode is one split or leaf of a regression tree. Default names the
// branch taken when the split value is NaN; it falls back to left when
// unset.
type treeNode struct {
	Leaf      *float64  `json:"leaf,omitempty"`
	Feature   string    `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Default   string    `json:"default,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

func (n *treeNode) eval(vals map[string]float64) float64 {
	if n.Leaf != nil {
		return *n.Leaf
	}
	v := vals[n.Feature]
	if math.IsNaN(v) {
		if n.Default == "right" {
			return n.Right.eval(vals)
		}
		return n.Left.eval(vals)
	}
	if v < n.Threshold {
		return n.Left.eval(vals)
	}
	return n.Right.eval(vals)
}

// featureRefs collects the feature names referenced by the tree's splits.
func (n *treeNode) featureRefs(into map[string]struct{}) {
	if n == nil || n.Leaf != nil {
		return
	}
	into[n.Feature] = struct{}{}
	n.Left.featureRefs(into)
	n.Right.featureRefs(into)
}

// numericValues checks the row against the trained schema and extracts the
// column values as floats. Any disagreement in column count, order, or
// numeric type is a schema mismatch.
func numericValues(row *features.Row, want []string) (map[string]float64, error) {
	got := row.Names()
	if len(got) != len(want) {
		return nil, fmt.Errorf("%w: row has %d columns, model expects %d", ErrSchemaMismatch, len(got), len(want))
	}
	vals := make(map[string]float64, len(want))
	for i, name := range want {
		if got[i] != name {
			return nil, fmt.Errorf("%w: column %d is %q, model expects %q", ErrSchemaMismatch, i+1, got[i], name)
		}
		v, ok := row.Numeric(name)
		if !ok {
			return nil, fmt.Errorf("%w: column %q is not numeric", ErrSchemaMismatch, name)
		}
		vals[name] = v
	}
	return vals, nil
}
