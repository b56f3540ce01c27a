package wizard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/craftml/mlbuilder/pkg/errors"
	"github.com/craftml/mlbuilder/wizard"
)

func TestAdvanceWalksAllStages(t *testing.T) {
	t.Parallel()

	w := wizard.Wizard{}
	require.Equal(t, wizard.StageUpload, w.Stage)

	for _, want := range []wizard.Stage{
		wizard.StagePreprocess,
		wizard.StageModels,
		wizard.StageTrain,
		wizard.StageResults,
	} {
		require.NoError(t, w.Advance())
		assert.Equal(t, want, w.Stage)
	}

	err := w.Advance()
	assert.ErrorIs(t, err, pkgerrors.ErrOutOfRange)
	assert.Equal(t, wizard.StageResults, w.Stage)
}

func TestRetreatStopsAtUpload(t *testing.T) {
	t.Parallel()

	w := wizard.Wizard{Stage: wizard.StagePreprocess}
	require.NoError(t, w.Retreat())
	assert.Equal(t, wizard.StageUpload, w.Stage)

	err := w.Retreat()
	assert.ErrorIs(t, err, pkgerrors.ErrOutOfRange)
	assert.Equal(t, wizard.StageUpload, w.Stage)
}

func TestStageString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Upload", wizard.StageUpload.String())
	assert.Equal(t, "Results", wizard.StageResults.String())
	assert.Equal(t, "Unknown", wizard.Stage(42).String())
}

func TestResolveColumns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dataset  *wizard.Dataset
		expected []string
	}{
		{
			name: "explicit columns win",
			dataset: &wizard.Dataset{
				Columns: []string{"b", "a"},
				Preview: []map[string]any{{"c": 1}},
			},
			expected: []string{"b", "a"},
		},
		{
			name: "fallback to first preview row keys",
			dataset: &wizard.Dataset{
				Preview: []map[string]any{
					{"width": 1.0, "height": 2.0, "label": "x"},
					{"width": 3.0},
				},
			},
			expected: []string{"height", "label", "width"},
		},
		{
			name:     "both absent degrades to empty",
			dataset:  &wizard.Dataset{NumRows: 10},
			expected: []string{},
		},
		{
			name:     "nil dataset degrades to empty",
			dataset:  nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.dataset.ResolveColumns())
		})
	}
}

func TestHasColumn(t *testing.T) {
	t.Parallel()

	d := &wizard.Dataset{Preview: []map[string]any{{"label": "a", "x": 1}}}
	assert.True(t, d.HasColumn("label"))
	assert.False(t, d.HasColumn("missing"))
}

func TestIsMLPFamily(t *testing.T) {
	t.Parallel()

	for _, alias := range []string{"mlp", "multilayer_perceptron", "backpropagation", "MLP"} {
		assert.True(t, wizard.IsMLPFamily(alias), alias)
	}
	assert.False(t, wizard.IsMLPFamily("perceptron"))
	assert.False(t, wizard.IsMLPFamily("decision_tree"))
}

func TestNormalizeMethod(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "onehot", wizard.NormalizeMethod("one-hot"))
	assert.Equal(t, "onehot", wizard.NormalizeMethod("One_Hot"))
	assert.Equal(t, "normalization", wizard.NormalizeMethod(" Normalization "))
}

func TestHiddenLayers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		spec      string
		numLayers int
		neurons   int
		expected  []int
		wantErr   bool
	}{
		{name: "csv spec", spec: "64,32", expected: []int{64, 32}},
		{name: "spec with mixed separators", spec: "64; 32 16", expected: []int{64, 32, 16}},
		{name: "spec wins over counts", spec: "8", numLayers: 3, neurons: 32, expected: []int{8}},
		{name: "layers times neurons", numLayers: 3, neurons: 32, expected: []int{32, 32, 32}},
		{name: "default", expected: []int{100}},
		{name: "zero size rejected", spec: "64,0", wantErr: true},
		{name: "garbage rejected", spec: "sixty four", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			layers, err := wizard.HiddenLayers(tt.spec, tt.numLayers, tt.neurons)
			if tt.wantErr {
				require.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, layers)
		})
	}
}
