package trainer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/craftml/mlbuilder/pkg/errors"
	"github.com/craftml/mlbuilder/pkg/trainer"
)

func newClient(t *testing.T, handler http.HandlerFunc) trainer.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return trainer.NewClient(trainer.Config{BaseURL: srv.URL})
}

func TestUpload(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/upload", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "iris.csv", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"session_id": "sess-1",
			"columns": ["sepal_length", "species"],
			"preview": [{"sepal_length": 5.1, "species": "setosa"}],
			"num_rows": 150,
			"num_cols": 2
		}`))
	})

	resp, err := client.Upload(context.Background(), "iris.csv", strings.NewReader("sepal_length,species\n5.1,setosa\n"))
	require.NoError(t, err)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, []string{"sepal_length", "species"}, resp.Columns)
	assert.Equal(t, 150, resp.NumRows)
	assert.Nil(t, resp.Raw)
}

func TestUploadRepairsNumericSentinels(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		// pandas NaN leaks through jsonify as a bare token.
		w.Write([]byte(`{
			"session_id": "sess-2",
			"columns": ["x", "y"],
			"preview": [{"x": NaN, "y": -Infinity}],
			"num_rows": 1,
			"num_cols": 2
		}`))
	})

	resp, err := client.Upload(context.Background(), "data.csv", strings.NewReader("x,y\n,\n"))
	require.NoError(t, err)
	assert.Equal(t, "sess-2", resp.SessionID)
	require.Len(t, resp.Preview, 1)
	assert.Nil(t, resp.Preview[0]["x"])
	assert.Nil(t, resp.Preview[0]["y"])
}

func TestUploadIrreparableBodyKeptRaw(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html>proxy error page</html>`))
	})

	resp, err := client.Upload(context.Background(), "data.csv", strings.NewReader("x\n1\n"))
	require.NoError(t, err)
	assert.Empty(t, resp.SessionID)
	assert.Empty(t, resp.Columns)
	assert.Equal(t, []byte(`<html>proxy error page</html>`), resp.Raw)
}

func TestPreprocess(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/preprocess", r.URL.Path)

		var req trainer.PreprocessRequest
		require.NoError(t, jsonDecode(r, &req))
		assert.Equal(t, "sess-1", req.SessionID)
		assert.Equal(t, "normalization", req.Method)
		assert.Equal(t, "species", req.TargetColumn)

		w.Write([]byte(`{"message": "Preprocessing configured.", "summary": {"method": "normalization", "feature_columns": ["sepal_length"]}}`))
	})

	resp, err := client.Preprocess(context.Background(), trainer.PreprocessRequest{
		SessionID:    "sess-1",
		Method:       "normalization",
		TargetColumn: "species",
	})
	require.NoError(t, err)
	assert.Contains(t, string(resp.Summary), "feature_columns")
}

func TestPreprocessServiceError(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Invalid session_id. Upload a dataset first."}`))
	})

	_, err := client.Preprocess(context.Background(), trainer.PreprocessRequest{SessionID: "stale"})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrRemote)
	assert.Contains(t, err.Error(), "Invalid session_id")
}

func TestTrain(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/train", r.URL.Path)

		var req trainer.TrainRequest
		require.NoError(t, jsonDecode(r, &req))
		assert.Equal(t, "mlp", req.ModelType)
		assert.Equal(t, []int{64, 32}, req.HiddenLayers)
		assert.InDelta(t, 0.3, req.TestSize, 1e-9)

		w.Write([]byte(`{"message": "Model trained successfully.", "model_type": "mlp", "metrics": {"accuracy": 0.93}}`))
	})

	resp, err := client.Train(context.Background(), trainer.TrainRequest{
		SessionID:    "sess-1",
		ModelType:    "mlp",
		TestSize:     0.3,
		HiddenLayers: []int{64, 32},
		LearningRate: 0.001,
		MaxIter:      300,
	})
	require.NoError(t, err)
	assert.Equal(t, "mlp", resp.ModelType)
	assert.InDelta(t, 0.93, resp.Metrics["accuracy"].(float64), 1e-9)
}

func TestSaveModel(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/save_model", r.URL.Path)
		w.Write([]byte(`{"message": "Model saved.", "path": "saved_models/my_model.joblib"}`))
	})

	resp, err := client.SaveModel(context.Background(), trainer.SaveRequest{
		SessionID: "sess-1",
		ModelType: "perceptron",
		ModelName: "my_model",
	})
	require.NoError(t, err)
	assert.Equal(t, "saved_models/my_model.joblib", resp.Path)
}

func TestConfusionMatrix(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/confusion_matrix", r.URL.Path)
		assert.Equal(t, "sess-1", r.URL.Query().Get("session_id"))
		assert.Equal(t, "mlp", r.URL.Query().Get("model_type"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		w.Write([]byte(`{
			"model_type": "mlp",
			"metrics": {"accuracy": 0.93},
			"confusion_matrix": [[12, 1], [0, 14]],
			"confusion_matrix_html": "<table class='confusion-matrix'></table>"
		}`))
	})

	resp, err := client.ConfusionMatrix(context.Background(), "sess-1", "mlp", "json")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{12, 1}, {0, 14}}, resp.Matrix)
	assert.Contains(t, resp.MatrixHTML, "confusion-matrix")
}

func TestConfusionMatrixNotTrained(t *testing.T) {
	t.Parallel()

	client := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "No trained model of this type for this session."}`))
	})

	_, err := client.ConfusionMatrix(context.Background(), "sess-1", "decision_tree", "json")
	assert.ErrorIs(t, err, pkgerrors.ErrRemote)
}

func jsonDecode(r *http.Request, v any) error {
	defer r.Body.Close()

	return json.NewDecoder(r.Body).Decode(v)
}
