package sdk_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftml/mlbuilder/pkg/sdk"
)

func newTestSDK(t *testing.T, handler http.HandlerFunc) sdk.SDK {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return sdk.NewSDK(sdk.Config{BuilderURL: srv.URL})
}

func TestCreateWizard(t *testing.T) {
	t.Parallel()

	s := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wizards", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "iris", req["name"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(sdk.Wizard{ID: "wiz-1", Name: "iris"})
	})

	wiz, err := s.CreateWizard("iris")
	require.NoError(t, err)
	assert.Equal(t, "wiz-1", wiz.ID)
	assert.Equal(t, "iris", wiz.Name)
}

func TestUploadDataset(t *testing.T) {
	t.Parallel()

	s := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wizards/wiz-1/upload", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1024*1024))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "iris.csv", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "a,b\n1,2\n", string(data))

		_ = json.NewEncoder(w).Encode(sdk.Wizard{
			ID:        "wiz-1",
			Stage:     1,
			SessionID: "sess-1",
			Dataset:   &sdk.Dataset{Columns: []string{"a", "b"}, NumRows: 1, NumCols: 2},
		})
	})

	wiz, err := s.UploadDataset("wiz-1", "iris.csv", []byte("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, "sess-1", wiz.SessionID)
	require.NotNil(t, wiz.Dataset)
	assert.Equal(t, []string{"a", "b"}, wiz.Dataset.Columns)
}

func TestTrainSendsParams(t *testing.T) {
	t.Parallel()

	s := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wizards/wiz-1/train", r.URL.Path)

		var params sdk.TrainParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, 0.3, params.TestSize)
		assert.Equal(t, "64,32", params.HiddenLayers)

		_ = json.NewEncoder(w).Encode(sdk.Wizard{
			ID:    "wiz-1",
			Stage: 4,
			Results: map[string]sdk.ModelResult{
				"mlp": {Metrics: map[string]any{"accuracy": 0.95}},
			},
		})
	})

	wiz, err := s.Train("wiz-1", sdk.TrainParams{TestSize: 0.3, HiddenLayers: "64,32"})
	require.NoError(t, err)
	assert.Contains(t, wiz.Results, "mlp")
}

func TestSaveModel(t *testing.T) {
	t.Parallel()

	s := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wizards/wiz-1/models/mlp/save", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "my-model", req["name"])

		_ = json.NewEncoder(w).Encode(map[string]string{
			"model_type": "mlp",
			"path":       "saved_models/my-model.pkl",
		})
	})

	path, err := s.SaveModel("wiz-1", "mlp", "my-model")
	require.NoError(t, err)
	assert.Equal(t, "saved_models/my-model.pkl", path)
}

func TestErrorEnvelope(t *testing.T) {
	t.Parallel()

	s := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "wrong stage: on Upload, need Train"})
	})

	_, err := s.Train("wiz-1", sdk.TrainParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wrong stage")
	assert.Contains(t, err.Error(), "409")
}

func TestDeleteWizard(t *testing.T) {
	t.Parallel()

	s := newTestSDK(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/wizards/wiz-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, s.DeleteWizard("wiz-1"))
}
