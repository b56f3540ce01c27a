package builder_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/craftml/mlbuilder/builder"
	pkgerrors "github.com/craftml/mlbuilder/pkg/errors"
	"github.com/craftml/mlbuilder/pkg/storage"
	"github.com/craftml/mlbuilder/pkg/trainer"
	"github.com/craftml/mlbuilder/pkg/trainer/mocks"
	"github.com/craftml/mlbuilder/wizard"
)

func newService(t *testing.T) (builder.Service, *mocks.MockService, storage.Storage) {
	t.Helper()

	tr := new(mocks.MockService)
	db := storage.NewInMemoryStorage()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	return builder.NewService(db, tr, logger), tr, db
}

func uploadResp() trainer.UploadResponse {
	return trainer.UploadResponse{
		SessionID: "sess-1",
		Columns:   []string{"sepal_length", "sepal_width", "species"},
		NumRows:   150,
		NumCols:   3,
		Preview: []map[string]any{
			{"sepal_length": 5.1, "sepal_width": 3.5, "species": "setosa"},
		},
	}
}

// walkToStage drives a fresh wizard forward until it sits on the wanted stage.
func walkToStage(t *testing.T, svc builder.Service, tr *mocks.MockService, target wizard.Stage) wizard.Wizard {
	t.Helper()
	ctx := context.Background()

	w, err := svc.CreateWizard(ctx, wizard.Wizard{Name: "iris"})
	require.NoError(t, err)
	if target == wizard.StageUpload {
		return w
	}

	tr.On("Upload", mock.Anything, "iris.csv", mock.Anything).Return(uploadResp(), nil).Once()
	w, err = svc.UploadDataset(ctx, w.ID, "iris.csv", strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)
	if target == wizard.StagePreprocess {
		return w
	}

	tr.On("Preprocess", mock.Anything, mock.Anything).Return(trainer.PreprocessResponse{
		Message: "ok",
		Summary: json.RawMessage(`{"scaled":true}`),
	}, nil).Once()
	w, err = svc.ConfigurePreprocess(ctx, w.ID, wizard.MethodNormalization, "species")
	require.NoError(t, err)
	if target == wizard.StageModels {
		return w
	}

	w, err = svc.SelectModels(ctx, w.ID, []string{wizard.ModelPerceptron, wizard.ModelMLP})
	require.NoError(t, err)
	if target == wizard.StageTrain {
		return w
	}

	tr.On("Train", mock.Anything, mock.Anything).Return(trainer.TrainResponse{
		Metrics: map[string]any{"accuracy": 0.93},
	}, nil).Times(len(w.Models))
	w, err = svc.Train(ctx, w.ID, builder.TrainParams{})
	require.NoError(t, err)

	return w
}

func TestCreateWizard(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	named, err := svc.CreateWizard(ctx, wizard.Wizard{Name: "iris"})
	require.NoError(t, err)
	assert.NotEmpty(t, named.ID)
	assert.Equal(t, "iris", named.Name)
	assert.Equal(t, wizard.StageUpload, named.Stage)

	anon, err := svc.CreateWizard(ctx, wizard.Wizard{})
	require.NoError(t, err)
	assert.NotEmpty(t, anon.Name)
	assert.NotEqual(t, named.ID, anon.ID)
}

func TestUploadDataset(t *testing.T) {
	svc, tr, db := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StageUpload)

	tr.On("Upload", mock.Anything, "iris.csv", mock.Anything).Return(uploadResp(), nil).Once()
	got, err := svc.UploadDataset(ctx, w.ID, "iris.csv", strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)

	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, wizard.StagePreprocess, got.Stage)
	require.NotNil(t, got.Dataset)
	assert.Equal(t, 150, got.Dataset.NumRows)
	assert.Equal(t, []string{"sepal_length", "sepal_width", "species"}, got.Dataset.Columns)

	stored, err := db.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, got.SessionID, stored.SessionID)
	tr.AssertExpectations(t)
}

func TestUploadDatasetRemoteFailure(t *testing.T) {
	svc, tr, db := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StageUpload)

	tr.On("Upload", mock.Anything, "bad.csv", mock.Anything).
		Return(trainer.UploadResponse{}, pkgerrors.ErrRemote).Once()
	_, err := svc.UploadDataset(ctx, w.ID, "bad.csv", strings.NewReader("x"))
	assert.ErrorIs(t, err, pkgerrors.ErrRemote)

	// A failed upload must leave the wizard untouched.
	stored, err := db.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, wizard.StageUpload, stored.Stage)
	assert.Empty(t, stored.SessionID)
}

func TestUploadDatasetReplacesPreviousRun(t *testing.T) {
	svc, tr, db := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StageResults)

	// Walk back to the upload stage and start over with a new file.
	for range 4 {
		var err error
		w, err = svc.Retreat(ctx, w.ID)
		require.NoError(t, err)
	}
	require.Equal(t, wizard.StageUpload, w.Stage)

	second := uploadResp()
	second.SessionID = "sess-2"
	second.Columns = []string{"x", "y"}
	tr.On("Upload", mock.Anything, "wine.csv", mock.Anything).Return(second, nil).Once()

	got, err := svc.UploadDataset(ctx, w.ID, "wine.csv", strings.NewReader("x,y\n1,2\n"))
	require.NoError(t, err)

	assert.Equal(t, "sess-2", got.SessionID)
	assert.Equal(t, []string{"x", "y"}, got.Dataset.Columns)
	assert.Nil(t, got.Summary)
	assert.Nil(t, got.Models)
	assert.Nil(t, got.Results)
	assert.Nil(t, got.TrainErrors)

	stored, err := db.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Results)
}

func TestConfigurePreprocessValidation(t *testing.T) {
	svc, tr, _ := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StagePreprocess)

	cases := []struct {
		desc   string
		method string
		target string
		err    error
	}{
		{
			desc:   "missing method",
			method: "",
			target: "species",
			err:    pkgerrors.ErrMissingMethod,
		},
		{
			desc:   "unknown method",
			method: "pca",
			target: "species",
			err:    pkgerrors.ErrUnknownMethod,
		},
		{
			desc:   "missing target",
			method: wizard.MethodNormalization,
			target: "",
			err:    pkgerrors.ErrMissingTarget,
		},
		{
			desc:   "unknown column",
			method: wizard.MethodNormalization,
			target: "petal_width",
			err:    pkgerrors.ErrUnknownColumn,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := svc.ConfigurePreprocess(ctx, w.ID, tc.method, tc.target)
			assert.ErrorIs(t, err, tc.err)
		})
	}

	// No validation failure above may have reached the trainer.
	tr.AssertNotCalled(t, "Preprocess", mock.Anything, mock.Anything)
}

func TestConfigurePreprocessMethodAliases(t *testing.T) {
	svc, tr, _ := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StagePreprocess)

	tr.On("Preprocess", mock.Anything, trainer.PreprocessRequest{
		SessionID:    "sess-1",
		Method:       wizard.MethodOneHot,
		TargetColumn: "species",
	}).Return(trainer.PreprocessResponse{Summary: json.RawMessage(`{}`)}, nil).Once()

	got, err := svc.ConfigurePreprocess(ctx, w.ID, "one-hot", "species")
	require.NoError(t, err)
	assert.Equal(t, wizard.StageModels, got.Stage)
	tr.AssertExpectations(t)
}

func TestConfigurePreprocessWrongStage(t *testing.T) {
	svc, tr, _ := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StageUpload)

	_, err := svc.ConfigurePreprocess(ctx, w.ID, wizard.MethodNormalization, "species")
	assert.ErrorIs(t, err, pkgerrors.ErrWrongStage)
}

func TestSelectModels(t *testing.T) {
	svc, tr, _ := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StageModels)

	_, err := svc.SelectModels(ctx, w.ID, nil)
	assert.ErrorIs(t, err, pkgerrors.ErrEmptySelection)

	_, err = svc.SelectModels(ctx, w.ID, []string{"random_forest"})
	assert.ErrorIs(t, err, pkgerrors.ErrUnknownModel)

	got, err := svc.SelectModels(ctx, w.ID, []string{wizard.ModelDecisionTree})
	require.NoError(t, err)
	assert.Equal(t, []string{wizard.ModelDecisionTree}, got.Models)
	assert.Equal(t, wizard.StageTrain, got.Stage)
}

func TestTrain(t *testing.T) {
	svc, tr, _ := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StageTrain)

	perceptron := trainer.TrainRequest{
		SessionID: "sess-1",
		ModelType: wizard.ModelPerceptron,
		TestSize:  0.2,
	}
	mlp := trainer.TrainRequest{
		SessionID:    "sess-1",
		ModelType:    wizard.ModelMLP,
		TestSize:     0.2,
		HiddenLayers: []int{100},
		LearningRate: 0.001,
		MaxIter:      300,
	}
	tr.On("Train", mock.Anything, perceptron).Return(trainer.TrainResponse{
		ModelType: wizard.ModelPerceptron,
		Metrics:   map[string]any{"accuracy": 0.91},
	}, nil).Once()
	tr.On("Train", mock.Anything, mlp).Return(trainer.TrainResponse{
		ModelType: wizard.ModelMLP,
		Metrics:   map[string]any{"accuracy": 0.95},
	}, nil).Once()

	got, err := svc.Train(ctx, w.ID, builder.TrainParams{})
	require.NoError(t, err)

	assert.Equal(t, wizard.StageResults, got.Stage)
	assert.Len(t, got.Results, 2)
	assert.Empty(t, got.TrainErrors)
	assert.Equal(t, map[string]any{"accuracy": 0.95}, got.Results[wizard.ModelMLP].Metrics)
	tr.AssertExpectations(t)
}

func TestTrainPartialFailure(t *testing.T) {
	svc, tr, _ := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StageTrain)

	tr.On("Train", mock.Anything, mock.MatchedBy(func(req trainer.TrainRequest) bool {
		return req.ModelType == wizard.ModelPerceptron
	})).Return(trainer.TrainResponse{}, pkgerrors.ErrRemote).Once()
	tr.On("Train", mock.Anything, mock.MatchedBy(func(req trainer.TrainRequest) bool {
		return req.ModelType == wizard.ModelMLP
	})).Return(trainer.TrainResponse{
		Metrics: map[string]any{"accuracy": 0.95},
	}, nil).Once()

	got, err := svc.Train(ctx, w.ID, builder.TrainParams{})
	require.NoError(t, err)

	// A failing model never blocks its siblings nor the stage change.
	assert.Equal(t, wizard.StageResults, got.Stage)
	assert.Len(t, got.Results, 1)
	assert.Contains(t, got.Results, wizard.ModelMLP)
	assert.Contains(t, got.TrainErrors, wizard.ModelPerceptron)
	tr.AssertExpectations(t)
}

func TestTrainTotalFailureStillAdvances(t *testing.T) {
	svc, tr, _ := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StageTrain)

	tr.On("Train", mock.Anything, mock.Anything).
		Return(trainer.TrainResponse{}, pkgerrors.ErrRemote).Times(2)

	got, err := svc.Train(ctx, w.ID, builder.TrainParams{})
	require.NoError(t, err)
	assert.Equal(t, wizard.StageResults, got.Stage)
	assert.Empty(t, got.Results)
	assert.Len(t, got.TrainErrors, 2)
}

func TestTrainInvalidSplit(t *testing.T) {
	svc, tr, _ := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StageTrain)

	_, err := svc.Train(ctx, w.ID, builder.TrainParams{TestSize: 1.5})
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidSplit)
	tr.AssertNotCalled(t, "Train", mock.Anything, mock.Anything)
}

func TestFetchMatrices(t *testing.T) {
	svc, tr, _ := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StageResults)

	tr.On("ConfusionMatrix", mock.Anything, "sess-1", wizard.ModelPerceptron, "json").
		Return(trainer.MatrixResponse{Matrix: [][]int{{10, 0}, {1, 9}}}, nil).Once()
	tr.On("ConfusionMatrix", mock.Anything, "sess-1", wizard.ModelMLP, "json").
		Return(trainer.MatrixResponse{}, pkgerrors.ErrRemote).Once()

	got, err := svc.FetchMatrices(ctx, w.ID)
	require.NoError(t, err)

	// The failed slot carries its error; the healthy one its matrix.
	assert.Equal(t, [][]int{{10, 0}, {1, 9}}, got.Results[wizard.ModelPerceptron].Matrix)
	assert.Empty(t, got.Results[wizard.ModelPerceptron].MatrixError)
	assert.NotEmpty(t, got.Results[wizard.ModelMLP].MatrixError)
	tr.AssertExpectations(t)
}

func TestFetchMatrixRetry(t *testing.T) {
	svc, tr, _ := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StageResults)

	tr.On("ConfusionMatrix", mock.Anything, "sess-1", wizard.ModelMLP, "json").
		Return(trainer.MatrixResponse{}, pkgerrors.ErrRemote).Once()
	_, err := svc.FetchMatrix(ctx, w.ID, wizard.ModelMLP)
	assert.ErrorIs(t, err, pkgerrors.ErrRemote)

	tr.On("ConfusionMatrix", mock.Anything, "sess-1", wizard.ModelMLP, "json").
		Return(trainer.MatrixResponse{Matrix: [][]int{{5, 1}, {0, 4}}}, nil).Once()
	got, err := svc.FetchMatrix(ctx, w.ID, wizard.ModelMLP)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{5, 1}, {0, 4}}, got.Results[wizard.ModelMLP].Matrix)
	assert.Empty(t, got.Results[wizard.ModelMLP].MatrixError)

	_, err = svc.FetchMatrix(ctx, w.ID, wizard.ModelDecisionTree)
	assert.ErrorIs(t, err, pkgerrors.ErrNotTrained)
}

func TestSaveModel(t *testing.T) {
	svc, tr, db := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StageResults)

	_, err := svc.SaveModel(ctx, w.ID, wizard.ModelMLP, "")
	assert.ErrorIs(t, err, pkgerrors.ErrMissingName)

	_, err = svc.SaveModel(ctx, w.ID, wizard.ModelDecisionTree, "mine")
	assert.ErrorIs(t, err, pkgerrors.ErrNotTrained)

	tr.On("SaveModel", mock.Anything, trainer.SaveRequest{
		SessionID: "sess-1",
		ModelType: wizard.ModelMLP,
		ModelName: "my-mlp",
	}).Return(trainer.SaveResponse{Path: "saved_models/my-mlp.pkl"}, nil).Once()

	path, err := svc.SaveModel(ctx, w.ID, wizard.ModelMLP, "my-mlp")
	require.NoError(t, err)
	assert.Equal(t, "saved_models/my-mlp.pkl", path)

	stored, err := db.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "saved_models/my-mlp.pkl", stored.Results[wizard.ModelMLP].SavedPath)
	tr.AssertExpectations(t)
}

func TestRetreatAtUpload(t *testing.T) {
	svc, tr, _ := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StageUpload)

	_, err := svc.Retreat(ctx, w.ID)
	assert.ErrorIs(t, err, pkgerrors.ErrOutOfRange)
}

func TestDeleteWizard(t *testing.T) {
	svc, tr, _ := newService(t)
	ctx := context.Background()

	w := walkToStage(t, svc, tr, wizard.StageUpload)

	require.NoError(t, svc.DeleteWizard(ctx, w.ID))
	_, err := svc.GetWizard(ctx, w.ID)
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestListWizards(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	for i := range 5 {
		_, err := svc.CreateWizard(ctx, wizard.Wizard{Name: strings.Repeat("w", i+1)})
		require.NoError(t, err)
	}

	page, err := svc.ListWizards(ctx, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), page.Total)
	assert.Len(t, page.Wizards, 3)

	rest, err := svc.ListWizards(ctx, 3, 10)
	require.NoError(t, err)
	assert.Len(t, rest.Wizards, 2)
}
