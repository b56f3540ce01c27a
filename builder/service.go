package builder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/0x6flab/namegenerator"
	"github.com/google/uuid"

	"github.com/craftml/mlbuilder/pkg/errors"
	"github.com/craftml/mlbuilder/pkg/storage"
	"github.com/craftml/mlbuilder/pkg/trainer"
	"github.com/craftml/mlbuilder/wizard"
)

const (
	defTestSize     = 0.2
	defLearningRate = 0.001
	defMaxIter      = 300
)

var namegen = namegenerator.NewGenerator()

type service struct {
	wizardsDB storage.Storage
	trainer   trainer.Service
	logger    *slog.Logger
}

func NewService(wizardsDB storage.Storage, t trainer.Service, logger *slog.Logger) Service {
	return &service{
		wizardsDB: wizardsDB,
		trainer:   t,
		logger:    logger,
	}
}

func (svc *service) CreateWizard(ctx context.Context, w wizard.Wizard) (wizard.Wizard, error) {
	w.ID = uuid.NewString()
	if w.Name == "" {
		w.Name = namegen.Generate()
	}
	w.Stage = wizard.StageUpload
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt

	if err := svc.wizardsDB.Create(ctx, w); err != nil {
		return wizard.Wizard{}, err
	}

	return w, nil
}

func (svc *service) GetWizard(ctx context.Context, wizardID string) (wizard.Wizard, error) {
	return svc.wizardsDB.Get(ctx, wizardID)
}

func (svc *service) ListWizards(ctx context.Context, offset, limit uint64) (wizard.WizardPage, error) {
	wizards, total, err := svc.wizardsDB.List(ctx, offset, limit)
	if err != nil {
		return wizard.WizardPage{}, err
	}

	return wizard.WizardPage{
		Offset:  offset,
		Limit:   limit,
		Total:   total,
		Wizards: wizards,
	}, nil
}

func (svc *service) DeleteWizard(ctx context.Context, wizardID string) error {
	return svc.wizardsDB.Delete(ctx, wizardID)
}

func (svc *service) Retreat(ctx context.Context, wizardID string) (wizard.Wizard, error) {
	w, err := svc.wizardsDB.Get(ctx, wizardID)
	if err != nil {
		return wizard.Wizard{}, err
	}

	if err := w.Retreat(); err != nil {
		return wizard.Wizard{}, err
	}
	w.UpdatedAt = time.Now()

	if err := svc.wizardsDB.Update(ctx, w); err != nil {
		return wizard.Wizard{}, err
	}

	return w, nil
}

func requireStage(w wizard.Wizard, s wizard.Stage) error {
	if w.Stage != s {
		return fmt.Errorf("%w: on %s, need %s", errors.ErrWrongStage, w.Stage, s)
	}

	return nil
}

func (svc *service) UploadDataset(ctx context.Context, wizardID, filename string, file io.Reader) (wizard.Wizard, error) {
	w, err := svc.wizardsDB.Get(ctx, wizardID)
	if err != nil {
		return wizard.Wizard{}, err
	}
	if err := requireStage(w, wizard.StageUpload); err != nil {
		return wizard.Wizard{}, err
	}

	resp, err := svc.trainer.Upload(ctx, filename, file)
	if err != nil {
		return wizard.Wizard{}, err
	}

	// A re-upload replaces the session and descriptor outright and
	// discards outputs of previously completed stages: they belong to a
	// session that no longer exists.
	w.SessionID = resp.SessionID
	w.Dataset = &wizard.Dataset{
		Columns: resp.Columns,
		NumRows: resp.NumRows,
		NumCols: resp.NumCols,
		Preview: resp.Preview,
	}
	w.Summary = nil
	w.Models = nil
	w.Results = nil
	w.TrainErrors = nil
	if len(resp.Raw) > 0 {
		svc.logger.Warn("trainer upload response kept raw after failed repair",
			slog.String("wizard_id", w.ID),
			slog.Int("bytes", len(resp.Raw)),
		)
	}

	if err := w.Advance(); err != nil {
		return wizard.Wizard{}, err
	}
	w.UpdatedAt = time.Now()

	if err := svc.wizardsDB.Update(ctx, w); err != nil {
		return wizard.Wizard{}, err
	}

	return w, nil
}

func (svc *service) ConfigurePreprocess(ctx context.Context, wizardID, method, targetColumn string) (wizard.Wizard, error) {
	w, err := svc.wizardsDB.Get(ctx, wizardID)
	if err != nil {
		return wizard.Wizard{}, err
	}
	if err := requireStage(w, wizard.StagePreprocess); err != nil {
		return wizard.Wizard{}, err
	}
	if w.SessionID == "" || w.Dataset == nil {
		return wizard.Wizard{}, errors.ErrMissingDataset
	}

	// Local validation first: nothing goes on the wire until both the
	// method and the target column check out.
	if method == "" {
		return wizard.Wizard{}, errors.ErrMissingMethod
	}
	method = wizard.NormalizeMethod(method)
	if method != wizard.MethodNormalization && method != wizard.MethodOneHot {
		return wizard.Wizard{}, fmt.Errorf("%w: %q", errors.ErrUnknownMethod, method)
	}
	if targetColumn == "" {
		return wizard.Wizard{}, errors.ErrMissingTarget
	}
	if !w.Dataset.HasColumn(targetColumn) {
		return wizard.Wizard{}, fmt.Errorf("%w: %q", errors.ErrUnknownColumn, targetColumn)
	}

	resp, err := svc.trainer.Preprocess(ctx, trainer.PreprocessRequest{
		SessionID:    w.SessionID,
		Method:       method,
		TargetColumn: targetColumn,
	})
	if err != nil {
		return wizard.Wizard{}, err
	}

	w.Summary = resp.Summary
	if err := w.Advance(); err != nil {
		return wizard.Wizard{}, err
	}
	w.UpdatedAt = time.Now()

	if err := svc.wizardsDB.Update(ctx, w); err != nil {
		return wizard.Wizard{}, err
	}

	return w, nil
}

func (svc *service) SelectModels(ctx context.Context, wizardID string, models []string) (wizard.Wizard, error) {
	w, err := svc.wizardsDB.Get(ctx, wizardID)
	if err != nil {
		return wizard.Wizard{}, err
	}
	if err := requireStage(w, wizard.StageModels); err != nil {
		return wizard.Wizard{}, err
	}

	if len(models) == 0 {
		return wizard.Wizard{}, errors.ErrEmptySelection
	}
	for _, m := range models {
		if !wizard.InCatalog(m) {
			return wizard.Wizard{}, fmt.Errorf("%w: %q", errors.ErrUnknownModel, m)
		}
	}

	w.Models = models
	if err := w.Advance(); err != nil {
		return wizard.Wizard{}, err
	}
	w.UpdatedAt = time.Now()

	if err := svc.wizardsDB.Update(ctx, w); err != nil {
		return wizard.Wizard{}, err
	}

	return w, nil
}

func (svc *service) Train(ctx context.Context, wizardID string, params TrainParams) (wizard.Wizard, error) {
	w, err := svc.wizardsDB.Get(ctx, wizardID)
	if err != nil {
		return wizard.Wizard{}, err
	}
	if err := requireStage(w, wizard.StageTrain); err != nil {
		return wizard.Wizard{}, err
	}
	if w.SessionID == "" {
		return wizard.Wizard{}, errors.ErrMissingDataset
	}

	testSize := params.TestSize
	if testSize == 0 {
		testSize = defTestSize
	}
	if testSize < 0 || testSize >= 1 {
		return wizard.Wizard{}, errors.ErrInvalidSplit
	}

	var hidden []int
	needsMLP := false
	for _, m := range w.Models {
		if wizard.IsMLPFamily(m) {
			needsMLP = true
		}
	}
	if needsMLP {
		if hidden, err = wizard.HiddenLayers(params.HiddenLayers, params.NumLayers, params.Neurons); err != nil {
			return wizard.Wizard{}, err
		}
	}

	// A new run replaces the previous one entirely. The reduction below
	// walks the selection in order, collecting successes and failures in
	// parallel maps; a failing model never stops its siblings.
	results := make(map[string]wizard.ModelResult)
	trainErrs := make(map[string]string)
	for _, model := range w.Models {
		req := trainer.TrainRequest{
			SessionID: w.SessionID,
			ModelType: model,
			TestSize:  testSize,
		}
		if wizard.IsMLPFamily(model) {
			req.HiddenLayers = hidden
			req.LearningRate = params.LearningRate
			if req.LearningRate == 0 {
				req.LearningRate = defLearningRate
			}
			req.MaxIter = params.MaxIter
			if req.MaxIter == 0 {
				req.MaxIter = defMaxIter
			}
		}

		resp, err := svc.trainer.Train(ctx, req)
		if err != nil {
			svc.logger.Warn("model training failed",
				slog.String("wizard_id", w.ID),
				slog.String("model_type", model),
				slog.Any("error", err),
			)
			trainErrs[model] = err.Error()

			continue
		}
		results[model] = wizard.ModelResult{Metrics: resp.Metrics}
	}

	w.Results = results
	w.TrainErrors = trainErrs

	// The stage advances even when every model failed; the results view
	// shows the per-model errors and the run can be retried from there.
	if err := w.Advance(); err != nil {
		return wizard.Wizard{}, err
	}
	w.UpdatedAt = time.Now()

	if err := svc.wizardsDB.Update(ctx, w); err != nil {
		return wizard.Wizard{}, err
	}

	return w, nil
}

type matrixSlot struct {
	model string
	resp  trainer.MatrixResponse
	err   error
}

func (svc *service) FetchMatrices(ctx context.Context, wizardID string) (wizard.Wizard, error) {
	w, err := svc.wizardsDB.Get(ctx, wizardID)
	if err != nil {
		return wizard.Wizard{}, err
	}
	if err := requireStage(w, wizard.StageResults); err != nil {
		return wizard.Wizard{}, err
	}

	models := make([]string, 0, len(w.Results))
	for m := range w.Results {
		models = append(models, m)
	}
	sort.Strings(models)

	// One independent fetch per model, each writing only its own slot,
	// joined only to fold the slots back into the wizard. A failure in
	// one slot never blocks or clobbers another.
	slots := make([]matrixSlot, len(models))
	var wg sync.WaitGroup
	for i, model := range models {
		wg.Add(1)
		go func(i int, model string) {
			defer wg.Done()
			resp, err := svc.trainer.ConfusionMatrix(ctx, w.SessionID, model, "json")
			slots[i] = matrixSlot{model: model, resp: resp, err: err}
		}(i, model)
	}
	wg.Wait()

	for _, slot := range slots {
		entry := w.Results[slot.model]
		if slot.err != nil {
			entry.MatrixError = slot.err.Error()
			w.Results[slot.model] = entry

			continue
		}
		entry.Matrix = slot.resp.Matrix
		entry.MatrixHTML = slot.resp.MatrixHTML
		entry.MatrixError = ""
		w.Results[slot.model] = entry
	}
	w.UpdatedAt = time.Now()

	if err := svc.wizardsDB.Update(ctx, w); err != nil {
		return wizard.Wizard{}, err
	}

	return w, nil
}

func (svc *service) FetchMatrix(ctx context.Context, wizardID, modelType string) (wizard.Wizard, error) {
	w, err := svc.wizardsDB.Get(ctx, wizardID)
	if err != nil {
		return wizard.Wizard{}, err
	}
	if err := requireStage(w, wizard.StageResults); err != nil {
		return wizard.Wizard{}, err
	}

	entry, ok := w.Results[modelType]
	if !ok {
		return wizard.Wizard{}, errors.ErrNotTrained
	}

	resp, err := svc.trainer.ConfusionMatrix(ctx, w.SessionID, modelType, "json")
	if err != nil {
		entry.MatrixError = err.Error()
		w.Results[modelType] = entry
		w.UpdatedAt = time.Now()
		if uerr := svc.wizardsDB.Update(ctx, w); uerr != nil {
			return wizard.Wizard{}, uerr
		}

		return wizard.Wizard{}, err
	}

	entry.Matrix = resp.Matrix
	entry.MatrixHTML = resp.MatrixHTML
	entry.MatrixError = ""
	w.Results[modelType] = entry
	w.UpdatedAt = time.Now()

	if err := svc.wizardsDB.Update(ctx, w); err != nil {
		return wizard.Wizard{}, err
	}

	return w, nil
}

func (svc *service) SaveModel(ctx context.Context, wizardID, modelType, name string) (string, error) {
	w, err := svc.wizardsDB.Get(ctx, wizardID)
	if err != nil {
		return "", err
	}
	if err := requireStage(w, wizard.StageResults); err != nil {
		return "", err
	}
	if name == "" {
		return "", errors.ErrMissingName
	}
	entry, ok := w.Results[modelType]
	if !ok {
		return "", errors.ErrNotTrained
	}

	resp, err := svc.trainer.SaveModel(ctx, trainer.SaveRequest{
		SessionID: w.SessionID,
		ModelType: modelType,
		ModelName: name,
	})
	if err != nil {
		return "", err
	}

	entry.SavedPath = resp.Path
	w.Results[modelType] = entry
	w.UpdatedAt = time.Now()

	if err := svc.wizardsDB.Update(ctx, w); err != nil {
		return "", err
	}

	return resp.Path, nil
}
