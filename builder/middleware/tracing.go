package middleware

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/craftml/mlbuilder/builder"
	"github.com/craftml/mlbuilder/wizard"
)

var _ builder.Service = (*tracing)(nil)

type tracing struct {
	tracer trace.Tracer
	svc    builder.Service
}

func Tracing(tracer trace.Tracer, svc builder.Service) builder.Service {
	return &tracing{tracer, svc}
}

func (tm *tracing) CreateWizard(ctx context.Context, w wizard.Wizard) (wizard.Wizard, error) {
	ctx, span := tm.tracer.Start(ctx, "create-wizard", trace.WithAttributes(
		attribute.String("name", w.Name),
	))
	defer span.End()

	return tm.svc.CreateWizard(ctx, w)
}

func (tm *tracing) GetWizard(ctx context.Context, wizardID string) (wizard.Wizard, error) {
	ctx, span := tm.tracer.Start(ctx, "get-wizard", trace.WithAttributes(
		attribute.String("id", wizardID),
	))
	defer span.End()

	return tm.svc.GetWizard(ctx, wizardID)
}

func (tm *tracing) ListWizards(ctx context.Context, offset, limit uint64) (wizard.WizardPage, error) {
	ctx, span := tm.tracer.Start(ctx, "list-wizards", trace.WithAttributes(
		attribute.Int64("offset", int64(offset)),
		attribute.Int64("limit", int64(limit)),
	))
	defer span.End()

	return tm.svc.ListWizards(ctx, offset, limit)
}

func (tm *tracing) DeleteWizard(ctx context.Context, wizardID string) error {
	ctx, span := tm.tracer.Start(ctx, "delete-wizard", trace.WithAttributes(
		attribute.String("id", wizardID),
	))
	defer span.End()

	return tm.svc.DeleteWizard(ctx, wizardID)
}

func (tm *tracing) Retreat(ctx context.Context, wizardID string) (wizard.Wizard, error) {
	ctx, span := tm.tracer.Start(ctx, "retreat-wizard", trace.WithAttributes(
		attribute.String("id", wizardID),
	))
	defer span.End()

	return tm.svc.Retreat(ctx, wizardID)
}

func (tm *tracing) UploadDataset(ctx context.Context, wizardID, filename string, file io.Reader) (wizard.Wizard, error) {
	ctx, span := tm.tracer.Start(ctx, "upload-dataset", trace.WithAttributes(
		attribute.String("id", wizardID),
		attribute.String("filename", filename),
	))
	defer span.End()

	return tm.svc.UploadDataset(ctx, wizardID, filename, file)
}

func (tm *tracing) ConfigurePreprocess(ctx context.Context, wizardID, method, targetColumn string) (wizard.Wizard, error) {
	ctx, span := tm.tracer.Start(ctx, "configure-preprocess", trace.WithAttributes(
		attribute.String("id", wizardID),
		attribute.String("method", method),
		attribute.String("target_column", targetColumn),
	))
	defer span.End()

	return tm.svc.ConfigurePreprocess(ctx, wizardID, method, targetColumn)
}

func (tm *tracing) SelectModels(ctx context.Context, wizardID string, models []string) (wizard.Wizard, error) {
	ctx, span := tm.tracer.Start(ctx, "select-models", trace.WithAttributes(
		attribute.String("id", wizardID),
		attribute.StringSlice("models", models),
	))
	defer span.End()

	return tm.svc.SelectModels(ctx, wizardID, models)
}

func (tm *tracing) Train(ctx context.Context, wizardID string, params builder.TrainParams) (wizard.Wizard, error) {
	ctx, span := tm.tracer.Start(ctx, "train-models", trace.WithAttributes(
		attribute.String("id", wizardID),
		attribute.Float64("test_size", params.TestSize),
	))
	defer span.End()

	return tm.svc.Train(ctx, wizardID, params)
}

func (tm *tracing) FetchMatrices(ctx context.Context, wizardID string) (wizard.Wizard, error) {
	ctx, span := tm.tracer.Start(ctx, "fetch-matrices", trace.WithAttributes(
		attribute.String("id", wizardID),
	))
	defer span.End()

	return tm.svc.FetchMatrices(ctx, wizardID)
}

func (tm *tracing) FetchMatrix(ctx context.Context, wizardID, modelType string) (wizard.Wizard, error) {
	ctx, span := tm.tracer.Start(ctx, "fetch-matrix", trace.WithAttributes(
		attribute.String("id", wizardID),
		attribute.String("model_type", modelType),
	))
	defer span.End()

	return tm.svc.FetchMatrix(ctx, wizardID, modelType)
}

func (tm *tracing) SaveModel(ctx context.Context, wizardID, modelType, name string) (string, error) {
	ctx, span := tm.tracer.Start(ctx, "save-model", trace.WithAttributes(
		attribute.String("id", wizardID),
		attribute.String("model_type", modelType),
		attribute.String("model_name", name),
	))
	defer span.End()

	return tm.svc.SaveModel(ctx, wizardID, modelType, name)
}
