package middleware

import (
	"context"
	"io"
	"time"

	"github.com/go-kit/kit/metrics"

	"github.com/craftml/mlbuilder/builder"
	"github.com/craftml/mlbuilder/wizard"
)

var _ builder.Service = (*metricsMiddleware)(nil)

type metricsMiddleware struct {
	counter metrics.Counter
	latency metrics.Histogram
	svc     builder.Service
}

func Metrics(counter metrics.Counter, latency metrics.Histogram, svc builder.Service) builder.Service {
	return &metricsMiddleware{
		counter: counter,
		latency: latency,
		svc:     svc,
	}
}

func (mm *metricsMiddleware) CreateWizard(ctx context.Context, w wizard.Wizard) (wizard.Wizard, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "create-wizard").Add(1)
		mm.latency.With("method", "create-wizard").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.CreateWizard(ctx, w)
}

func (mm *metricsMiddleware) GetWizard(ctx context.Context, wizardID string) (wizard.Wizard, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "get-wizard").Add(1)
		mm.latency.With("method", "get-wizard").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.GetWizard(ctx, wizardID)
}

func (mm *metricsMiddleware) ListWizards(ctx context.Context, offset, limit uint64) (wizard.WizardPage, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "list-wizards").Add(1)
		mm.latency.With("method", "list-wizards").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ListWizards(ctx, offset, limit)
}

func (mm *metricsMiddleware) DeleteWizard(ctx context.Context, wizardID string) error {
	defer func(begin time.Time) {
		mm.counter.With("method", "delete-wizard").Add(1)
		mm.latency.With("method", "delete-wizard").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.DeleteWizard(ctx, wizardID)
}

func (mm *metricsMiddleware) Retreat(ctx context.Context, wizardID string) (wizard.Wizard, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "retreat-wizard").Add(1)
		mm.latency.With("method", "retreat-wizard").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Retreat(ctx, wizardID)
}

func (mm *metricsMiddleware) UploadDataset(ctx context.Context, wizardID, filename string, file io.Reader) (wizard.Wizard, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "upload-dataset").Add(1)
		mm.latency.With("method", "upload-dataset").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.UploadDataset(ctx, wizardID, filename, file)
}

func (mm *metricsMiddleware) ConfigurePreprocess(ctx context.Context, wizardID, method, targetColumn string) (wizard.Wizard, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "configure-preprocess").Add(1)
		mm.latency.With("method", "configure-preprocess").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.ConfigurePreprocess(ctx, wizardID, method, targetColumn)
}

func (mm *metricsMiddleware) SelectModels(ctx context.Context, wizardID string, models []string) (wizard.Wizard, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "select-models").Add(1)
		mm.latency.With("method", "select-models").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.SelectModels(ctx, wizardID, models)
}

func (mm *metricsMiddleware) Train(ctx context.Context, wizardID string, params builder.TrainParams) (wizard.Wizard, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "train-models").Add(1)
		mm.latency.With("method", "train-models").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.Train(ctx, wizardID, params)
}

func (mm *metricsMiddleware) FetchMatrices(ctx context.Context, wizardID string) (wizard.Wizard, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "fetch-matrices").Add(1)
		mm.latency.With("method", "fetch-matrices").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.FetchMatrices(ctx, wizardID)
}

func (mm *metricsMiddleware) FetchMatrix(ctx context.Context, wizardID, modelType string) (wizard.Wizard, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "fetch-matrix").Add(1)
		mm.latency.With("method", "fetch-matrix").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.FetchMatrix(ctx, wizardID, modelType)
}

func (mm *metricsMiddleware) SaveModel(ctx context.Context, wizardID, modelType, name string) (string, error) {
	defer func(begin time.Time) {
		mm.counter.With("method", "save-model").Add(1)
		mm.latency.With("method", "save-model").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mm.svc.SaveModel(ctx, wizardID, modelType, name)
}
