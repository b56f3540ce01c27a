package middleware

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/craftml/mlbuilder/builder"
	"github.com/craftml/mlbuilder/wizard"
)

type loggingMiddleware struct {
	logger *slog.Logger
	svc    builder.Service
}

func Logging(logger *slog.Logger, svc builder.Service) builder.Service {
	return &loggingMiddleware{
		logger: logger,
		svc:    svc,
	}
}

func (lm *loggingMiddleware) CreateWizard(ctx context.Context, w wizard.Wizard) (resp wizard.Wizard, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("wizard",
				slog.String("name", w.Name),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Create wizard failed", args...)

			return
		}
		lm.logger.Info("Create wizard completed successfully", args...)
	}(time.Now())

	return lm.svc.CreateWizard(ctx, w)
}

func (lm *loggingMiddleware) GetWizard(ctx context.Context, wizardID string) (resp wizard.Wizard, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("wizard",
				slog.String("id", wizardID),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Get wizard failed", args...)

			return
		}
		lm.logger.Info("Get wizard completed successfully", args...)
	}(time.Now())

	return lm.svc.GetWizard(ctx, wizardID)
}

func (lm *loggingMiddleware) ListWizards(ctx context.Context, offset, limit uint64) (resp wizard.WizardPage, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Uint64("offset", offset),
			slog.Uint64("limit", limit),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("List wizards failed", args...)

			return
		}
		lm.logger.Info("List wizards completed successfully", args...)
	}(time.Now())

	return lm.svc.ListWizards(ctx, offset, limit)
}

func (lm *loggingMiddleware) DeleteWizard(ctx context.Context, wizardID string) (err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("wizard",
				slog.String("id", wizardID),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Delete wizard failed", args...)

			return
		}
		lm.logger.Info("Delete wizard completed successfully", args...)
	}(time.Now())

	return lm.svc.DeleteWizard(ctx, wizardID)
}

func (lm *loggingMiddleware) Retreat(ctx context.Context, wizardID string) (resp wizard.Wizard, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("wizard",
				slog.String("id", wizardID),
				slog.String("stage", resp.Stage.String()),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Retreat wizard failed", args...)

			return
		}
		lm.logger.Info("Retreat wizard completed successfully", args...)
	}(time.Now())

	return lm.svc.Retreat(ctx, wizardID)
}

func (lm *loggingMiddleware) UploadDataset(ctx context.Context, wizardID, filename string, file io.Reader) (resp wizard.Wizard, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("wizard",
				slog.String("id", wizardID),
			),
			slog.String("filename", filename),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Upload dataset failed", args...)

			return
		}
		lm.logger.Info("Upload dataset completed successfully", args...)
	}(time.Now())

	return lm.svc.UploadDataset(ctx, wizardID, filename, file)
}

func (lm *loggingMiddleware) ConfigurePreprocess(ctx context.Context, wizardID, method, targetColumn string) (resp wizard.Wizard, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("wizard",
				slog.String("id", wizardID),
			),
			slog.String("method", method),
			slog.String("target_column", targetColumn),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Configure preprocess failed", args...)

			return
		}
		lm.logger.Info("Configure preprocess completed successfully", args...)
	}(time.Now())

	return lm.svc.ConfigurePreprocess(ctx, wizardID, method, targetColumn)
}

func (lm *loggingMiddleware) SelectModels(ctx context.Context, wizardID string, models []string) (resp wizard.Wizard, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("wizard",
				slog.String("id", wizardID),
			),
			slog.Any("models", models),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Select models failed", args...)

			return
		}
		lm.logger.Info("Select models completed successfully", args...)
	}(time.Now())

	return lm.svc.SelectModels(ctx, wizardID, models)
}

func (lm *loggingMiddleware) Train(ctx context.Context, wizardID string, params builder.TrainParams) (resp wizard.Wizard, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("wizard",
				slog.String("id", wizardID),
			),
			slog.Int("trained", len(resp.Results)),
			slog.Int("failed", len(resp.TrainErrors)),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Train models failed", args...)

			return
		}
		lm.logger.Info("Train models completed successfully", args...)
	}(time.Now())

	return lm.svc.Train(ctx, wizardID, params)
}

func (lm *loggingMiddleware) FetchMatrices(ctx context.Context, wizardID string) (resp wizard.Wizard, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("wizard",
				slog.String("id", wizardID),
			),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Fetch confusion matrices failed", args...)

			return
		}
		lm.logger.Info("Fetch confusion matrices completed successfully", args...)
	}(time.Now())

	return lm.svc.FetchMatrices(ctx, wizardID)
}

func (lm *loggingMiddleware) FetchMatrix(ctx context.Context, wizardID, modelType string) (resp wizard.Wizard, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("wizard",
				slog.String("id", wizardID),
			),
			slog.String("model_type", modelType),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Fetch confusion matrix failed", args...)

			return
		}
		lm.logger.Info("Fetch confusion matrix completed successfully", args...)
	}(time.Now())

	return lm.svc.FetchMatrix(ctx, wizardID, modelType)
}

func (lm *loggingMiddleware) SaveModel(ctx context.Context, wizardID, modelType, name string) (path string, err error) {
	defer func(begin time.Time) {
		args := []any{
			slog.String("duration", time.Since(begin).String()),
			slog.Group("wizard",
				slog.String("id", wizardID),
			),
			slog.String("model_type", modelType),
			slog.String("model_name", name),
		}
		if err != nil {
			args = append(args, slog.Any("error", err))
			lm.logger.Warn("Save model failed", args...)

			return
		}
		args = append(args, slog.String("path", path))
		lm.logger.Info("Save model completed successfully", args...)
	}(time.Now())

	return lm.svc.SaveModel(ctx, wizardID, modelType, name)
}
