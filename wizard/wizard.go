package wizard

import (
	"encoding/json"
	"time"

	"github.com/craftml/mlbuilder/pkg/errors"
)

// Stage is one screen of the five-step builder flow. Stages are strictly
// ordered and none may be skipped.
type Stage uint8

const (
	StageUpload Stage = iota
	StagePreprocess
	StageModels
	StageTrain
	StageResults
)

func (s Stage) String() string {
	switch s {
	case StageUpload:
		return "Upload"
	case StagePreprocess:
		return "Preprocess"
	case StageModels:
		return "Models"
	case StageTrain:
		return "Train"
	case StageResults:
		return "Results"
	default:
		return "Unknown"
	}
}

// ModelResult holds everything the trainer reported for one model: the
// scalar metrics from training plus the confusion matrix fetched lazily
// afterwards. MatrixError records a failed matrix fetch without touching
// the metrics or any sibling model's slot.
type ModelResult struct {
	Metrics     map[string]any `json:"metrics,omitempty"`
	Matrix      [][]int        `json:"confusion_matrix,omitempty"`
	MatrixHTML  string         `json:"confusion_matrix_html,omitempty"`
	MatrixError string         `json:"matrix_error,omitempty"`
	SavedPath   string         `json:"saved_path,omitempty"`
}

// Wizard is the accumulated output of all completed stages for one run.
// SessionID is the opaque handle issued by the trainer on upload and is
// replaced only by a re-upload. Summary is kept opaque: the service never
// interprets what the trainer reports about preprocessing.
type Wizard struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Stage       Stage                  `json:"stage"`
	SessionID   string                 `json:"session_id,omitempty"`
	Dataset     *Dataset               `json:"dataset,omitempty"`
	Summary     json.RawMessage        `json:"summary,omitempty"`
	Models      []string               `json:"models,omitempty"`
	Results     map[string]ModelResult `json:"results,omitempty"`
	TrainErrors map[string]string      `json:"train_errors,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// Advance moves to the next stage. It does not check that the current
// stage actually completed; stage operations call it on their own success
// path only.
func (w *Wizard) Advance() error {
	if w.Stage >= StageResults {
		return errors.ErrOutOfRange
	}
	w.Stage++

	return nil
}

// Retreat moves back one stage and is always permitted except at Upload.
func (w *Wizard) Retreat() error {
	if w.Stage == StageUpload {
		return errors.ErrOutOfRange
	}
	w.Stage--

	return nil
}

type WizardPage struct {
	Offset  uint64   `json:"offset"`
	Limit   uint64   `json:"limit"`
	Total   uint64   `json:"total"`
	Wizards []Wizard `json:"wizards"`
}
