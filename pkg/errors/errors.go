package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyKey     = errors.New("empty key")
	ErrInvalidData  = errors.New("invalid data type")
	ErrEntityExists = errors.New("entity already exists")

	// ErrOutOfRange is returned by stage transitions past either end of
	// the wizard.
	ErrOutOfRange = errors.New("stage transition out of range")

	// ErrWrongStage is returned when an operation is invoked while the
	// wizard is on a different stage.
	ErrWrongStage = errors.New("operation not valid for current stage")

	// ErrMissingDataset guards every stage after upload.
	ErrMissingDataset = errors.New("no dataset uploaded")

	ErrMissingMethod  = errors.New("preprocessing method not selected")
	ErrMissingTarget  = errors.New("target column not selected")
	ErrUnknownColumn  = errors.New("target column not in dataset")
	ErrUnknownMethod  = errors.New("unknown preprocessing method")
	ErrEmptySelection = errors.New("no models selected")
	ErrUnknownModel   = errors.New("model not in catalog")
	ErrMissingName    = errors.New("model name required")
	ErrNotTrained     = errors.New("no trained model of this type")
	ErrInvalidSplit   = errors.New("test fraction must be in [0, 1)")

	// ErrRemote wraps any failure reported by or while reaching the
	// trainer service.
	ErrRemote = errors.New("trainer request failed")
)
