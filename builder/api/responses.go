package api

import (
	"net/http"

	"github.com/absmach/supermq"

	"github.com/craftml/mlbuilder/wizard"
)

var (
	_ supermq.Response = (*wizardResponse)(nil)
	_ supermq.Response = (*listWizardResponse)(nil)
	_ supermq.Response = (*saveModelResponse)(nil)
)

type wizardResponse struct {
	wizard.Wizard
	created bool
	deleted bool
}

func (w wizardResponse) Code() int {
	if w.created {
		return http.StatusCreated
	}
	if w.deleted {
		return http.StatusNoContent
	}

	return http.StatusOK
}

func (w wizardResponse) Headers() map[string]string {
	if w.created {
		return map[string]string{
			"Location": "/wizards/" + w.ID,
		}
	}

	return map[string]string{}
}

func (w wizardResponse) Empty() bool {
	return w.deleted
}

type listWizardResponse struct {
	wizard.WizardPage
}

func (l listWizardResponse) Code() int {
	return http.StatusOK
}

func (l listWizardResponse) Headers() map[string]string {
	return map[string]string{}
}

func (l listWizardResponse) Empty() bool {
	return false
}

type saveModelResponse struct {
	ModelType string `json:"model_type"`
	Path      string `json:"path"`
}

func (s saveModelResponse) Code() int {
	return http.StatusOK
}

func (s saveModelResponse) Headers() map[string]string {
	return map[string]string{}
}

func (s saveModelResponse) Empty() bool {
	return false
}
