package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const wizardsEndpoint = "/wizards"

type Dataset struct {
	Columns []string         `json:"columns,omitempty"`
	NumRows int              `json:"num_rows"`
	NumCols int              `json:"num_cols"`
	Preview []map[string]any `json:"preview,omitempty"`
}

type ModelResult struct {
	Metrics     map[string]any `json:"metrics,omitempty"`
	Matrix      [][]int        `json:"confusion_matrix,omitempty"`
	MatrixHTML  string         `json:"confusion_matrix_html,omitempty"`
	MatrixError string         `json:"matrix_error,omitempty"`
	SavedPath   string         `json:"saved_path,omitempty"`
}

type Wizard struct {
	ID          string                 `json:"id,omitempty"`
	Name        string                 `json:"name"`
	Stage       uint8                  `json:"stage"`
	SessionID   string                 `json:"session_id,omitempty"`
	Dataset     *Dataset               `json:"dataset,omitempty"`
	Summary     json.RawMessage        `json:"summary,omitempty"`
	Models      []string               `json:"models,omitempty"`
	Results     map[string]ModelResult `json:"results,omitempty"`
	TrainErrors map[string]string      `json:"train_errors,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

type WizardPage struct {
	Offset  uint64   `json:"offset"`
	Limit   uint64   `json:"limit"`
	Total   uint64   `json:"total"`
	Wizards []Wizard `json:"wizards"`
}

type TrainParams struct {
	TestSize     float64 `json:"test_size,omitempty"`
	HiddenLayers string  `json:"hidden_layers,omitempty"`
	NumLayers    int     `json:"num_layers,omitempty"`
	Neurons      int     `json:"neurons,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	MaxIter      int     `json:"max_iter,omitempty"`
}

func (sdk *builderSDK) CreateWizard(name string) (Wizard, error) {
	data, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return Wizard{}, err
	}

	url := sdk.builderURL + wizardsEndpoint

	body, err := sdk.processRequest(http.MethodPost, url, CTJSON, data, http.StatusCreated)
	if err != nil {
		return Wizard{}, err
	}

	var w Wizard
	if err := json.Unmarshal(body, &w); err != nil {
		return Wizard{}, err
	}

	return w, nil
}

func (sdk *builderSDK) GetWizard(id string) (Wizard, error) {
	url := sdk.builderURL + wizardsEndpoint + "/" + id

	body, err := sdk.processRequest(http.MethodGet, url, CTJSON, nil, http.StatusOK)
	if err != nil {
		return Wizard{}, err
	}

	var w Wizard
	if err := json.Unmarshal(body, &w); err != nil {
		return Wizard{}, err
	}

	return w, nil
}

func (sdk *builderSDK) ListWizards(offset, limit uint64) (WizardPage, error) {
	queries := make([]string, 0)
	if offset > 0 {
		queries = append(queries, fmt.Sprintf("offset=%d", offset))
	}
	if limit > 0 {
		queries = append(queries, fmt.Sprintf("limit=%d", limit))
	}
	query := ""
	if len(queries) > 0 {
		query = "?" + strings.Join(queries, "&")
	}
	url := sdk.builderURL + wizardsEndpoint + query

	body, err := sdk.processRequest(http.MethodGet, url, CTJSON, nil, http.StatusOK)
	if err != nil {
		return WizardPage{}, err
	}

	var page WizardPage
	if err := json.Unmarshal(body, &page); err != nil {
		return WizardPage{}, err
	}

	return page, nil
}

func (sdk *builderSDK) DeleteWizard(id string) error {
	url := sdk.builderURL + wizardsEndpoint + "/" + id

	if _, err := sdk.processRequest(http.MethodDelete, url, CTJSON, nil, http.StatusNoContent); err != nil {
		return err
	}

	return nil
}

func (sdk *builderSDK) Retreat(id string) (Wizard, error) {
	url := fmt.Sprintf("%s/wizards/%s/retreat", sdk.builderURL, id)

	body, err := sdk.processRequest(http.MethodPost, url, CTJSON, nil, http.StatusOK)
	if err != nil {
		return Wizard{}, err
	}

	var w Wizard
	if err := json.Unmarshal(body, &w); err != nil {
		return Wizard{}, err
	}

	return w, nil
}

func (sdk *builderSDK) UploadDataset(id, filename string, file []byte) (Wizard, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return Wizard{}, err
	}
	if _, err := fw.Write(file); err != nil {
		return Wizard{}, err
	}
	if err := mw.Close(); err != nil {
		return Wizard{}, err
	}

	url := fmt.Sprintf("%s/wizards/%s/upload", sdk.builderURL, id)

	body, err := sdk.processRequest(http.MethodPost, url, mw.FormDataContentType(), buf.Bytes(), http.StatusOK)
	if err != nil {
		return Wizard{}, err
	}

	var w Wizard
	if err := json.Unmarshal(body, &w); err != nil {
		return Wizard{}, err
	}

	return w, nil
}

func (sdk *builderSDK) Preprocess(id, method, targetColumn string) (Wizard, error) {
	data, err := json.Marshal(map[string]string{
		"method":        method,
		"target_column": targetColumn,
	})
	if err != nil {
		return Wizard{}, err
	}

	url := fmt.Sprintf("%s/wizards/%s/preprocess", sdk.builderURL, id)

	body, err := sdk.processRequest(http.MethodPost, url, CTJSON, data, http.StatusOK)
	if err != nil {
		return Wizard{}, err
	}

	var w Wizard
	if err := json.Unmarshal(body, &w); err != nil {
		return Wizard{}, err
	}

	return w, nil
}

func (sdk *builderSDK) SelectModels(id string, models []string) (Wizard, error) {
	data, err := json.Marshal(map[string][]string{"models": models})
	if err != nil {
		return Wizard{}, err
	}

	url := fmt.Sprintf("%s/wizards/%s/models", sdk.builderURL, id)

	body, err := sdk.processRequest(http.MethodPost, url, CTJSON, data, http.StatusOK)
	if err != nil {
		return Wizard{}, err
	}

	var w Wizard
	if err := json.Unmarshal(body, &w); err != nil {
		return Wizard{}, err
	}

	return w, nil
}

func (sdk *builderSDK) Train(id string, params TrainParams) (Wizard, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return Wizard{}, err
	}

	url := fmt.Sprintf("%s/wizards/%s/train", sdk.builderURL, id)

	body, err := sdk.processRequest(http.MethodPost, url, CTJSON, data, http.StatusOK)
	if err != nil {
		return Wizard{}, err
	}

	var w Wizard
	if err := json.Unmarshal(body, &w); err != nil {
		return Wizard{}, err
	}

	return w, nil
}

func (sdk *builderSDK) FetchMatrices(id string) (Wizard, error) {
	url := fmt.Sprintf("%s/wizards/%s/matrices", sdk.builderURL, id)

	body, err := sdk.processRequest(http.MethodPost, url, CTJSON, nil, http.StatusOK)
	if err != nil {
		return Wizard{}, err
	}

	var w Wizard
	if err := json.Unmarshal(body, &w); err != nil {
		return Wizard{}, err
	}

	return w, nil
}

func (sdk *builderSDK) FetchMatrix(id, modelType string) (Wizard, error) {
	url := fmt.Sprintf("%s/wizards/%s/models/%s/matrix", sdk.builderURL, id, modelType)

	body, err := sdk.processRequest(http.MethodGet, url, CTJSON, nil, http.StatusOK)
	if err != nil {
		return Wizard{}, err
	}

	var w Wizard
	if err := json.Unmarshal(body, &w); err != nil {
		return Wizard{}, err
	}

	return w, nil
}

func (sdk *builderSDK) SaveModel(id, modelType, name string) (string, error) {
	data, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/wizards/%s/models/%s/save", sdk.builderURL, id, modelType)

	body, err := sdk.processRequest(http.MethodPost, url, CTJSON, data, http.StatusOK)
	if err != nil {
		return "", err
	}

	var resp struct {
		ModelType string `json:"model_type"`
		Path      string `json:"path"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", err
	}

	return resp.Path, nil
}
