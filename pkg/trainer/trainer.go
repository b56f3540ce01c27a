package trainer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"

	pkgerrors "github.com/craftml/mlbuilder/pkg/errors"
)

const (
	ctJSON = "application/json"

	uploadEndpoint  = "/api/upload"
	preprocEndpoint = "/api/preprocess"
	trainEndpoint   = "/api/train"
	saveEndpoint    = "/api/save_model"
	matrixEndpoint  = "/api/confusion_matrix"
	uploadFileKey   = "file"
)

// Service is the boundary to the remote model-training service. Every
// operation is a single attempt: no retries, no timeout beyond the
// configured client, no cancellation once the request is on the wire.
type Service interface {
	// Upload sends a dataset file and opens a new training session.
	Upload(ctx context.Context, filename string, file io.Reader) (UploadResponse, error)

	// Preprocess configures preprocessing for the session.
	Preprocess(ctx context.Context, req PreprocessRequest) (PreprocessResponse, error)

	// Train fits one model and returns its metrics.
	Train(ctx context.Context, req TrainRequest) (TrainResponse, error)

	// SaveModel persists a trained model server-side under the given name.
	SaveModel(ctx context.Context, req SaveRequest) (SaveResponse, error)

	// ConfusionMatrix fetches the confusion matrix for one trained model.
	ConfusionMatrix(ctx context.Context, sessionID, modelType, format string) (MatrixResponse, error)
}

type UploadResponse struct {
	SessionID string           `json:"session_id"`
	Columns   []string         `json:"columns"`
	Preview   []map[string]any `json:"preview"`
	NumRows   int              `json:"num_rows"`
	NumCols   int              `json:"num_cols"`

	// Raw holds the response body when it could not be decoded even
	// after sentinel repair. Consumers must treat the structured fields
	// as absent in that case.
	Raw []byte `json:"-"`
}

type PreprocessRequest struct {
	SessionID    string `json:"session_id"`
	Method       string `json:"method"`
	TargetColumn string `json:"target_column"`
}

type PreprocessResponse struct {
	Message string          `json:"message"`
	Summary json.RawMessage `json:"summary"`
}

type TrainRequest struct {
	SessionID string  `json:"session_id"`
	ModelType string  `json:"model_type"`
	TestSize  float64 `json:"test_size"`

	// MLP-family only; never set for other model types.
	HiddenLayers []int   `json:"hidden_layers,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	MaxIter      int     `json:"max_iter,omitempty"`
}

type TrainResponse struct {
	Message   string         `json:"message"`
	ModelType string         `json:"model_type"`
	Metrics   map[string]any `json:"metrics"`
}

type SaveRequest struct {
	SessionID string `json:"session_id"`
	ModelType string `json:"model_type"`
	ModelName string `json:"model_name"`
}

type SaveResponse struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

type MatrixResponse struct {
	ModelType  string         `json:"model_type"`
	Metrics    map[string]any `json:"metrics"`
	Matrix     [][]int        `json:"confusion_matrix"`
	MatrixHTML string         `json:"confusion_matrix_html"`
}

type Config struct {
	BaseURL         string
	TLSVerification bool
}

type trainerClient struct {
	baseURL string
	client  *http.Client
}

func NewClient(cfg Config) Service {
	return &trainerClient{
		baseURL: cfg.BaseURL,
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !cfg.TLSVerification,
				},
			},
		},
	}
}

// The service serializes pandas output which may contain NaN or Infinity,
// neither of which is valid JSON. Substituting null keeps the rest of the
// payload usable.
var numericSentinels = regexp.MustCompile(`-?Infinity|NaN`)

func repairSentinels(body []byte) []byte {
	return numericSentinels.ReplaceAll(body, []byte("null"))
}

func (c *trainerClient) processRequest(ctx context.Context, method, reqURL, contentType string, data io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, data)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrRemote, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrRemote, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(repairSentinels(body), &envelope); err == nil && envelope.Error != "" {
			return nil, fmt.Errorf("%w: %s", pkgerrors.ErrRemote, envelope.Error)
		}

		return nil, fmt.Errorf("%w: unexpected response code %d", pkgerrors.ErrRemote, resp.StatusCode)
	}

	return body, nil
}

func (c *trainerClient) Upload(ctx context.Context, filename string, file io.Reader) (UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(uploadFileKey, filename)
	if err != nil {
		return UploadResponse{}, err
	}
	if _, err := io.Copy(fw, file); err != nil {
		return UploadResponse{}, err
	}
	if err := mw.Close(); err != nil {
		return UploadResponse{}, err
	}

	body, err := c.processRequest(ctx, http.MethodPost, c.baseURL+uploadEndpoint, mw.FormDataContentType(), &buf)
	if err != nil {
		return UploadResponse{}, err
	}

	var resp UploadResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		return resp, nil
	}

	// Best-effort repair, then give up and keep the raw payload for
	// downstream consumers to handle defensively.
	repaired := repairSentinels(body)
	resp = UploadResponse{}
	if err := json.Unmarshal(repaired, &resp); err != nil {
		return UploadResponse{Raw: body}, nil
	}

	return resp, nil
}

func (c *trainerClient) Preprocess(ctx context.Context, req PreprocessRequest) (PreprocessResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return PreprocessResponse{}, err
	}

	body, err := c.processRequest(ctx, http.MethodPost, c.baseURL+preprocEndpoint, ctJSON, bytes.NewReader(data))
	if err != nil {
		return PreprocessResponse{}, err
	}

	var resp PreprocessResponse
	if err := json.Unmarshal(repairSentinels(body), &resp); err != nil {
		return PreprocessResponse{}, fmt.Errorf("%w: %s", pkgerrors.ErrRemote, err.Error())
	}

	return resp, nil
}

func (c *trainerClient) Train(ctx context.Context, req TrainRequest) (TrainResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return TrainResponse{}, err
	}

	body, err := c.processRequest(ctx, http.MethodPost, c.baseURL+trainEndpoint, ctJSON, bytes.NewReader(data))
	if err != nil {
		return TrainResponse{}, err
	}

	var resp TrainResponse
	if err := json.Unmarshal(repairSentinels(body), &resp); err != nil {
		return TrainResponse{}, fmt.Errorf("%w: %s", pkgerrors.ErrRemote, err.Error())
	}

	return resp, nil
}

func (c *trainerClient) SaveModel(ctx context.Context, req SaveRequest) (SaveResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return SaveResponse{}, err
	}

	body, err := c.processRequest(ctx, http.MethodPost, c.baseURL+saveEndpoint, ctJSON, bytes.NewReader(data))
	if err != nil {
		return SaveResponse{}, err
	}

	var resp SaveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return SaveResponse{}, fmt.Errorf("%w: %s", pkgerrors.ErrRemote, err.Error())
	}

	return resp, nil
}

func (c *trainerClient) ConfusionMatrix(ctx context.Context, sessionID, modelType, format string) (MatrixResponse, error) {
	q := url.Values{}
	q.Set("session_id", sessionID)
	q.Set("model_type", modelType)
	if format != "" {
		q.Set("format", format)
	}

	body, err := c.processRequest(ctx, http.MethodGet, c.baseURL+matrixEndpoint+"?"+q.Encode(), "", nil)
	if err != nil {
		return MatrixResponse{}, err
	}

	var resp MatrixResponse
	if err := json.Unmarshal(repairSentinels(body), &resp); err != nil {
		return MatrixResponse{}, fmt.Errorf("%w: %s", pkgerrors.ErrRemote, err.Error())
	}

	return resp, nil
}
