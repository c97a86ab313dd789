// Package client is a Go client for the supply chain API. Every endpoint has
// one method; failures with a non-2xx status are returned as *APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// APIError is a non-2xx response from the API
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("supplychain: status=%d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("supplychain: status=%d body=%s", e.StatusCode, string(e.Body))
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsBadRequest reports whether err is a 400 from the API
func IsBadRequest(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithHeader adds a header to every request
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Add(key, value)
	}
}

// Client calls the supply chain API. Requests are never retried.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    http.Header
}

// New creates a Client for the API at baseURL, e.g. http://localhost:5000
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("supplychain: base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "supplychain: invalid base URL")
	}

	c := &Client{
		baseURL: parsed,
		// addMaterial waits for a mined receipt
		httpClient: &http.Client{Timeout: 3 * time.Minute},
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AddMaterial calls POST /api/materials/add
func (c *Client) AddMaterial(ctx context.Context, req AddMaterialRequest) (*AddMaterialResponse, error) {
	var out AddMaterialResponse
	if err := c.do(ctx, http.MethodPost, "/api/materials/add", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMaterials calls GET /api/materials/
func (c *Client) ListMaterials(ctx context.Context) ([]Material, error) {
	var out []Material
	if err := c.do(ctx, http.MethodGet, "/api/materials/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MaterialHistory calls GET /api/materials/:id/history
func (c *Client) MaterialHistory(ctx context.Context, materialID int64) ([]Transaction, error) {
	var out []Transaction
	path := "/api/materials/" + strconv.FormatInt(materialID, 10) + "/history"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MaterialStage calls GET /api/materials/:id/stage
func (c *Client) MaterialStage(ctx context.Context, materialID int64) (*MaterialStage, error) {
	var out MaterialStage
	path := "/api/materials/" + strconv.FormatInt(materialID, 10) + "/stage"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateShipment calls POST /api/shipments/add
func (c *Client) CreateShipment(ctx context.Context, req CreateShipmentRequest) (*ShipmentResponse, error) {
	var out ShipmentResponse
	if err := c.do(ctx, http.MethodPost, "/api/shipments/add", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateShipmentStatus calls POST /api/shipments/update
func (c *Client) UpdateShipmentStatus(ctx context.Context, req UpdateShipmentStatusRequest) (*ShipmentResponse, error) {
	var out ShipmentResponse
	if err := c.do(ctx, http.MethodPost, "/api/shipments/update", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListShipments calls GET /api/shipments/
func (c *Client) ListShipments(ctx context.Context) ([]Shipment, error) {
	var out []Shipment
	if err := c.do(ctx, http.MethodGet, "/api/shipments/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTransactions calls GET /api/transactions/
func (c *Client) ListTransactions(ctx context.Context) ([]Transaction, error) {
	var out []Transaction
	if err := c.do(ctx, http.MethodGet, "/api/transactions/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RecordTransaction calls POST /api/transactions/add
func (c *Client) RecordTransaction(ctx context.Context, req RecordTransactionRequest) (*TransactionResponse, error) {
	var out TransactionResponse
	if err := c.do(ctx, http.MethodPost, "/api/transactions/add", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchTransactions calls GET /api/transactions/search
func (c *Client) SearchTransactions(ctx context.Context, params SearchTransactionsParams) ([]Transaction, error) {
	query := url.Values{}
	if params.Action != "" {
		query.Set("action", params.Action)
	}
	if params.Participant != "" {
		query.Set("participant", params.Participant)
	}
	if params.MaterialID != nil {
		query.Set("materialId", strconv.FormatInt(*params.MaterialID, 10))
	}
	if params.Size > 0 {
		query.Set("size", strconv.Itoa(params.Size))
	}

	var out []Transaction
	if err := c.do(ctx, http.MethodGet, "/api/transactions/search", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddParticipant calls POST /api/participants/add
func (c *Client) AddParticipant(ctx context.Context, req AddParticipantRequest) (*ParticipantResponse, error) {
	var out ParticipantResponse
	if err := c.do(ctx, http.MethodPost, "/api/participants/add", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListParticipants calls GET /api/participants/
func (c *Client) ListParticipants(ctx context.Context) ([]Participant, error) {
	var out []Participant
	if err := c.do(ctx, http.MethodGet, "/api/participants/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "supplychain: encode request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.Wrap(err, "supplychain: build request")
	}
	for k, values := range c.headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "supplychain: %s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "supplychain: read response")
	}

	if resp.StatusCode >= 400 {
		return newAPIError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "supplychain: decode response")
	}
	return nil
}

// newAPIError reads the message from {"error": ...} or, for older servers, {"message": ...}
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: body}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Error
		if apiErr.Message == "" {
			apiErr.Message = payload.Message
		}
	}
	return apiErr
}
