package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]interface{}
	header http.Header
}

func newTestClient(t *testing.T, status int, response string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.header = r.Header.Clone()
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			require.NoError(t, json.Unmarshal(data, &rec.body))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", WithHeader("X-Request-ID", "req-1"))
	require.NoError(t, err)
	return c, rec
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(" ")
	assert.Error(t, err)
}

func TestAddMaterial(t *testing.T) {
	c, rec := newTestClient(t, http.StatusCreated, `{
		"message":"Material added successfully",
		"material":{"id":"m-1","blockchainId":42,"name":"Aspirin","description":"Pain reliever","stage":"Manufactured"},
		"transaction":{"id":"t-1","materialId":42,"participant":"0xaa","action":"MEDICINE_CREATED","transactionHash":"0xfeed","details":{"materialCreated":{"material":"m-1"}},"timestamp":1}}`)

	resp, err := c.AddMaterial(context.Background(), AddMaterialRequest{Name: "Aspirin", Description: "Pain reliever", Stage: "Manufactured"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/materials/add", rec.path)
	assert.Equal(t, "Aspirin", rec.body["name"])
	assert.Equal(t, "application/json", rec.header.Get("Content-Type"))
	assert.Equal(t, "req-1", rec.header.Get("X-Request-ID"))

	assert.Equal(t, int64(42), resp.Material.BlockchainID)
	assert.Equal(t, "MEDICINE_CREATED", resp.Transaction.Action)
	assert.Equal(t, "m-1", resp.Transaction.Details.MaterialCreated.MaterialRef)
}

func TestMaterialReads(t *testing.T) {
	c, rec := newTestClient(t, http.StatusOK, `{"materialId":7,"stage":"Shipped"}`)
	stage, err := c.MaterialStage(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "/api/materials/7/stage", rec.path)
	assert.Equal(t, &MaterialStage{MaterialID: 7, Stage: "Shipped"}, stage)

	c, rec = newTestClient(t, http.StatusOK, `[{"id":"t-2","materialId":7,"timestamp":2},{"id":"t-1","materialId":7,"timestamp":1}]`)
	history, err := c.MaterialHistory(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "/api/materials/7/history", rec.path)
	assert.Len(t, history, 2)

	c, rec = newTestClient(t, http.StatusOK, `[]`)
	materials, err := c.ListMaterials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/materials/", rec.path)
	assert.Empty(t, materials)
}

func TestShipments(t *testing.T) {
	c, rec := newTestClient(t, http.StatusCreated, `{"message":"Shipment created","shipment":{"trackingId":"TRK-1","status":"Pending"}}`)
	created, err := c.CreateShipment(context.Background(), CreateShipmentRequest{MaterialID: 1, Sender: "a", Receiver: "b", TrackingID: "TRK-1"})
	require.NoError(t, err)
	assert.Equal(t, "/api/shipments/add", rec.path)
	assert.Equal(t, float64(1), rec.body["materialId"])
	assert.Equal(t, "Pending", created.Shipment.Status)

	c, _ = newTestClient(t, http.StatusNotFound, `{"error":"Shipment not found"}`)
	_, err = c.UpdateShipmentStatus(context.Background(), UpdateShipmentStatusRequest{TrackingID: "nope", Status: "Delivered"})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Shipment not found", apiErr.Message)

	c, rec = newTestClient(t, http.StatusOK, `[{"trackingId":"TRK-1","status":"Pending"}]`)
	shipments, err := c.ListShipments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Len(t, shipments, 1)
}

func TestTransactions(t *testing.T) {
	c, rec := newTestClient(t, http.StatusCreated, `{"message":"Transaction recorded successfully","transaction":{"id":"t-1","materialId":3}}`)
	resp, err := c.RecordTransaction(context.Background(), RecordTransactionRequest{MaterialID: 3, Participant: "0xa", Action: "SHIPPED"})
	require.NoError(t, err)
	assert.Equal(t, "/api/transactions/add", rec.path)
	assert.NotContains(t, rec.body, "timestamp")
	assert.Equal(t, "t-1", resp.Transaction.ID)

	c, rec = newTestClient(t, http.StatusOK, `[]`)
	id := int64(3)
	_, err = c.SearchTransactions(context.Background(), SearchTransactionsParams{Action: "SHIPPED", MaterialID: &id, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, "/api/transactions/search", rec.path)
	assert.Equal(t, "action=SHIPPED&materialId=3&size=10", rec.query)

	c, _ = newTestClient(t, http.StatusBadRequest, `{"error":"All fields are required"}`)
	_, err = c.RecordTransaction(context.Background(), RecordTransactionRequest{})
	assert.True(t, IsBadRequest(err))
	assert.Contains(t, err.Error(), "All fields are required")

	c, rec = newTestClient(t, http.StatusOK, `[{"id":"t-1"}]`)
	txs, err := c.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/transactions/", rec.path)
	assert.Len(t, txs, 1)
}

func TestParticipants(t *testing.T) {
	c, rec := newTestClient(t, http.StatusCreated, `{"message":"Participant added successfully","participant":{"id":"p-1","name":"Acme"}}`)
	resp, err := c.AddParticipant(context.Background(), AddParticipantRequest{Name: "Acme", Role: "Supplier", Address: "0xa"})
	require.NoError(t, err)
	assert.Equal(t, "/api/participants/add", rec.path)
	assert.Equal(t, "Acme", resp.Participant.Name)

	c, rec = newTestClient(t, http.StatusOK, `[{"id":"p-1"}]`)
	participants, err := c.ListParticipants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/participants/", rec.path)
	assert.Len(t, participants, 1)
}

func TestServerErrorWithoutJSON(t *testing.T) {
	c, _ := newTestClient(t, http.StatusInternalServerError, `upstream failure`)
	_, err := c.ListShipments(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "upstream failure")
}
