package search

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/config"
	"example.com/backstage/services/supplychain/internal/models"
)

// ErrDisabled is returned by the no-op indexer
var ErrDisabled = errors.New("search is disabled")

// DefaultSize caps a search when the query does not set a size
const DefaultSize = 100

// TransactionQuery narrows a search over the audit log. Empty fields match everything.
type TransactionQuery struct {
	Action      string
	Participant string
	MaterialID  *int64
	Size        int
}

// Limit returns the maximum number of results, DefaultSize when Size is unset
func (q TransactionQuery) Limit() int {
	if q.Size <= 0 {
		return DefaultSize
	}
	return q.Size
}

// Matches reports whether a transaction satisfies the query
func (q TransactionQuery) Matches(tx models.Transaction) bool {
	if q.Action != "" && tx.Action != q.Action {
		return false
	}
	if q.Participant != "" && tx.Participant != q.Participant {
		return false
	}
	if q.MaterialID != nil && tx.MaterialID != *q.MaterialID {
		return false
	}
	return true
}

// Indexer indexes and searches transactions
type Indexer interface {
	IndexTransaction(ctx context.Context, tx *models.Transaction) error
	SearchTransactions(ctx context.Context, q TransactionQuery) ([]models.Transaction, error)
}

// ElasticClient provides integration with Elasticsearch
type ElasticClient struct {
	client *elasticsearch.Client
	config config.ElasticConfig
}

// NewIndexer returns an Elasticsearch indexer, or a no-op when search is disabled
func NewIndexer(cfg config.ElasticConfig) (Indexer, error) {
	if !cfg.Enabled {
		log.Warn().Msg("Elasticsearch disabled, transaction search falls back to the store")
		return NoopIndexer{}, nil
	}
	return NewElasticClient(cfg)
}

// NewElasticClient creates a new Elasticsearch client
func NewElasticClient(cfg config.ElasticConfig) (*ElasticClient, error) {
	esConfig := elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	}

	client, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Elasticsearch client")
	}

	return &ElasticClient{
		client: client,
		config: cfg,
	}, nil
}

func (c *ElasticClient) indexName() string {
	return config.FormatIndex(c.config, c.config.Index)
}

// IndexTransaction indexes an audit log entry
func (c *ElasticClient) IndexTransaction(ctx context.Context, tx *models.Transaction) error {
	doc, err := json.Marshal(tx)
	if err != nil {
		return errors.Wrap(err, "failed to marshal transaction document")
	}

	req := esapi.IndexRequest{
		Index:      c.indexName(),
		DocumentID: tx.ID,
		Body:       bytes.NewReader(doc),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return errors.Wrap(err, "failed to execute Elasticsearch index request")
	}
	defer res.Body.Close()

	if res.IsError() {
		return decodeError(res, "index")
	}

	log.Debug().Str("transaction_id", tx.ID).Msg("transaction indexed")
	return nil
}

// SearchTransactions returns matching transactions, newest first
func (c *ElasticClient) SearchTransactions(ctx context.Context, q TransactionQuery) ([]models.Transaction, error) {
	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal search query")
	}

	req := esapi.SearchRequest{
		Index: []string{c.indexName()},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute Elasticsearch search request")
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			body, err := io.ReadAll(res.Body)
			if err != nil {
				return nil, errors.Wrap(err, "failed to read Elasticsearch search response")
			}
			if errorType(body) == "index_not_found_exception" {
				// nothing has been indexed yet
				return []models.Transaction{}, nil
			}
			return nil, errors.Errorf("Elasticsearch search error [%d]: %s", res.StatusCode, body)
		}
		return nil, decodeError(res, "search")
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source models.Transaction `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "failed to parse Elasticsearch search response")
	}

	txs := make([]models.Transaction, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		txs = append(txs, hit.Source)
	}
	return txs, nil
}

func buildQuery(q TransactionQuery) map[string]interface{} {
	filters := make([]map[string]interface{}, 0, 3)
	if q.Action != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"action.keyword": q.Action}})
	}
	if q.Participant != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"participant.keyword": q.Participant}})
	}
	if q.MaterialID != nil {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"materialId": *q.MaterialID}})
	}

	return map[string]interface{}{
		"size": q.Limit(),
		"sort": []map[string]interface{}{{"timestamp": map[string]string{"order": "desc"}}},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		},
	}
}

func decodeError(res *esapi.Response, op string) error {
	var e map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&e); err != nil {
		return errors.Wrapf(err, "failed to parse Elasticsearch %s error response", op)
	}
	return errors.Errorf("Elasticsearch %s error [%s]: %v", op, strconv.Itoa(res.StatusCode), e)
}

func errorType(body []byte) string {
	var e struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Error.Type
}

// NoopIndexer is used when Elasticsearch is not configured
type NoopIndexer struct{}

func (NoopIndexer) IndexTransaction(context.Context, *models.Transaction) error { return nil }

func (NoopIndexer) SearchTransactions(context.Context, TransactionQuery) ([]models.Transaction, error) {
	return nil, ErrDisabled
}
