package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/rockae-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

type quizDoc struct {
	ID                    int64     `json:"id"`
	OwnerID               int64     `json:"owner_id"`
	Title                 string    `json:"title"`
	CreateDate            time.Time `json:"create_date"`
	CandidateAuthRequired bool      `json:"candidate_auth_required"`
}

// QuizIndex keeps quiz titles searchable in Elasticsearch.
type QuizIndex struct {
	es     *elasticsearch.Client
	index  string
	logger logrus.FieldLogger
}

func NewQuizIndex(es *elasticsearch.Client, index string, logger logrus.FieldLogger) *QuizIndex {
	return &QuizIndex{es: es, index: index, logger: logger}
}

func (i *QuizIndex) Index(ctx context.Context, q entity.Quiz) error {
	b, err := json.Marshal(quizDoc{
		ID:                    q.ID,
		OwnerID:               q.OwnerID,
		Title:                 q.Title,
		CreateDate:            q.CreateDate,
		CandidateAuthRequired: q.CandidateAuthRequired,
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: strconv.FormatInt(q.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return fmt.Errorf("index quiz %d: %w", q.ID, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index quiz %d: %s", q.ID, res.Status())
	}
	return nil
}

// Delete removes a quiz document; a missing document is not an error.
func (i *QuizIndex) Delete(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{Index: i.index, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.es)
	if err != nil {
		return fmt.Errorf("delete quiz %d: %w", id, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete quiz %d: %s", id, res.Status())
	}
	return nil
}

// Search matches titles among the quizzes owned by ownerID.
func (i *QuizIndex) Search(ctx context.Context, ownerID int64, q string, size int) ([]entity.Quiz, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"match": map[string]any{
						"title": map[string]any{"query": q, "fuzziness": "AUTO"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"owner_id": ownerID},
				},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := i.es.Search(
		i.es.Search.WithContext(c),
		i.es.Search.WithIndex(i.index),
		i.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("search quizzes: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source quizDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Quiz, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, entity.Quiz{
			ID:                    h.Source.ID,
			OwnerID:               h.Source.OwnerID,
			Title:                 h.Source.Title,
			CreateDate:            h.Source.CreateDate,
			CandidateAuthRequired: h.Source.CandidateAuthRequired,
		})
	}
	i.logger.WithFields(logrus.Fields{"owner_id": ownerID, "hits": len(out)}).Debug("quiz search")
	return out, nil
}
