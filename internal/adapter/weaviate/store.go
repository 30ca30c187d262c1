package weaviate

import (
	"context"
	"fmt"
	"time"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"paperbase/internal/retrieval"
	"paperbase/internal/vector"
)

const sourcePageSize = 1000

type Store struct {
	client  *weaviate.Client
	timeout time.Duration
}

func NewStore(client *weaviate.Client, timeout time.Duration) *Store {
	return &Store{client: client, timeout: timeout}
}

// network bounds one round trip to Weaviate. A zero timeout disables the
// bound, which the tests rely on.
func (s *Store) network(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) Insert(ctx context.Context, rec vector.Record) error {
	ctx, cancel := s.network(ctx)
	defer cancel()

	props := map[string]interface{}{
		"content":      rec.Content,
		"source":       rec.Meta.Source,
		"section":      rec.Meta.Section,
		"fileType":     rec.Meta.FileType,
		"lastModified": rec.Meta.LastModified.Format(time.RFC3339Nano),
		"createdAt":    rec.Meta.CreatedAt.Format(time.RFC3339Nano),
	}
	for k, v := range rec.Meta.Extra {
		props[k] = v
	}

	_, err := s.client.Data().Creator().
		WithClassName(vector.ClassName).
		WithProperties(props).
		WithVector(rec.Vector).
		Do(ctx)
	return err
}

func (s *Store) DeleteBySource(ctx context.Context, source string) error {
	ctx, cancel := s.network(ctx)
	defer cancel()

	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(vector.ClassName).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"source"}).
			WithOperator(filters.Equal).
			WithValueString(source)).
		Do(ctx)
	return err
}

// SearchByVector runs a nearVector query with a cosine-similarity floor.
// Weaviate filters on certainty, so the threshold is mapped through
// certainty = (1 + cos) / 2 and back on the way out.
func (s *Store) SearchByVector(ctx context.Context, vec []float32, threshold float64, limit int) ([]retrieval.Hit, error) {
	ctx, cancel := s.network(ctx)
	defer cancel()

	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector(vec).
		WithCertainty(float32((1 + threshold) / 2))

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "source"},
		{Name: "section"},
		{Name: "fileType"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "certainty"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassName).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var hits []retrieval.Hit
	if data, ok := res.Data["Get"].(map[string]interface{}); ok {
		if chunks, ok := data[vector.ClassName].([]interface{}); ok {
			for _, c := range chunks {
				props, ok := c.(map[string]interface{})
				if !ok {
					continue
				}
				hit := retrieval.Hit{}
				if content, ok := props["content"].(string); ok {
					hit.Content = content
				}
				if source, ok := props["source"].(string); ok {
					hit.Source = source
				}
				if section, ok := props["section"].(string); ok {
					hit.Section = section
				}
				if fileType, ok := props["fileType"].(string); ok {
					hit.FileType = fileType
				}
				if additional, ok := props["_additional"].(map[string]interface{}); ok {
					if certainty, ok := additional["certainty"].(float64); ok {
						hit.Similarity = 2*certainty - 1
					}
				}
				hits = append(hits, hit)
			}
		}
	}
	return hits, nil
}

// Sources lists every stored source with its newest lastModified, paging
// through the class and reducing client side.
func (s *Store) Sources(ctx context.Context) (map[string]time.Time, error) {
	fields := []graphql.Field{
		{Name: "source"},
		{Name: "lastModified"},
	}

	latest := make(map[string]time.Time)
	for offset := 0; ; offset += sourcePageSize {
		pageCtx, cancel := s.network(ctx)
		res, err := s.client.GraphQL().Get().
			WithClassName(vector.ClassName).
			WithLimit(sourcePageSize).
			WithOffset(offset).
			WithFields(fields...).
			Do(pageCtx)
		cancel()
		if err != nil {
			return nil, err
		}
		if len(res.Errors) > 0 {
			return nil, fmt.Errorf("graphql error: %v", res.Errors)
		}

		count := 0
		if data, ok := res.Data["Get"].(map[string]interface{}); ok {
			if chunks, ok := data[vector.ClassName].([]interface{}); ok {
				count = len(chunks)
				for _, c := range chunks {
					props, ok := c.(map[string]interface{})
					if !ok {
						continue
					}
					source, ok := props["source"].(string)
					if !ok || source == "" {
						continue
					}
					raw, ok := props["lastModified"].(string)
					if !ok {
						continue
					}
					modified, err := time.Parse(time.RFC3339, raw)
					if err != nil {
						continue
					}
					if modified.After(latest[source]) {
						latest[source] = modified
					}
				}
			}
		}

		if count < sourcePageSize {
			break
		}
	}
	return latest, nil
}
