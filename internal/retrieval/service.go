package retrieval

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"time"

	"paperbase/internal/retry"
)

type Service struct {
	embedder Embedder
	store    VectorStore
	retry    retry.Policy
	opts     Options
	logger   *QueryLogger
}

func NewService(e Embedder, s VectorStore, r retry.Policy, opts Options, l *QueryLogger) *Service {
	return &Service{embedder: e, store: s, retry: r, opts: opts, logger: l}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// fingerprint identifies a chunk across query variants. The same content
// can come back for several variants; source plus whitespace-stripped
// content collapses those duplicates.
func fingerprint(h Hit) string {
	return h.Source + "\x00" + whitespaceRe.ReplaceAllString(h.Content, "")
}

// Search runs every query variant through the pipeline and merges the
// results. A variant that fails to embed or search is skipped; the
// remaining variants still produce results.
func (s *Service) Search(ctx context.Context, variants []string) ([]Hit, error) {
	if len(variants) == 0 {
		return nil, nil
	}
	start := time.Now()

	merged := make(map[string]Hit)
	for _, variant := range variants {
		hits, err := s.searchVariant(ctx, variant)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.WarnContext(ctx, "query variant failed", "variant", variant, "error", err)
			continue
		}
		for _, h := range hits {
			fp := fingerprint(h)
			if prev, ok := merged[fp]; !ok || h.Similarity > prev.Similarity {
				merged[fp] = h
			}
		}
	}

	results := rank(merged, s.opts.PerSourceCap, s.opts.MaxResults)

	if s.logger != nil {
		s.logger.Log(ctx, QueryLogEntry{
			Query:       variants[0],
			NumVariants: len(variants),
			NumResults:  len(results),
			Duration:    time.Since(start),
		})
	}
	return results, nil
}

// searchVariant embeds one variant and applies threshold escalation plus
// the keyword pass.
func (s *Service) searchVariant(ctx context.Context, variant string) ([]Hit, error) {
	var vec []float32
	err := s.retry.Do(ctx, func() error {
		var embedErr error
		vec, embedErr = s.embedder.Embed(ctx, variant)
		return embedErr
	})
	if err != nil {
		return nil, err
	}

	hits, err := s.fetch(ctx, vec, s.opts.HighThreshold, s.opts.TopK)
	if err != nil {
		return nil, err
	}

	if len(hits) < s.opts.MinVectorHits {
		lowHits, err := s.fetch(ctx, vec, s.opts.LowThreshold, s.opts.TopK)
		if err != nil {
			return nil, err
		}
		if len(lowHits) > len(hits) {
			hits = lowHits
		}
	}

	boosted, err := s.keywordPass(ctx, variant, vec, hits)
	if err != nil {
		// The vector hits stand on their own; keyword failures only
		// lose the boost.
		slog.WarnContext(ctx, "keyword pass failed", "variant", variant, "error", err)
		return hits, nil
	}
	return append(hits, boosted...), nil
}

// fetch runs one store search under the shared retry policy, the same
// one that guards the embedding call.
func (s *Service) fetch(ctx context.Context, vec []float32, threshold float64, limit int) ([]Hit, error) {
	var hits []Hit
	err := s.retry.Do(ctx, func() error {
		var searchErr error
		hits, searchErr = s.store.SearchByVector(ctx, vec, threshold, limit)
		return searchErr
	})
	return hits, err
}

// keywordPass scans low-scoring candidates for literal token matches and
// force-includes any candidate with enough occurrences, so exact terms
// like clause numbers survive a weak embedding.
func (s *Service) keywordPass(ctx context.Context, variant string, vec []float32, have []Hit) ([]Hit, error) {
	tokens := keywordTokens(variant)
	if len(tokens) == 0 {
		return nil, nil
	}

	candidates, err := s.fetch(ctx, vec, 0, s.opts.ScanLimit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(have))
	for _, h := range have {
		seen[fingerprint(h)] = true
	}

	var boosted []Hit
	for _, c := range candidates {
		if seen[fingerprint(c)] {
			continue
		}
		if countOccurrences(c.Content, tokens) >= s.opts.MinKeywordHits {
			c.Keyword = true
			boosted = append(boosted, c)
		}
	}
	return boosted, nil
}

// rank orders hits by similarity and applies the per-source and overall
// caps so one long document cannot crowd out the rest.
func rank(merged map[string]Hit, perSourceCap, maxResults int) []Hit {
	hits := make([]Hit, 0, len(merged))
	for _, h := range merged {
		hits = append(hits, h)
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Similarity > hits[j].Similarity })

	perSource := make(map[string]int)
	results := make([]Hit, 0, maxResults)
	for _, h := range hits {
		if len(results) >= maxResults {
			break
		}
		if perSource[h.Source] >= perSourceCap {
			continue
		}
		perSource[h.Source]++
		results = append(results, h)
	}
	return results
}
