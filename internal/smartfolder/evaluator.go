package smartfolder

import (
	"context"
	"sort"

	"github.com/fdenis75/hypermovie/internal/catalog"
	"github.com/fdenis75/hypermovie/internal/metrics"
)

// Evaluator evaluates SmartCriteria against the catalog, caching the last
// matching URL set per criteria hash.
type Evaluator struct {
	adapter catalog.Adapter
	cache   *Cache
}

// NewEvaluator builds an Evaluator. cache may be nil, in which case Find
// never diffs against a prior run (added is always the full match set,
// removed is always empty).
func NewEvaluator(adapter catalog.Adapter, cache *Cache) *Evaluator {
	return &Evaluator{adapter: adapter, cache: cache}
}

// FindResult is the outcome of evaluating one SmartCriteria.
type FindResult struct {
	Matched []*catalog.Video
	Added   []string
	Removed []string
}

// Find evaluates criteria against the source and diffs the result against
// the cached set from the previous Find call with the same canonical form.
func (e *Evaluator) Find(ctx context.Context, criteria catalog.SmartCriteria) (FindResult, error) {
	matched, err := e.adapter.FetchVideos(ctx, criteria.Matches)
	if err != nil {
		metrics.SmartFolderEvaluationsTotal.WithLabelValues("error").Inc()
		return FindResult{}, err
	}
	metrics.SmartFolderEvaluationsTotal.WithLabelValues("success").Inc()

	sortMatched(matched, criteria)

	urls := make([]string, len(matched))
	for i, v := range matched {
		urls[i] = v.URL
	}

	hash := criteria.CanonicalForm()
	var added, removed []string

	if e.cache != nil {
		previous, ok := e.cache.Get(hash)
		if ok {
			metrics.SmartFolderCacheHits.Inc()
			added, removed = diff(previous, urls)
		} else {
			metrics.SmartFolderCacheMisses.Inc()
			added = append(added, urls...)
		}
		if err := e.cache.Put(hash, urls); err != nil {
			return FindResult{}, err
		}
	} else {
		added = append(added, urls...)
	}

	return FindResult{Matched: matched, Added: added, Removed: removed}, nil
}

// sortMatched orders results per spec.md §4.8: by creation date ascending
// when the criteria specifies a date range, otherwise by path.
func sortMatched(matched []*catalog.Video, criteria catalog.SmartCriteria) {
	if criteria.StartDate != nil || criteria.EndDate != nil {
		sort.Slice(matched, func(i, j int) bool {
			return matched[i].DateAdded.Before(matched[j].DateAdded)
		})
		return
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].URL < matched[j].URL
	})
}

// diff reports urls present in next but not prev (added) and present in
// prev but not next (removed).
func diff(prev, next []string) (added, removed []string) {
	prevSet := toSet(prev)
	nextSet := toSet(next)

	for _, u := range next {
		if !prevSet[u] {
			added = append(added, u)
		}
	}
	for _, u := range prev {
		if !nextSet[u] {
			removed = append(removed, u)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func toSet(urls []string) map[string]bool {
	s := make(map[string]bool, len(urls))
	for _, u := range urls {
		s[u] = true
	}
	return s
}
