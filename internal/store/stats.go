package store

import (
	"sort"
	"strings"
	"time"

	"socialdash/internal/models"
)

// Median of sorted values; nil when empty. Even counts average the two middle values.
func Median(sorted []int64) *float64 {
	n := len(sorted)
	if n == 0 {
		return nil
	}
	mid := n / 2
	var m float64
	if n%2 == 0 {
		m = float64(sorted[mid-1]+sorted[mid]) / 2
	} else {
		m = float64(sorted[mid])
	}
	return &m
}

// Mean of values, 0 when empty.
func Mean(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values))
}

// Summarize returns mean and median of unsorted values, zeros when empty.
func Summarize(values []int64) models.MetricStats {
	if len(values) == 0 {
		return models.MetricStats{}
	}
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return models.MetricStats{Mean: Mean(sorted), Median: *Median(sorted)}
}

// Topic list sort keys.
const (
	TopicSortPostCount         = "post_count"
	TopicSortMedianImpressions = "median_impressions"
	TopicSortMedianLikes       = "median_likes"
	TopicSortMedianComments    = "median_comments"
	TopicSortLastPosted        = "last_posted"
)

var topicSortKeys = map[string]bool{
	TopicSortPostCount:         true,
	TopicSortMedianImpressions: true,
	TopicSortMedianLikes:       true,
	TopicSortMedianComments:    true,
	TopicSortLastPosted:        true,
}

// TopicQuery filters, sorts and pages the topics table.
type TopicQuery struct {
	Offset    int
	Limit     int
	SortBy    string
	SortOrder string

	ImpressionsMin, ImpressionsMax *float64
	LikesMin, LikesMax             *float64
	CommentsMin, CommentsMax       *float64

	// DateFrom and DateTo are compared as text against "YYYY-MM-DD HH:MM:SS".
	DateFrom string
	DateTo   string
}

// Normalize applies defaults and falls back from unknown sort keys.
func (q TopicQuery) Normalize() TopicQuery {
	if !topicSortKeys[q.SortBy] {
		q.SortBy = TopicSortLastPosted
	}
	q.SortOrder = normalizeOrder(q.SortOrder)
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	return q
}

const rawDateLayout = "2006-01-02 15:04:05"

// ApplyTopicQuery filters, sorts (nulls last in both directions) and pages stats.
func ApplyTopicQuery(stats []models.TopicStats, q TopicQuery) []models.TopicStats {
	q = q.Normalize()

	filtered := make([]models.TopicStats, 0, len(stats))
	for _, s := range stats {
		if q.matches(s) {
			filtered = append(filtered, s)
		}
	}

	desc := q.SortOrder == SortDesc
	sort.SliceStable(filtered, func(i, j int) bool {
		return lessNullsLast(filtered[i], filtered[j], q.SortBy, desc)
	})

	if q.Offset >= len(filtered) {
		return []models.TopicStats{}
	}
	end := q.Offset + q.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[q.Offset:end]
}

func (q TopicQuery) matches(s models.TopicStats) bool {
	if !inRange(s.MedianImpressions, q.ImpressionsMin, q.ImpressionsMax) ||
		!inRange(s.MedianLikes, q.LikesMin, q.LikesMax) ||
		!inRange(s.MedianComments, q.CommentsMin, q.CommentsMax) {
		return false
	}
	if q.DateFrom != "" || q.DateTo != "" {
		if s.LastPosted == nil {
			return false
		}
		raw := s.LastPosted.Format(rawDateLayout)
		if q.DateFrom != "" && strings.Compare(raw, q.DateFrom) < 0 {
			return false
		}
		if q.DateTo != "" && strings.Compare(raw, q.DateTo) > 0 {
			return false
		}
	}
	return true
}

func inRange(v, lo, hi *float64) bool {
	if lo == nil && hi == nil {
		return true
	}
	if v == nil {
		return false
	}
	if lo != nil && *v < *lo {
		return false
	}
	if hi != nil && *v > *hi {
		return false
	}
	return true
}

func lessNullsLast(a, b models.TopicStats, key string, desc bool) bool {
	if key == TopicSortLastPosted {
		return compareNullable(timeKey(a.LastPosted), timeKey(b.LastPosted), desc)
	}
	if key == TopicSortPostCount {
		av, bv := float64(a.PostCount), float64(b.PostCount)
		return compareNullable(&av, &bv, desc)
	}
	return compareNullable(metricKey(a, key), metricKey(b, key), desc)
}

func compareNullable(a, b *float64, desc bool) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil:
		return false
	case b == nil:
		return true
	case desc:
		return *a > *b
	default:
		return *a < *b
	}
}

func timeKey(t *time.Time) *float64 {
	if t == nil {
		return nil
	}
	v := float64(t.UnixNano())
	return &v
}

func metricKey(s models.TopicStats, key string) *float64 {
	switch key {
	case TopicSortMedianImpressions:
		return s.MedianImpressions
	case TopicSortMedianLikes:
		return s.MedianLikes
	case TopicSortMedianComments:
		return s.MedianComments
	}
	return nil
}

// SummarizeTopics formats stats rows for the API.
func SummarizeTopics(stats []models.TopicStats) []models.TopicSummary {
	out := make([]models.TopicSummary, len(stats))
	for i, s := range stats {
		out[i] = models.TopicSummary{
			ID:                s.ID,
			Name:              s.Name,
			PostCount:         s.PostCount,
			MedianImpressions: s.MedianImpressions,
			MedianLikes:       s.MedianLikes,
			MedianComments:    s.MedianComments,
		}
		if s.LastPosted != nil {
			formatted := s.LastPosted.Format(models.DisplayDateLayout)
			out[i].LastPosted = &formatted
		}
	}
	return out
}
