package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"socialdash/internal/store"
)

const dateParamLayout = "2006-01-02"

var validate = validator.New(validator.WithRequiredStructEnabled())

// paging is validated after parsing so bad values get a 400 instead of a silent clamp.
type paging struct {
	Offset int `validate:"gte=0"`
	Limit  int `validate:"gte=0,lte=500"`
}

// queryParams parses typed values out of a query string and keeps the first error.
type queryParams struct {
	values url.Values
	err    error
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{values: r.URL.Query()}
}

func (q *queryParams) str(name string) string {
	return strings.TrimSpace(q.values.Get(name))
}

func (q *queryParams) fail(name, raw string) {
	if q.err == nil {
		q.err = fmt.Errorf("invalid value %q for %s", raw, name)
	}
}

func (q *queryParams) int(name string) int {
	raw := q.str(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(name, raw)
	}
	return v
}

func (q *queryParams) int64Ptr(name string) *int64 {
	raw := q.str(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		q.fail(name, raw)
		return nil
	}
	return &v
}

func (q *queryParams) floatPtr(name string) *float64 {
	raw := q.str(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.fail(name, raw)
		return nil
	}
	return &v
}

func (q *queryParams) datePtr(name string) *time.Time {
	raw := q.str(name)
	if raw == "" {
		return nil
	}
	v, err := time.Parse(dateParamLayout, raw)
	if err != nil {
		q.fail(name, raw)
		return nil
	}
	return &v
}

func (q *queryParams) paging() paging {
	p := paging{Offset: q.int("offset"), Limit: q.int("limit")}
	if q.err == nil {
		if err := validate.Struct(p); err != nil {
			q.err = fmt.Errorf("invalid paging: %w", err)
		}
	}
	return p
}

func parsePostFilter(r *http.Request) (store.PostFilter, error) {
	q := newQueryParams(r)
	p := q.paging()
	f := store.PostFilter{
		Offset:         p.Offset,
		Limit:          p.Limit,
		SortBy:         q.str("sort_by"),
		SortOrder:      q.str("sort_order"),
		DateFrom:       q.datePtr("date_from"),
		DateTo:         q.datePtr("date_to"),
		LikesMin:       q.int64Ptr("likes_min"),
		LikesMax:       q.int64Ptr("likes_max"),
		ImpressionsMin: q.int64Ptr("impressions_min"),
		ImpressionsMax: q.int64Ptr("impressions_max"),
		CommentsMin:    q.int64Ptr("comments_min"),
		CommentsMax:    q.int64Ptr("comments_max"),
		LatestDateFrom: q.datePtr("latest_date_from"),
		LatestDateTo:   q.datePtr("latest_date_to"),
	}
	return f, q.err
}

func parseTopicQuery(r *http.Request) (store.TopicQuery, error) {
	q := newQueryParams(r)
	p := q.paging()
	tq := store.TopicQuery{
		Offset:         p.Offset,
		Limit:          p.Limit,
		SortBy:         q.str("sort_by"),
		SortOrder:      q.str("sort_order"),
		ImpressionsMin: q.floatPtr("impressions_min"),
		ImpressionsMax: q.floatPtr("impressions_max"),
		LikesMin:       q.floatPtr("likes_min"),
		LikesMax:       q.floatPtr("likes_max"),
		CommentsMin:    q.floatPtr("comments_min"),
		CommentsMax:    q.floatPtr("comments_max"),
		DateFrom:       q.str("date_from"),
		DateTo:         q.str("date_to"),
	}
	return tq, q.err
}

// idParam reads a numeric {id} path parameter.
func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
