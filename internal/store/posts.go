package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/corazawaf/libinjection-go"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"socialdash/internal/metrics"
	"socialdash/internal/models"
)

// Post list sort keys.
var postSortColumns = map[string]string{
	"post_datetime":        "post_datetime",
	"likes":                "likes",
	"comments":             "comments",
	"impressions":          "impressions",
	"main_ebook_ctr":       "main_ebook_ctr",
	"main_ebook_clicks":    "main_ebook_clicks",
	"latest_post_datetime": "latest_post_datetime",
}

// DefaultPostSort is used for unknown sort keys.
const DefaultPostSort = "post_datetime"

// PostFilter selects one page of the posts table. Date bounds are whole days
// and inclusive.
type PostFilter struct {
	Offset    int
	Limit     int
	SortBy    string
	SortOrder string

	DateFrom, DateTo *time.Time

	LikesMin, LikesMax             *int64
	ImpressionsMin, ImpressionsMax *int64
	CommentsMin, CommentsMax       *int64

	// Bounds on the newest post among all posts sharing a topic with the row.
	LatestDateFrom, LatestDateTo *time.Time
}

type argList struct {
	args []any
}

func (a *argList) add(v any) string {
	a.args = append(a.args, v)
	return fmt.Sprintf("$%d", len(a.args))
}

// buildPostsQuery renders the posts page query. Only whitelisted column names
// are ever interpolated.
func buildPostsQuery(f PostFilter) (string, []any) {
	var a argList
	var inner, outer []string

	if f.DateFrom != nil {
		inner = append(inner, "p.post_datetime >= "+a.add(startOfDay(*f.DateFrom)))
	}
	if f.DateTo != nil {
		inner = append(inner, "p.post_datetime < "+a.add(startOfDay(*f.DateTo).AddDate(0, 0, 1)))
	}
	for _, r := range []struct {
		col      string
		min, max *int64
	}{
		{"p.likes", f.LikesMin, f.LikesMax},
		{"p.impressions", f.ImpressionsMin, f.ImpressionsMax},
		{"p.comments", f.CommentsMin, f.CommentsMax},
	} {
		if r.min != nil {
			inner = append(inner, r.col+" >= "+a.add(*r.min))
		}
		if r.max != nil {
			inner = append(inner, r.col+" <= "+a.add(*r.max))
		}
	}
	if f.LatestDateFrom != nil {
		outer = append(outer, "latest_post_datetime >= "+a.add(startOfDay(*f.LatestDateFrom)))
	}
	if f.LatestDateTo != nil {
		outer = append(outer, "latest_post_datetime < "+a.add(startOfDay(*f.LatestDateTo).AddDate(0, 0, 1)))
	}

	sortCol, ok := postSortColumns[f.SortBy]
	if !ok {
		sortCol = postSortColumns[DefaultPostSort]
	}
	order := normalizeOrder(f.SortOrder)
	// MySQL ordering: NULLs sort as the smallest value.
	nulls := "NULLS LAST"
	if order == SortAsc {
		nulls = "NULLS FIRST"
	}

	var q strings.Builder
	q.WriteString(`SELECT post_id, caption, impressions, likes, comments, post_datetime,
       main_ebook_ctr, main_ebook_clicks, latest_post_datetime
FROM (
    SELECT p.post_id, p.caption, p.impressions, p.likes, p.comments, p.post_datetime,
           p.main_ebook_ctr::float8 AS main_ebook_ctr, p.main_ebook_clicks,
           (SELECT MAX(p2.post_datetime)
              FROM posts p2
              JOIN topic_posts tp2 ON p2.post_id = tp2.post_id
             WHERE tp2.topic_id IN (
                   SELECT tp1.topic_id FROM topic_posts tp1 WHERE tp1.post_id = p.post_id
             )) AS latest_post_datetime
    FROM posts p`)
	if len(inner) > 0 {
		q.WriteString("\n    WHERE " + strings.Join(inner, " AND "))
	}
	q.WriteString("\n) AS listed")
	if len(outer) > 0 {
		q.WriteString("\nWHERE " + strings.Join(outer, " AND "))
	}
	fmt.Fprintf(&q, "\nORDER BY %s %s %s, post_id %s", sortCol, order, nulls, order)
	fmt.Fprintf(&q, "\nLIMIT %s OFFSET %s", a.add(pageLimit(f.Limit)), a.add(max(f.Offset, 0)))

	return q.String(), a.args
}

func pageLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func formatDisplayDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(models.DisplayDateLayout)
}

// ListPosts returns one page of the posts table.
func (s *Store) ListPosts(ctx context.Context, f PostFilter) ([]models.PostSummary, error) {
	query, args := buildPostsQuery(f)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.PostSummary{}
	for rows.Next() {
		var (
			id           int64
			caption      string
			postDatetime time.Time
			latest       *time.Time
			summary      models.PostSummary
		)
		if err := rows.Scan(&id, &caption, &summary.Impressions, &summary.Likes, &summary.Comments,
			&postDatetime, &summary.MainEbookCTR, &summary.MainEbookClicks, &latest); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		summary.PostID = fmt.Sprint(id)
		summary.Caption = caption
		summary.PostDatetime = postDatetime.Format(models.DisplayDateLayout)
		summary.LatestPostDatetime = formatDisplayDate(latest)
		posts = append(posts, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

const postColumns = `p.post_id, p.post_url, p.media_url, p.post_datetime, p.caption,
       p.likes, p.comments, p.impressions, p.members_reached, p.total_clicks,
       p.main_ebook_clicks, p.lead_magnet_clicks, p.profile_viewers, p.followers_gained,
       p.reactions, p.reposts, p.saves, p.sends, p.main_ebook_ctr::float8, p.created_at`

func scanPost(row pgx.Row) (models.Post, error) {
	var p models.Post
	err := row.Scan(&p.PostID, &p.PostURL, &p.MediaURL, &p.PostDatetime, &p.Caption,
		&p.Likes, &p.Comments, &p.Impressions, &p.MembersReached, &p.TotalClicks,
		&p.MainEbookClicks, &p.LeadMagnetClicks, &p.ProfileViewers, &p.FollowersGained,
		&p.Reactions, &p.Reposts, &p.Saves, &p.Sends, &p.MainEbookCTR, &p.CreatedAt)
	return p, err
}

// GetPostDetail returns a post with its topics and up to 10 similar posts.
func (s *Store) GetPostDetail(ctx context.Context, postID int64) (*models.PostDetail, error) {
	post, err := scanPost(s.pool.QueryRow(ctx, "SELECT "+postColumns+" FROM posts p WHERE p.post_id = $1", postID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", postID, err)
	}

	detail := &models.PostDetail{Post: post, Topics: []models.TopicRef{}, SimilarPosts: []models.SimilarPost{}}

	topicRows, err := s.pool.Query(ctx, `
		SELECT t.id, t.name
		FROM topics t
		JOIN topic_posts tp ON t.id = tp.topic_id
		WHERE tp.post_id = $1
		ORDER BY t.name`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get post topics: %w", err)
	}
	topics, err := pgx.CollectRows(topicRows, pgx.RowToStructByPos[models.TopicRef])
	if err != nil {
		return nil, fmt.Errorf("failed to get post topics: %w", err)
	}
	detail.Topics = append(detail.Topics, topics...)

	similarRows, err := s.pool.Query(ctx, `
		SELECT p.post_id, p.caption, p.post_datetime, p.likes, p.impressions, p.comments
		FROM posts p
		JOIN topic_posts tp ON p.post_id = tp.post_id
		WHERE tp.topic_id IN (SELECT topic_id FROM topic_posts WHERE post_id = $1)
		  AND p.post_id <> $1
		GROUP BY p.post_id
		ORDER BY p.post_datetime DESC
		LIMIT 10`, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to get similar posts: %w", err)
	}
	defer similarRows.Close()
	for similarRows.Next() {
		var (
			id int64
			sp models.SimilarPost
		)
		if err := similarRows.Scan(&id, &sp.Caption, &sp.PostDatetime, &sp.Likes, &sp.Impressions, &sp.Comments); err != nil {
			return nil, fmt.Errorf("failed to scan similar post: %w", err)
		}
		sp.PostID = fmt.Sprint(id)
		detail.SimilarPosts = append(detail.SimilarPosts, sp)
	}
	if err := similarRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get similar posts: %w", err)
	}

	if len(detail.SimilarPosts) > 0 {
		// Results are newest first, so the first similar post is the most recent one.
		recent := detail.SimilarPosts[0]
		detail.MostRecentSimilar = &recent
	}

	return detail, nil
}

// SearchSuggestions matches topics by name and posts by caption or id.
func (s *Store) SearchSuggestions(ctx context.Context, query string) ([]models.TopicRef, []models.PostRef, error) {
	topics := []models.TopicRef{}
	posts := []models.PostRef{}
	if query == "" {
		return topics, posts, nil
	}

	if injection, fingerprint := libinjection.IsSQLi(query); injection {
		metrics.SuspiciousInput.WithLabelValues("search").Inc()
		s.logger.Warn("Search input looks like SQL injection",
			zap.String("fingerprint", fingerprint),
			zap.String("query", query))
	}

	pattern := "%" + escapeLike(query) + "%"

	topicRows, err := s.pool.Query(ctx, `SELECT id, name FROM topics WHERE name ILIKE $1 ORDER BY name`, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search topics: %w", err)
	}
	found, err := pgx.CollectRows(topicRows, pgx.RowToStructByPos[models.TopicRef])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search topics: %w", err)
	}
	topics = append(topics, found...)

	postRows, err := s.pool.Query(ctx, `
		SELECT post_id::text, caption
		FROM posts
		WHERE caption ILIKE $1 OR post_id::text LIKE $1
		ORDER BY post_datetime DESC`, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search posts: %w", err)
	}
	foundPosts, err := pgx.CollectRows(postRows, pgx.RowToStructByPos[models.PostRef])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search posts: %w", err)
	}
	posts = append(posts, foundPosts...)

	return topics, posts, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ExportPosts returns every post with its topic names.
func (s *Store) ExportPosts(ctx context.Context) ([]models.ExportedPost, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+postColumns+" FROM posts p ORDER BY p.post_datetime DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to export posts: %w", err)
	}
	exported := []models.ExportedPost{}
	index := map[int64]int{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		index[p.PostID] = len(exported)
		exported = append(exported, models.ExportedPost{Post: p, Topics: []string{}})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to export posts: %w", err)
	}

	tagRows, err := s.pool.Query(ctx, `
		SELECT tp.post_id, t.name
		FROM topics t
		JOIN topic_posts tp ON t.id = tp.topic_id
		ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to export topics: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var (
			postID int64
			name   string
		)
		if err := tagRows.Scan(&postID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		if i, ok := index[postID]; ok {
			exported[i].Topics = append(exported[i].Topics, name)
		}
	}
	if err := tagRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to export topics: %w", err)
	}
	return exported, nil
}

// SavePost inserts a post, creates any missing topics and links them, all
// in one transaction. An existing post id yields ErrDuplicatePost.
func (s *Store) SavePost(ctx context.Context, p models.Post, tags []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO posts (post_id, post_url, media_url, post_datetime, caption,
			likes, comments, impressions, members_reached, total_clicks,
			main_ebook_clicks, lead_magnet_clicks, profile_viewers, followers_gained,
			reactions, reposts, saves, sends, main_ebook_ctr)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		p.PostID, p.PostURL, p.MediaURL, p.PostDatetime, p.Caption,
		p.Likes, p.Comments, p.Impressions, p.MembersReached, p.TotalClicks,
		p.MainEbookClicks, p.LeadMagnetClicks, p.ProfileViewers, p.FollowersGained,
		p.Reactions, p.Reposts, p.Saves, p.Sends, p.MainEbookCTR)
	if err != nil {
		if isUniqueViolation(err) {
			s.logger.Warn("Duplicate post skipped", zap.Int64("post_id", p.PostID))
			return ErrDuplicatePost
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}

	for _, tag := range uniqueTags(tags) {
		var topicID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO topics (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, tag).Scan(&topicID)
		if err != nil {
			return fmt.Errorf("failed to upsert topic %q: %w", tag, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO topic_posts (topic_id, post_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			topicID, p.PostID); err != nil {
			return fmt.Errorf("failed to link topic %q: %w", tag, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit post: %w", err)
	}
	s.logger.Info("Saved post", zap.Int64("post_id", p.PostID), zap.Int("topics", len(tags)))
	return nil
}

func uniqueTags(tags []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
