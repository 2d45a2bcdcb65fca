package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"socialdash/internal/models"
)

// ListTopics returns every topic ordered by name.
func (s *Store) ListTopics(ctx context.Context) ([]models.TopicRef, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM topics ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	topics, err := pgx.CollectRows(rows, pgx.RowToStructByPos[models.TopicRef])
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	if topics == nil {
		topics = []models.TopicRef{}
	}
	return topics, nil
}

// TopicStats loads per-topic counts and medians for every topic with at
// least one post. Medians are computed in Go from the sorted per-topic values.
func (s *Store) TopicStats(ctx context.Context) ([]models.TopicStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.id,
		       t.name,
		       COUNT(p.post_id) AS post_count,
		       MAX(p.post_datetime) AS last_posted,
		       COALESCE(array_agg(p.impressions::bigint ORDER BY p.impressions) FILTER (WHERE p.impressions IS NOT NULL), '{}'),
		       COALESCE(array_agg(p.likes::bigint ORDER BY p.likes) FILTER (WHERE p.likes IS NOT NULL), '{}'),
		       COALESCE(array_agg(p.comments::bigint ORDER BY p.comments) FILTER (WHERE p.comments IS NOT NULL), '{}')
		FROM topics t
		JOIN topic_posts tp ON t.id = tp.topic_id
		JOIN posts p ON tp.post_id = p.post_id
		GROUP BY t.id, t.name
		ORDER BY t.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load topic stats: %w", err)
	}
	defer rows.Close()

	stats := []models.TopicStats{}
	for rows.Next() {
		var st models.TopicStats
		var impressions, likes, comments []int64
		if err := rows.Scan(&st.ID, &st.Name, &st.PostCount, &st.LastPosted, &impressions, &likes, &comments); err != nil {
			return nil, fmt.Errorf("failed to scan topic stats: %w", err)
		}
		st.MedianImpressions = Median(impressions)
		st.MedianLikes = Median(likes)
		st.MedianComments = Median(comments)
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load topic stats: %w", err)
	}
	return stats, nil
}

// ListTopicSummaries returns one filtered, sorted page of the topics table.
func (s *Store) ListTopicSummaries(ctx context.Context, q TopicQuery) ([]models.TopicSummary, error) {
	stats, err := s.TopicStats(ctx)
	if err != nil {
		return nil, err
	}
	return SummarizeTopics(ApplyTopicQuery(stats, q)), nil
}

// GetTopicDetail returns a topic with its posts, related topics and engagement stats.
func (s *Store) GetTopicDetail(ctx context.Context, topicID int64) (*models.TopicDetail, error) {
	detail := &models.TopicDetail{Posts: []models.TopicPost{}, RelatedTopics: []models.RelatedTopic{}}

	err := s.pool.QueryRow(ctx, `SELECT id, name, created_at FROM topics WHERE id = $1`, topicID).
		Scan(&detail.Topic.ID, &detail.Topic.Name, &detail.Topic.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic %d: %w", topicID, err)
	}

	postRows, err := s.pool.Query(ctx, `
		SELECT p.post_id, p.caption, p.post_datetime, p.likes, p.impressions, p.comments
		FROM posts p
		JOIN topic_posts tp ON p.post_id = tp.post_id
		WHERE tp.topic_id = $1
		ORDER BY p.post_datetime DESC`, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to get topic posts: %w", err)
	}
	var likes, impressions, comments []int64
	for postRows.Next() {
		var (
			id int64
			tp models.TopicPost
		)
		if err := postRows.Scan(&id, &tp.Caption, &tp.PostDatetime, &tp.Likes, &tp.Impressions, &tp.Comments); err != nil {
			postRows.Close()
			return nil, fmt.Errorf("failed to scan topic post: %w", err)
		}
		tp.PostID = fmt.Sprint(id)
		likes = appendPresent(likes, tp.Likes)
		impressions = appendPresent(impressions, tp.Impressions)
		comments = appendPresent(comments, tp.Comments)
		detail.Posts = append(detail.Posts, tp)
	}
	postRows.Close()
	if err := postRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get topic posts: %w", err)
	}

	detail.TotalPosts = len(detail.Posts)
	if len(detail.Posts) > 0 {
		last := detail.Posts[0].PostDatetime
		detail.LastPostDate = &last
	}
	detail.Likes = Summarize(likes)
	detail.Impressions = Summarize(impressions)
	detail.Comments = Summarize(comments)

	relatedRows, err := s.pool.Query(ctx, `
		SELECT t.id, t.name, COUNT(*) AS shared_posts
		FROM topics t
		JOIN topic_posts tp ON t.id = tp.topic_id
		WHERE tp.post_id IN (SELECT post_id FROM topic_posts WHERE topic_id = $1)
		  AND t.id <> $1
		GROUP BY t.id, t.name
		ORDER BY shared_posts DESC, t.name
		LIMIT 10`, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to get related topics: %w", err)
	}
	related, err := pgx.CollectRows(relatedRows, pgx.RowToStructByPos[models.RelatedTopic])
	if err != nil {
		return nil, fmt.Errorf("failed to get related topics: %w", err)
	}
	detail.RelatedTopics = append(detail.RelatedTopics, related...)

	return detail, nil
}

func appendPresent(values []int64, v *int64) []int64 {
	if v == nil {
		return values
	}
	return append(values, *v)
}
