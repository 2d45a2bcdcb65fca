// Package models holds the records shared by the store, the query assistant
// and the HTTP layer.
package models

import "time"

// DisplayDateLayout is how dates are shown across the dashboard, e.g. "05 March 2025".
const DisplayDateLayout = "02 January 2006"

// Post is one stored social-media post with its engagement metrics.
type Post struct {
	PostID           int64     `json:"post_id,string"`
	PostURL          string    `json:"post_url"`
	MediaURL         *string   `json:"media_url"`
	PostDatetime     time.Time `json:"post_datetime"`
	Caption          string    `json:"caption"`
	Likes            *int64    `json:"likes"`
	Comments         *int64    `json:"comments"`
	Impressions      *int64    `json:"impressions"`
	MembersReached   *int64    `json:"members_reached"`
	TotalClicks      *int64    `json:"total_clicks"`
	MainEbookClicks  *int64    `json:"main_ebook_clicks"`
	LeadMagnetClicks *int64    `json:"lead_magnet_clicks"`
	ProfileViewers   *int64    `json:"profile_viewers"`
	FollowersGained  *int64    `json:"followers_gained"`
	Reactions        *int64    `json:"reactions"`
	Reposts          *int64    `json:"reposts"`
	Saves            *int64    `json:"saves"`
	Sends            *int64    `json:"sends"`
	MainEbookCTR     *float64  `json:"main_ebook_ctr"`
	CreatedAt        time.Time `json:"created_at"`
}

// Topic is a tag that groups posts.
type Topic struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// TopicRef is the minimal topic projection used by lists and suggestions.
type TopicRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// PostRef is the minimal post projection used by search suggestions.
type PostRef struct {
	PostID  string `json:"post_id"`
	Caption string `json:"caption"`
}

// PostSummary is one line of the posts table.
type PostSummary struct {
	PostID             string   `json:"post_id"`
	Caption            string   `json:"caption"`
	Impressions        *int64   `json:"impressions"`
	Likes              *int64   `json:"likes"`
	Comments           *int64   `json:"comments"`
	PostDatetime       string   `json:"post_datetime"`
	MainEbookCTR       *float64 `json:"main_ebook_ctr"`
	MainEbookClicks    *int64   `json:"main_ebook_clicks"`
	LatestPostDatetime string   `json:"latest_post_datetime"`
}

// SimilarPost is a post that shares at least one topic with another post.
type SimilarPost struct {
	PostID       string    `json:"post_id"`
	Caption      string    `json:"caption"`
	PostDatetime time.Time `json:"post_datetime"`
	Likes        *int64    `json:"likes"`
	Impressions  *int64    `json:"impressions"`
	Comments     *int64    `json:"comments"`
}

// PostDetail is everything shown on a single post page.
type PostDetail struct {
	Post              Post          `json:"post"`
	Topics            []TopicRef    `json:"topics"`
	SimilarPosts      []SimilarPost `json:"similar_posts"`
	MostRecentSimilar *SimilarPost  `json:"most_recent_similar"`
}

// TopicPost is a post listed on a topic page.
type TopicPost struct {
	PostID       string    `json:"post_id"`
	Caption      string    `json:"caption"`
	PostDatetime time.Time `json:"post_datetime"`
	Likes        *int64    `json:"likes"`
	Impressions  *int64    `json:"impressions"`
	Comments     *int64    `json:"comments"`
}

// RelatedTopic is a topic that co-occurs on posts with another topic.
type RelatedTopic struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	SharedPosts int64  `json:"shared_posts"`
}

// MetricStats holds the mean and median of one engagement metric.
type MetricStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// TopicDetail is everything shown on a single topic page.
type TopicDetail struct {
	Topic         Topic          `json:"topic"`
	Posts         []TopicPost    `json:"posts"`
	RelatedTopics []RelatedTopic `json:"related_topics"`
	Likes         MetricStats    `json:"likes"`
	Impressions   MetricStats    `json:"impressions"`
	Comments      MetricStats    `json:"comments"`
	TotalPosts    int            `json:"total_posts"`
	LastPostDate  *time.Time     `json:"last_post_date"`
}

// TopicStats is one row of the topics table before formatting.
type TopicStats struct {
	ID                int64
	Name              string
	PostCount         int64
	LastPosted        *time.Time
	MedianImpressions *float64
	MedianLikes       *float64
	MedianComments    *float64
}

// TopicSummary is one formatted row of the topics table.
type TopicSummary struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	PostCount         int64    `json:"post_count"`
	LastPosted        *string  `json:"last_posted"`
	MedianImpressions *float64 `json:"median_impressions"`
	MedianLikes       *float64 `json:"median_likes"`
	MedianComments    *float64 `json:"median_comments"`
}

// ExportedPost is one element of the JSON download.
type ExportedPost struct {
	Post
	Topics []string `json:"topics"`
}
