package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrMissingPostID is returned by DecodePost when no usable post_id is present.
var ErrMissingPostID = errors.New("post_id is required")

// Accepted post_datetime layouts, tried in order.
var postDatetimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// DecodePost builds a Post from loosely typed fields, as they arrive from a
// JSON body or a CSV row. Numbers may be strings, json.Number or floats.
// Unknown keys are ignored.
func DecodePost(fields map[string]any) (Post, error) {
	var (
		p   Post
		err error
	)

	id, err := intField(fields, "post_id")
	if err != nil {
		return Post{}, err
	}
	if id == nil {
		return Post{}, ErrMissingPostID
	}
	p.PostID = *id
	p.PostURL = stringField(fields, "post_url")
	p.Caption = stringField(fields, "caption")
	if media := stringField(fields, "media_url"); media != "" {
		p.MediaURL = &media
	}

	raw := stringField(fields, "post_datetime")
	if raw == "" {
		return Post{}, errors.New("post_datetime is required")
	}
	if p.PostDatetime, err = ParsePostDatetime(raw); err != nil {
		return Post{}, err
	}

	for _, m := range []struct {
		key string
		dst **int64
	}{
		{"likes", &p.Likes},
		{"comments", &p.Comments},
		{"impressions", &p.Impressions},
		{"members_reached", &p.MembersReached},
		{"total_clicks", &p.TotalClicks},
		{"main_ebook_clicks", &p.MainEbookClicks},
		{"lead_magnet_clicks", &p.LeadMagnetClicks},
		{"profile_viewers", &p.ProfileViewers},
		{"followers_gained", &p.FollowersGained},
		{"reactions", &p.Reactions},
		{"reposts", &p.Reposts},
		{"saves", &p.Saves},
		{"sends", &p.Sends},
	} {
		if *m.dst, err = intField(fields, m.key); err != nil {
			return Post{}, err
		}
	}

	if p.MainEbookCTR, err = floatField(fields, "main_ebook_ctr"); err != nil {
		return Post{}, err
	}
	return p, nil
}

// ParsePostDatetime accepts the timestamp shapes seen in exports and forms.
func ParsePostDatetime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range postDatetimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised post_datetime %q", raw)
}

func stringField(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// intField reads an optional integer. Empty strings and nulls are absent;
// "1,234" is accepted.
func intField(fields map[string]any, key string) (*int64, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil, nil
	}
	var n int64
	switch t := v.(type) {
	case int64:
		n = t
	case int:
		n = int64(t)
	case float64:
		if t != math.Trunc(t) {
			return nil, fmt.Errorf("%s: %v is not an integer", key, t)
		}
		n = int64(t)
	case fmt.Stringer, string:
		s := strings.ReplaceAll(strings.TrimSpace(fmt.Sprint(t)), ",", "")
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not an integer", key, s)
		}
		n = parsed
	default:
		return nil, fmt.Errorf("%s: unsupported type %T", key, v)
	}
	return &n, nil
}

// floatField reads an optional decimal; a trailing "%" is dropped.
func floatField(fields map[string]any, key string) (*float64, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return nil, nil
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int64:
		f = float64(t)
	case int:
		f = float64(t)
	case fmt.Stringer, string:
		s := strings.TrimSuffix(strings.TrimSpace(fmt.Sprint(t)), "%")
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", key, s)
		}
		f = parsed
	default:
		return nil, fmt.Errorf("%s: unsupported type %T", key, v)
	}
	return &f, nil
}
