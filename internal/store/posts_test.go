package store

import (
	"math"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func i64(v int64) *int64 { return &v }

func TestBuildPostsQuery_Defaults(t *testing.T) {
	query, args := buildPostsQuery(PostFilter{})

	assert.Contains(t, query, "ORDER BY post_datetime DESC NULLS LAST, post_id DESC")
	assert.NotContains(t, query, "WHERE p.")
	assert.Equal(t, []any{DefaultPageSize, 0}, args)
	assert.True(t, strings.HasSuffix(query, "LIMIT $1 OFFSET $2"))
}

func TestBuildPostsQuery_Filters(t *testing.T) {
	from := time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	query, args := buildPostsQuery(PostFilter{
		Offset:         40,
		Limit:          10,
		SortBy:         "likes",
		SortOrder:      "asc",
		DateFrom:       &from,
		DateTo:         &to,
		LikesMin:       i64(5),
		CommentsMax:    i64(100),
		LatestDateFrom: &from,
	})

	assert.Contains(t, query, "WHERE p.post_datetime >= $1 AND p.post_datetime < $2 AND p.likes >= $3 AND p.comments <= $4")
	assert.Contains(t, query, "WHERE latest_post_datetime >= $5")
	assert.Contains(t, query, "ORDER BY likes ASC NULLS FIRST, post_id ASC")
	assert.Contains(t, query, "LIMIT $6 OFFSET $7")

	assert.Equal(t, []any{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		int64(5),
		int64(100),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		10,
		40,
	}, args)
}

func TestBuildPostsQuery_RejectsUnknownSort(t *testing.T) {
	query, _ := buildPostsQuery(PostFilter{SortBy: "likes; DROP TABLE posts", SortOrder: "DESC; --"})
	assert.NotContains(t, query, "DROP")
	assert.Contains(t, query, "ORDER BY post_datetime DESC NULLS LAST")
}

func TestPageLimit(t *testing.T) {
	assert.Equal(t, DefaultPageSize, pageLimit(0))
	assert.Equal(t, DefaultPageSize, pageLimit(-3))
	assert.Equal(t, 7, pageLimit(7))
	assert.Equal(t, MaxPageSize, pageLimit(10000))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\x`, escapeLike(`c:\x`))
}

func TestUniqueTags(t *testing.T) {
	assert.Equal(t, []string{"ai", "career"}, uniqueTags([]string{" ai", "career", "ai", "", "  "}))
}

func TestNormalizeValue(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "bytes", in: []byte("abc"), want: "abc"},
		{name: "int16 widened", in: int16(3), want: int64(3)},
		{name: "int32 kept", in: int32(3), want: int32(3)},
		{name: "float32 widened", in: float32(1.5), want: float64(1.5)},
		{name: "integral numeric", in: pgtype.Numeric{Int: big.NewInt(42), Exp: 0, Valid: true}, want: int64(42)},
		{name: "numeric with positive exponent", in: pgtype.Numeric{Int: big.NewInt(5), Exp: 2, Valid: true}, want: int64(500)},
		{name: "fractional numeric", in: pgtype.Numeric{Int: big.NewInt(1234), Exp: -2, Valid: true}, want: 12.34},
		{name: "null numeric", in: pgtype.Numeric{}, want: nil},
		{
			name: "numeric beyond int64 is text",
			in:   pgtype.Numeric{Int: new(big.Int).Lsh(big.NewInt(1), 70), Exp: 0, Valid: true},
			want: "1180591620717411303424",
		},
		{name: "nan float", in: math.NaN(), want: "NaN"},
		{name: "infinite float", in: math.Inf(1), want: "Infinity"},
		{name: "negative infinite float32", in: float32(math.Inf(-1)), want: "-Infinity"},
		{name: "nan numeric", in: pgtype.Numeric{NaN: true, Valid: true}, want: "NaN"},
		{name: "infinite numeric", in: pgtype.Numeric{InfinityModifier: pgtype.Infinity, Valid: true}, want: "Infinity"},
		{name: "negative infinite numeric", in: pgtype.Numeric{InfinityModifier: pgtype.NegativeInfinity, Valid: true}, want: "-Infinity"},
		{name: "uuid", in: [16]byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}, want: "12345678-9abc-def0-1234-56789abcdef0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeValue(tc.in))
		})
	}
}

func TestNormalizeValue_TimeUnchanged(t *testing.T) {
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, now, NormalizeValue(now))
}
