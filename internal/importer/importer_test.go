package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"socialdash/internal/models"
	"socialdash/internal/store"
)

type savedPost struct {
	post models.Post
	tags []string
}

type fakeSaver struct {
	saved      []savedPost
	duplicates map[int64]bool
	err        error
}

func (f *fakeSaver) SavePost(ctx context.Context, p models.Post, tags []string) error {
	if f.err != nil {
		return f.err
	}
	if f.duplicates[p.PostID] {
		return store.ErrDuplicatePost
	}
	f.saved = append(f.saved, savedPost{post: p, tags: tags})
	return nil
}

func TestImportCSV(t *testing.T) {
	saver := &fakeSaver{duplicates: map[int64]bool{7301000000000000002: true}}
	res, err := New(saver, zap.NewNop()).ImportCSV(context.Background(), filepath.Join("testdata", "posts.csv"))
	require.NoError(t, err)

	assert.Equal(t, Result{Imported: 2, Duplicates: 1, Failed: 1}, res)
	require.Len(t, saver.saved, 2)

	first := saver.saved[0]
	assert.Equal(t, int64(7301000000000000001), first.post.PostID)
	assert.Equal(t, "Hiring tips, part 1", first.post.Caption)
	require.NotNil(t, first.post.Impressions)
	assert.Equal(t, int64(1000), *first.post.Impressions)
	require.NotNil(t, first.post.MainEbookCTR)
	assert.InDelta(t, 1.25, *first.post.MainEbookCTR, 1e-9)
	assert.Equal(t, []string{"career", "hiring"}, first.tags)

	third := saver.saved[1]
	assert.Equal(t, int64(7301000000000000003), third.post.PostID)
	assert.Nil(t, third.post.Comments)
	assert.Nil(t, third.tags)
}

func TestImportCSV_StoreFailureAborts(t *testing.T) {
	saver := &fakeSaver{err: errors.New("connection refused")}
	res, err := New(saver, zap.NewNop()).ImportCSV(context.Background(), filepath.Join("testdata", "posts.csv"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Equal(t, 0, res.Imported)
}

func TestImportCSV_MissingFile(t *testing.T) {
	_, err := New(&fakeSaver{}, zap.NewNop()).ImportCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestImportCSV_QuoteInPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "it's here")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "posts.csv")
	require.NoError(t, os.WriteFile(path, []byte("post_id,post_datetime\n1,2025-01-01\n"), 0o644))

	saver := &fakeSaver{}
	res, err := New(saver, zap.NewNop()).ImportCSV(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
}

func TestNormalizeHeader(t *testing.T) {
	testCases := []struct {
		in, want string
	}{
		{"Post ID", "post_id"},
		{" post-datetime ", "post_datetime"},
		{"main_ebook_ctr", "main_ebook_ctr"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeHeader(tc.in))
		})
	}
}

func TestSplitTopics(t *testing.T) {
	assert.Equal(t, []string{"ai", "career"}, splitTopics(" ai ; career;;"))
	assert.Nil(t, splitTopics(nil))
	assert.Nil(t, splitTopics(""))
}
