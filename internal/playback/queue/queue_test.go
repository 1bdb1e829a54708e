package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dastari/librarian/internal/models"
)

func testItems(n int) []models.QueueItem {
	items := make([]models.QueueItem, 0, n)
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		items = append(items, models.QueueItem{
			ID:          id,
			SourceID:    id,
			MediaFileID: "mf-" + id,
			Title:       "Item " + id,
		})
	}
	return items
}

func TestNewPositionsAtActiveItem(t *testing.T) {
	tests := []struct {
		name     string
		activeID string
		wantIdx  int
	}{
		{
			name:     "matches source id",
			activeID: "c",
			wantIdx:  2,
		},
		{
			name:     "matches media file id",
			activeID: "mf-b",
			wantIdx:  1,
		},
		{
			name:     "unknown id falls back to zero",
			activeID: "nope",
			wantIdx:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := New(testItems(4), tt.activeID)
			assert.Equal(t, tt.wantIdx, q.Index())
		})
	}
}

func TestNextStopsAtEndWithoutRepeat(t *testing.T) {
	q := New(testItems(3), "c")

	item, ok := q.Next()
	assert.False(t, ok)
	assert.Empty(t, item.ID)
	// Index must not move on a failed advance
	assert.Equal(t, 2, q.Index())
}

func TestNextWrapsWithRepeatAll(t *testing.T) {
	q := New(testItems(3), "c")
	q.SetRepeat(models.RepeatAll)

	item, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, "a", item.ID)
	assert.Equal(t, 0, q.Index())
}

func TestPreviousClampsToFirstItem(t *testing.T) {
	q := New(testItems(3), "a")

	item, ok := q.Previous()
	require.True(t, ok)
	assert.Equal(t, "a", item.ID, "previous on the first item restarts it")
	assert.Equal(t, 0, q.Index())
}

func TestPreviousWrapsWithRepeatAll(t *testing.T) {
	q := New(testItems(3), "a")
	q.SetRepeat(models.RepeatAll)

	item, ok := q.Previous()
	require.True(t, ok)
	assert.Equal(t, "c", item.ID)
}

func TestNextOnEmptyQueue(t *testing.T) {
	q := New(nil, "")

	_, ok := q.Next()
	assert.False(t, ok)
	_, ok = q.Previous()
	assert.False(t, ok)
	_, ok = q.Current()
	assert.False(t, ok)
}

func TestShuffleNeverRepeatsCurrent(t *testing.T) {
	q := New(testItems(5), "a")
	q.SetShuffle(true)

	prev := q.Index()
	for i := 0; i < 50; i++ {
		_, ok := q.Next()
		require.True(t, ok)
		assert.NotEqual(t, prev, q.Index(), "shuffle picked the item that was already playing")
		prev = q.Index()
	}
}

func TestShuffleSingleItemRepeats(t *testing.T) {
	q := New(testItems(1), "a")
	q.SetShuffle(true)

	item, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, "a", item.ID)
}

func TestJump(t *testing.T) {
	q := New(testItems(3), "a")

	item, ok := q.Jump(2)
	require.True(t, ok)
	assert.Equal(t, "c", item.ID)

	_, ok = q.Jump(3)
	assert.False(t, ok)
	assert.Equal(t, 2, q.Index())

	_, ok = q.Jump(-1)
	assert.False(t, ok)
}

func TestBuildFromAlbum(t *testing.T) {
	album := &models.Album{
		ID:         "album-1",
		Artist:     "Album Artist",
		ArtworkURL: "http://art/album.jpg",
		Tracks: []models.Track{
			{ID: "t3", Title: "Third", DiscNumber: 2, TrackNumber: 1, MediaFileID: "mf-3"},
			{ID: "t1", Title: "First", DiscNumber: 1, TrackNumber: 1, MediaFileID: "mf-1", Artist: "Feature"},
			{ID: "t2", Title: "Second", DiscNumber: 1, TrackNumber: 2, MediaFileID: "mf-2"},
			{ID: "t4", Title: "Unplayable", DiscNumber: 1, TrackNumber: 3},
		},
	}

	items := BuildFromAlbum(album)
	require.Len(t, items, 3, "track without a media file must be excluded")

	assert.Equal(t, []string{"t1", "t2", "t3"}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, "Feature", items[0].Artist, "track artist wins over album artist")
	assert.Equal(t, "Album Artist", items[1].Artist)
	assert.Equal(t, "http://art/album.jpg", items[1].ArtworkURL)
	assert.Equal(t, "t1", items[0].SourceID)
}

func TestBuildFromAudiobook(t *testing.T) {
	book := &models.Audiobook{
		ID:         "book-1",
		Author:     "The Author",
		ArtworkURL: "http://art/book.jpg",
		Chapters: []models.Chapter{
			{ID: "ch2", Title: "Chapter 2", ChapterNumber: 2, MediaFileID: "mf-ch2"},
			{ID: "ch1", Title: "Chapter 1", ChapterNumber: 1, MediaFileID: "mf-ch1"},
			{ID: "ch3", Title: "Missing file", ChapterNumber: 3},
		},
	}

	items := BuildFromAudiobook(book)
	require.Len(t, items, 2)
	assert.Equal(t, "ch1", items[0].ID)
	assert.Equal(t, "ch2", items[1].ID)
	assert.Equal(t, "The Author", items[0].Artist)
}

func TestBuildFromNil(t *testing.T) {
	assert.Nil(t, BuildFromAlbum(nil))
	assert.Nil(t, BuildFromAudiobook(nil))
}
