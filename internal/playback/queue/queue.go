// Package queue builds and navigates the ordered play queue derived from a
// parent collection (album or audiobook). Items without a resolved media
// file are not playable and never enter the queue.
package queue

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/Dastari/librarian/internal/models"
)

// Queue is an ordered, eligibility-filtered list of playable items with a
// current index. Safe for concurrent use.
type Queue struct {
	mu      sync.RWMutex
	items   []models.QueueItem
	index   int
	shuffle bool
	repeat  models.RepeatMode
	rng     *rand.Rand
}

// New creates a queue from the given items, positioned at the item whose
// SourceID or MediaFileID matches activeID. Falls back to index 0 when no
// item matches.
func New(items []models.QueueItem, activeID string) *Queue {
	q := &Queue{
		items:  items,
		repeat: models.RepeatOff,
		rng:    rand.New(rand.NewSource(rand.Int63())),
	}
	for i, item := range items {
		if item.SourceID == activeID || item.MediaFileID == activeID {
			q.index = i
			break
		}
	}
	return q
}

// BuildFromAlbum produces queue items for an album's tracks, ordered by
// (discNumber, trackNumber) ascending. Tracks without a media file are
// excluded.
func BuildFromAlbum(album *models.Album) []models.QueueItem {
	if album == nil {
		return nil
	}

	tracks := make([]models.Track, len(album.Tracks))
	copy(tracks, album.Tracks)
	sort.SliceStable(tracks, func(i, j int) bool {
		if tracks[i].DiscNumber != tracks[j].DiscNumber {
			return tracks[i].DiscNumber < tracks[j].DiscNumber
		}
		return tracks[i].TrackNumber < tracks[j].TrackNumber
	})

	items := make([]models.QueueItem, 0, len(tracks))
	for _, t := range tracks {
		if t.MediaFileID == "" {
			continue
		}
		artist := t.Artist
		if artist == "" {
			artist = album.Artist
		}
		artwork := t.ArtworkURL
		if artwork == "" {
			artwork = album.ArtworkURL
		}
		items = append(items, models.QueueItem{
			ID:          t.ID,
			MediaFileID: t.MediaFileID,
			Title:       t.Title,
			Artist:      artist,
			Duration:    t.Duration,
			ArtworkURL:  artwork,
			SourceID:    t.ID,
		})
	}
	return items
}

// BuildFromAudiobook produces queue items for an audiobook's chapters,
// ordered by chapterNumber ascending. Chapters without a media file are
// excluded.
func BuildFromAudiobook(book *models.Audiobook) []models.QueueItem {
	if book == nil {
		return nil
	}

	chapters := make([]models.Chapter, len(book.Chapters))
	copy(chapters, book.Chapters)
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].ChapterNumber < chapters[j].ChapterNumber
	})

	items := make([]models.QueueItem, 0, len(chapters))
	for _, ch := range chapters {
		if ch.MediaFileID == "" {
			continue
		}
		items = append(items, models.QueueItem{
			ID:          ch.ID,
			MediaFileID: ch.MediaFileID,
			Title:       ch.Title,
			Artist:      book.Author,
			Duration:    ch.Duration,
			ArtworkURL:  book.ArtworkURL,
			SourceID:    ch.ID,
		})
	}
	return items
}

// Items returns a copy of the queue contents
func (q *Queue) Items() []models.QueueItem {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]models.QueueItem, len(q.items))
	copy(out, q.items)
	return out
}

// Len returns the number of items in the queue
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

// Index returns the current index
func (q *Queue) Index() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.index
}

// Current returns the item at the current index
func (q *Queue) Current() (models.QueueItem, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.index < 0 || q.index >= len(q.items) {
		return models.QueueItem{}, false
	}
	return q.items[q.index], true
}

// Next advances the queue and returns the new current item.
// Past the last item it wraps to 0 only when repeat is ALL; otherwise it is
// a no-op and returns false, leaving the index unchanged.
// With shuffle active the next item is picked at random, never repeating the
// current item while more than one item exists.
func (q *Queue) Next() (models.QueueItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return models.QueueItem{}, false
	}

	if q.shuffle && len(q.items) > 1 {
		next := q.index
		for next == q.index {
			next = q.rng.Intn(len(q.items))
		}
		q.index = next
		return q.items[q.index], true
	}

	next := q.index + 1
	if next >= len(q.items) {
		if q.repeat != models.RepeatAll {
			return models.QueueItem{}, false
		}
		next = 0
	}
	q.index = next
	return q.items[q.index], true
}

// Previous steps the queue backwards and returns the new current item.
// Before the first item it wraps to the last index only when repeat is ALL;
// otherwise it clamps to 0, restarting the first item rather than failing.
func (q *Queue) Previous() (models.QueueItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return models.QueueItem{}, false
	}

	prev := q.index - 1
	if prev < 0 {
		if q.repeat == models.RepeatAll {
			prev = len(q.items) - 1
		} else {
			prev = 0
		}
	}
	q.index = prev
	return q.items[q.index], true
}

// Jump moves the queue to the given index. Out-of-range requests fail
// silently, returning false.
func (q *Queue) Jump(index int) (models.QueueItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if index < 0 || index >= len(q.items) {
		return models.QueueItem{}, false
	}
	q.index = index
	return q.items[q.index], true
}

// SetShuffle toggles shuffle mode
func (q *Queue) SetShuffle(on bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.shuffle = on
}

// Shuffle reports whether shuffle mode is active
func (q *Queue) Shuffle() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.shuffle
}

// SetRepeat sets the repeat mode
func (q *Queue) SetRepeat(mode models.RepeatMode) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.repeat = mode
}

// Repeat returns the current repeat mode
func (q *Queue) Repeat() models.RepeatMode {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.repeat
}
