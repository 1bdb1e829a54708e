package playback

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dastari/librarian/internal/api/librarian"
	"github.com/Dastari/librarian/internal/logger"
	"github.com/Dastari/librarian/internal/models"
	"github.com/Dastari/librarian/internal/playback/state"
	"github.com/Dastari/librarian/internal/resolver"
)

// fakeAPI implements librarian.PlaybackAPI and librarian.ContentAPI
type fakeAPI struct {
	mu          sync.Mutex
	startCalls  []librarian.StartPlaybackInput
	updateCalls []models.PlaybackUpdate
	stopCalls   int
	failStart   bool
	failUpdate  bool
	failStop    bool
	session     *models.PlaybackSession
	album       *models.Album
	book        *models.Audiobook
	nextID      int
}

func (f *fakeAPI) StartPlayback(ctx context.Context, input librarian.StartPlaybackInput) (*librarian.PlaybackResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls = append(f.startCalls, input)
	if f.failStart {
		return &librarian.PlaybackResult{Success: false, Error: "not allowed"}, nil
	}
	f.nextID++
	session := &models.PlaybackSession{
		ID:              fmt.Sprintf("sess-%d", f.nextID),
		ContentType:     input.ContentType,
		ContentID:       input.ContentID,
		ParentID:        input.ParentID,
		MediaFileID:     input.MediaFileID,
		CurrentPosition: input.CurrentPosition,
		Duration:        input.Duration,
		IsPlaying:       input.IsPlaying,
		IsMuted:         input.IsMuted,
	}
	f.session = session
	echo := *session
	return &librarian.PlaybackResult{Success: true, Session: &echo}, nil
}

func (f *fakeAPI) UpdatePlayback(ctx context.Context, update models.PlaybackUpdate) (*librarian.PlaybackResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls = append(f.updateCalls, update)
	if f.failUpdate {
		return nil, fmt.Errorf("network down")
	}
	if f.session != nil {
		if update.CurrentPosition != nil {
			f.session.CurrentPosition = *update.CurrentPosition
		}
		if update.IsPlaying != nil {
			f.session.IsPlaying = *update.IsPlaying
		}
		if update.Duration != nil {
			f.session.Duration = *update.Duration
		}
		if update.IsMuted != nil {
			f.session.IsMuted = *update.IsMuted
		}
	}
	var echo *models.PlaybackSession
	if f.session != nil {
		copied := *f.session
		echo = &copied
	}
	return &librarian.PlaybackResult{Success: true, Session: echo}, nil
}

func (f *fakeAPI) StopPlayback(ctx context.Context) (*librarian.PlaybackResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	if f.failStop {
		return nil, fmt.Errorf("network down")
	}
	f.session = nil
	return &librarian.PlaybackResult{Success: true}, nil
}

func (f *fakeAPI) GetPlaybackSession(ctx context.Context) (*models.PlaybackSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return nil, nil
	}
	copied := *f.session
	return &copied, nil
}

func (f *fakeAPI) GetShow(ctx context.Context, showID string) (*models.Show, error) {
	return &models.Show{ID: showID, Title: "Show"}, nil
}

func (f *fakeAPI) GetEpisodes(ctx context.Context, showID string) ([]models.Episode, error) {
	return nil, nil
}

func (f *fakeAPI) GetAlbumWithTracks(ctx context.Context, albumID string) (*models.Album, error) {
	if f.album == nil {
		return nil, fmt.Errorf("album not found: %s", albumID)
	}
	return f.album, nil
}

func (f *fakeAPI) GetAudiobookWithChapters(ctx context.Context, audiobookID string) (*models.Audiobook, error) {
	if f.book == nil {
		return nil, fmt.Errorf("audiobook not found: %s", audiobookID)
	}
	return f.book, nil
}

func (f *fakeAPI) GetMovie(ctx context.Context, movieID string) (*models.Movie, error) {
	return &models.Movie{ID: movieID, Title: "Movie"}, nil
}

func (f *fakeAPI) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.startCalls)
}

func (f *fakeAPI) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updateCalls)
}

func (f *fakeAPI) lastUpdate() models.PlaybackUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateCalls[len(f.updateCalls)-1]
}

// fakeLocal implements LocalController
type fakeLocal struct {
	mu       sync.Mutex
	bound    *models.PlaybackSession
	unbinds  int
	plays    int
	pauses   int
	seeks    []float64
	position float64
	duration float64
}

func (f *fakeLocal) Bind(session *models.PlaybackSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.bound = &copied
	f.position = session.CurrentPosition
}

func (f *fakeLocal) Unbind() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bound = nil
	f.unbinds++
}

func (f *fakeLocal) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
}

func (f *fakeLocal) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
}

func (f *fakeLocal) Seek(position float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, position)
	f.position = position
}

func (f *fakeLocal) SetMuted(muted bool)      {}
func (f *fakeLocal) SetVolume(volume float64) {}

func (f *fakeLocal) Position() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *fakeLocal) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

func (f *fakeLocal) Ready() bool { return true }

func (f *fakeLocal) Bound() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bound != nil
}

func (f *fakeLocal) boundSession() *models.PlaybackSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bound
}

func (f *fakeLocal) pauseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pauses
}

// fakeCast implements CastController
type fakeCast struct {
	mu        sync.Mutex
	castCalls []librarian.CastMediaInput
	failCast  bool
	session   *models.CastSession
	plays     int
	pauses    int
	stops     int
}

func (f *fakeCast) CastMedia(ctx context.Context, input librarian.CastMediaInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.castCalls = append(f.castCalls, input)
	if f.failCast {
		return fmt.Errorf("device unreachable")
	}
	f.session = &models.CastSession{
		ID:          "cast-1",
		DeviceID:    input.DeviceID,
		MediaFileID: input.MediaFileID,
		Position:    input.Position,
		State:       models.PlayerStateBuffering,
	}
	return nil
}

func (f *fakeCast) Play(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return false
	}
	f.plays++
	return true
}

func (f *fakeCast) Pause(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return false
	}
	f.pauses++
	return true
}

func (f *fakeCast) Stop(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return false
	}
	f.stops++
	f.session = nil
	return true
}

func (f *fakeCast) Seek(ctx context.Context, position float64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return false
	}
	f.session.Position = position
	return true
}

func (f *fakeCast) SetVolume(ctx context.Context, volume float64) bool { return f.hasSession() }
func (f *fakeCast) SetMuted(ctx context.Context, muted bool) bool      { return f.hasSession() }

func (f *fakeCast) ActiveSession() *models.CastSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return nil
	}
	copied := *f.session
	return &copied
}

func (f *fakeCast) hasSession() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session != nil
}

type serviceFixture struct {
	svc   *Service
	api   *fakeAPI
	local *fakeLocal
	cast  *fakeCast
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()
	log := logger.Get()
	api := &fakeAPI{}
	local := &fakeLocal{}
	castCtl := &fakeCast{}
	res := resolver.New(api, log)
	snapshots := state.NewStore(filepath.Join(t.TempDir(), "playback_state.json"))

	svc := NewService(api, api, res, local, castCtl, snapshots, Options{
		PositionDebounce: 1.0,
	}, log)
	t.Cleanup(svc.Shutdown)

	return &serviceFixture{svc: svc, api: api, local: local, cast: castCtl}
}

func testAlbum() *models.Album {
	return &models.Album{
		ID:     "album-1",
		Title:  "Album",
		Artist: "Artist",
		Tracks: []models.Track{
			{ID: "t1", Title: "One", TrackNumber: 1, Duration: 180, MediaFileID: "mf-1"},
			{ID: "t2", Title: "Two", TrackNumber: 2, Duration: 200, MediaFileID: "mf-2"},
			{ID: "t3", Title: "Three", TrackNumber: 3, Duration: 210, MediaFileID: "mf-3"},
			{ID: "t4", Title: "Four", TrackNumber: 4, Duration: 190, MediaFileID: "mf-4"},
		},
	}
}

func TestStartMovieBindsLocalTransport(t *testing.T) {
	f := newFixture(t)

	ok := f.svc.StartMovie(context.Background(), models.Movie{
		ID: "movie-1", Title: "A Movie", Duration: 5400, MediaFileID: "mf-movie",
	}, 0)
	require.True(t, ok)

	session := f.svc.Session()
	require.NotNil(t, session)
	assert.Equal(t, models.ContentTypeMovie, session.ContentType)
	assert.True(t, session.IsPlaying)

	bound := f.local.boundSession()
	require.NotNil(t, bound)
	assert.Equal(t, "mf-movie", bound.MediaFileID)
	assert.Equal(t, models.AuthorityLocal, f.svc.Authority().Mode)
}

func TestStartFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)

	ok := f.svc.StartMovie(context.Background(), models.Movie{
		ID: "movie-1", MediaFileID: "mf-movie",
	}, 0)
	require.True(t, ok)
	before := f.svc.Session()

	f.api.failStart = true
	ok = f.svc.StartMovie(context.Background(), models.Movie{
		ID: "movie-2", MediaFileID: "mf-other",
	}, 0)
	assert.False(t, ok)

	after := f.svc.Session()
	require.NotNil(t, after)
	assert.Equal(t, before.ID, after.ID, "failed start must not replace the session")
	assert.Equal(t, "mf-movie", f.local.boundSession().MediaFileID)
}

func TestStartSupersedesPreviousSession(t *testing.T) {
	f := newFixture(t)

	require.True(t, f.svc.StartMovie(context.Background(), models.Movie{ID: "m1", MediaFileID: "mf-1"}, 0))
	first := f.svc.Session().ID

	require.True(t, f.svc.StartMovie(context.Background(), models.Movie{ID: "m2", MediaFileID: "mf-2"}, 0))
	second := f.svc.Session()
	assert.NotEqual(t, first, second.ID)
	assert.Equal(t, "m2", second.ContentID)
	assert.Equal(t, "mf-2", f.local.boundSession().MediaFileID)
}

func TestStartTrackBuildsQueue(t *testing.T) {
	f := newFixture(t)
	ok := f.svc.StartTrack(context.Background(), testAlbum(), "t2", 0)
	require.True(t, ok)

	items, index := f.svc.Queue()
	require.Len(t, items, 4)
	assert.Equal(t, 1, index)

	session := f.svc.Session()
	assert.Equal(t, "t2", session.ContentID)
	assert.Equal(t, "album-1", session.ParentID)
}

func TestStartTrackWithoutMediaFileFails(t *testing.T) {
	f := newFixture(t)
	album := testAlbum()
	album.Tracks = append(album.Tracks, models.Track{ID: "t5", Title: "Broken", TrackNumber: 5})

	ok := f.svc.StartTrack(context.Background(), album, "t5", 0)
	assert.False(t, ok)
	assert.Nil(t, f.svc.Session())
	assert.Zero(t, f.api.startCount())
}

func TestPlayNextAdvancesQueue(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartTrack(context.Background(), testAlbum(), "t1", 0))

	require.True(t, f.svc.PlayNext(context.Background()))
	assert.Equal(t, "t2", f.svc.Session().ContentID)

	_, index := f.svc.Queue()
	assert.Equal(t, 1, index)
}

func TestPlayNextAtEndWithoutRepeat(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartTrack(context.Background(), testAlbum(), "t4", 0))
	before := f.svc.Session().ID

	ok := f.svc.PlayNext(context.Background())
	assert.False(t, ok)
	assert.Equal(t, before, f.svc.Session().ID, "queue end without repeat must not touch the session")
}

func TestPlayNextWrapsWithRepeatAll(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartTrack(context.Background(), testAlbum(), "t4", 0))
	f.svc.SetRepeat(models.RepeatAll)

	require.True(t, f.svc.PlayNext(context.Background()))
	assert.Equal(t, "t1", f.svc.Session().ContentID)
}

func TestPlayPreviousOnFirstItemRestartsIt(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartTrack(context.Background(), testAlbum(), "t1", 0))
	startsBefore := f.api.startCount()

	require.True(t, f.svc.PlayPrevious(context.Background()))
	assert.Equal(t, "t1", f.svc.Session().ContentID)
	assert.Equal(t, startsBefore+1, f.api.startCount(), "restart goes through the server")
	assert.Zero(t, f.svc.Session().CurrentPosition)
}

func TestUpdateDebouncesSmallPositionChanges(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartMovie(context.Background(), models.Movie{ID: "m1", MediaFileID: "mf-1"}, 0))
	updatesBefore := f.api.updateCount()

	pos := 0.5
	ok := f.svc.Update(context.Background(), models.PlaybackUpdate{CurrentPosition: &pos})
	assert.True(t, ok, "sub-threshold updates succeed locally")
	assert.Equal(t, updatesBefore, f.api.updateCount(), "no network write below the debounce threshold")
	assert.Equal(t, 0.5, f.svc.Session().CurrentPosition, "local mirror still moves")

	pos = 5.0
	ok = f.svc.Update(context.Background(), models.PlaybackUpdate{CurrentPosition: &pos})
	assert.True(t, ok)
	assert.Equal(t, updatesBefore+1, f.api.updateCount())
}

func TestUpdateFailureKeepsOptimisticState(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartMovie(context.Background(), models.Movie{ID: "m1", MediaFileID: "mf-1"}, 0))

	f.api.failUpdate = true
	playing := false
	ok := f.svc.Update(context.Background(), models.PlaybackUpdate{IsPlaying: &playing})
	assert.False(t, ok)
	assert.False(t, f.svc.Session().IsPlaying, "optimistic value is never rolled back")
	assert.True(t, f.svc.Divergent())

	f.api.failUpdate = false
	playing = true
	require.True(t, f.svc.Update(context.Background(), models.PlaybackUpdate{IsPlaying: &playing}))
	assert.False(t, f.svc.Divergent(), "successful sync clears divergence")
}

func TestConfirmedSessionLagsBehindFailedWrites(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartMovie(context.Background(), models.Movie{ID: "m1", MediaFileID: "mf-1"}, 0))

	confirmed := f.svc.ConfirmedSession()
	require.NotNil(t, confirmed)
	assert.True(t, confirmed.IsPlaying)

	f.api.failUpdate = true
	playing := false
	f.svc.Update(context.Background(), models.PlaybackUpdate{IsPlaying: &playing})

	// The local mirror moved, the confirmed view still shows the
	// server's last word
	assert.False(t, f.svc.Session().IsPlaying)
	confirmed = f.svc.ConfirmedSession()
	require.NotNil(t, confirmed)
	assert.True(t, confirmed.IsPlaying)
}

func TestUpdateWithoutSession(t *testing.T) {
	f := newFixture(t)
	playing := true
	assert.False(t, f.svc.Update(context.Background(), models.PlaybackUpdate{IsPlaying: &playing}))
}

func TestStopClearsEverything(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartTrack(context.Background(), testAlbum(), "t1", 0))

	require.True(t, f.svc.Stop(context.Background()))
	assert.Nil(t, f.svc.Session())
	items, index := f.svc.Queue()
	assert.Nil(t, items)
	assert.Equal(t, -1, index)
	assert.False(t, f.local.Bound())
}

func TestStopFailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartMovie(context.Background(), models.Movie{ID: "m1", MediaFileID: "mf-1"}, 0))

	f.api.failStop = true
	assert.False(t, f.svc.Stop(context.Background()))
	assert.NotNil(t, f.svc.Session())
	assert.True(t, f.local.Bound())
}

func TestStopWithoutSessionIsNoop(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.svc.Stop(context.Background()))
	assert.Zero(t, f.api.stopCalls)
}

func TestStartCastingPausesLocalFirst(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartMovie(context.Background(), models.Movie{ID: "m1", MediaFileID: "mf-1"}, 0))
	f.local.position = 42

	err := f.svc.StartCasting(context.Background(), "device-1")
	require.NoError(t, err)

	assert.Equal(t, 1, f.local.pauseCount(), "local transport pauses before the handoff")
	assert.Equal(t, models.AuthorityCast, f.svc.Authority().Mode)
	assert.Equal(t, "device-1", f.svc.Authority().DeviceID)

	require.Len(t, f.cast.castCalls, 1)
	assert.Equal(t, 42.0, f.cast.castCalls[0].Position)
}

func TestStartCastingFailureKeepsLocalAuthority(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartMovie(context.Background(), models.Movie{ID: "m1", MediaFileID: "mf-1"}, 0))

	f.cast.failCast = true
	err := f.svc.StartCasting(context.Background(), "device-1")
	require.Error(t, err)
	assert.Equal(t, models.AuthorityLocal, f.svc.Authority().Mode)
}

func TestStartCastingWithoutSession(t *testing.T) {
	f := newFixture(t)
	err := f.svc.StartCasting(context.Background(), "device-1")
	assert.Error(t, err)
}

func TestCommandsRouteToCastWhileCasting(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartMovie(context.Background(), models.Movie{ID: "m1", MediaFileID: "mf-1"}, 0))
	require.NoError(t, f.svc.StartCasting(context.Background(), "device-1"))

	localPlaysBefore := f.local.plays
	f.svc.Pause(context.Background())
	f.svc.Play(context.Background())

	assert.Equal(t, 1, f.cast.pauses)
	assert.Equal(t, 1, f.cast.plays)
	assert.Equal(t, localPlaysBefore, f.local.plays, "local transport must not receive commands while casting")
}

func TestStopCastingReturnsAuthorityAtCastPosition(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartMovie(context.Background(), models.Movie{ID: "m1", MediaFileID: "mf-1"}, 0))
	require.NoError(t, f.svc.StartCasting(context.Background(), "device-1"))
	require.True(t, f.cast.Seek(context.Background(), 120))

	f.svc.StopCasting(context.Background())

	assert.Equal(t, models.AuthorityLocal, f.svc.Authority().Mode)
	session := f.svc.Session()
	require.NotNil(t, session)
	assert.Equal(t, 120.0, session.CurrentPosition)
	assert.False(t, session.IsPlaying, "playback resumes paused after a cast handback")

	// The server record must be paused too, not just the local mirror
	last := f.api.lastUpdate()
	require.NotNil(t, last.CurrentPosition)
	assert.Equal(t, 120.0, *last.CurrentPosition)
	require.NotNil(t, last.IsPlaying)
	assert.False(t, *last.IsPlaying)
}

func TestEndedAdvancesQueueOrStops(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartTrack(context.Background(), testAlbum(), "t3", 0))

	f.svc.Ended()
	require.NotNil(t, f.svc.Session())
	assert.Equal(t, "t4", f.svc.Session().ContentID)

	f.svc.Ended()
	assert.Nil(t, f.svc.Session(), "end of queue without repeat stops the session")
}

func TestRefreshAdoptsServerSession(t *testing.T) {
	f := newFixture(t)
	f.api.album = testAlbum()
	f.api.session = &models.PlaybackSession{
		ID:              "sess-remote",
		ContentType:     models.ContentTypeTrack,
		ContentID:       "t2",
		ParentID:        "album-1",
		MediaFileID:     "mf-2",
		CurrentPosition: 30,
		IsPlaying:       false,
	}

	require.NoError(t, f.svc.Refresh(context.Background()))

	session := f.svc.Session()
	require.NotNil(t, session)
	assert.Equal(t, "sess-remote", session.ID)

	items, index := f.svc.Queue()
	require.Len(t, items, 4, "audio refresh rebuilds the queue from the parent")
	assert.Equal(t, 1, index)
	assert.Equal(t, "mf-2", f.local.boundSession().MediaFileID)
}

func TestRefreshWithoutServerSession(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Refresh(context.Background()))
	assert.Nil(t, f.svc.Session())
}

func TestSeekBypassesDebounce(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartMovie(context.Background(), models.Movie{ID: "m1", MediaFileID: "mf-1"}, 0))
	updatesBefore := f.api.updateCount()

	f.svc.Seek(context.Background(), 0.2)
	assert.Equal(t, updatesBefore+1, f.api.updateCount(), "seek always syncs, even tiny deltas")
	assert.Equal(t, []float64{0.2}, f.local.seeks)
}

func TestSetVolumeClamps(t *testing.T) {
	f := newFixture(t)
	f.svc.SetVolume(context.Background(), 1.7)
	assert.Equal(t, 1.0, f.svc.Volume())
	f.svc.SetVolume(context.Background(), -0.3)
	assert.Equal(t, 0.0, f.svc.Volume())
}

func TestShuffleSurvivesQueueReplacement(t *testing.T) {
	f := newFixture(t)
	require.True(t, f.svc.StartTrack(context.Background(), testAlbum(), "t1", 0))
	f.svc.SetShuffle(true)

	require.True(t, f.svc.StartTrack(context.Background(), testAlbum(), "t2", 0))
	items, _ := f.svc.Queue()
	require.Len(t, items, 4)

	// Shuffle preference carries over to the replacement queue
	require.True(t, f.svc.PlayNext(context.Background()))
	assert.NotEqual(t, "t2", f.svc.Session().ContentID)
}

func TestAutoExpandSetOnStartClearedOnStop(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.svc.AutoExpand())

	require.True(t, f.svc.StartMovie(context.Background(), models.Movie{ID: "m1", MediaFileID: "mf-1"}, 0))
	assert.True(t, f.svc.AutoExpand())

	f.svc.AckAutoExpand()
	assert.False(t, f.svc.AutoExpand())

	require.True(t, f.svc.StartMovie(context.Background(), models.Movie{ID: "m2", MediaFileID: "mf-2"}, 0))
	require.True(t, f.svc.AutoExpand())
	require.True(t, f.svc.Stop(context.Background()))
	assert.False(t, f.svc.AutoExpand())
}
