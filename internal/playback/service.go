package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Dastari/librarian/internal/api/librarian"
	"github.com/Dastari/librarian/internal/logger"
	"github.com/Dastari/librarian/internal/models"
	"github.com/Dastari/librarian/internal/playback/queue"
	"github.com/Dastari/librarian/internal/playback/state"
	"github.com/Dastari/librarian/internal/resolver"
)

// commandTimeout bounds network calls triggered by transport events,
// which arrive without a caller-supplied context.
const commandTimeout = 10 * time.Second

// LocalController is the slice of the local transport the service drives
type LocalController interface {
	Bind(session *models.PlaybackSession)
	Unbind()
	Play()
	Pause()
	Seek(position float64)
	SetMuted(muted bool)
	SetVolume(volume float64)
	Position() float64
	Duration() float64
	Ready() bool
	Bound() bool
}

// CastController is the slice of the cast transport the service drives
type CastController interface {
	CastMedia(ctx context.Context, input librarian.CastMediaInput) error
	Play(ctx context.Context) bool
	Pause(ctx context.Context) bool
	Stop(ctx context.Context) bool
	Seek(ctx context.Context, position float64) bool
	SetVolume(ctx context.Context, volume float64) bool
	SetMuted(ctx context.Context, muted bool) bool
	ActiveSession() *models.CastSession
}

// Options configures a Service
type Options struct {
	SyncInterval     time.Duration
	PositionDebounce float64
}

// Service is the single authority over the active playback session. All
// session mutations flow through it: it persists them to the server,
// mirrors them locally and routes transport commands to whichever
// transport currently holds playback authority.
type Service struct {
	api       librarian.PlaybackAPI
	content   librarian.ContentAPI
	resolver  *resolver.Resolver
	local     LocalController
	cast      CastController
	snapshots *state.Store
	ledger    *ledger
	scheduler *scheduler
	log       *logger.Logger

	debounce float64

	mu        sync.RWMutex
	session   *models.PlaybackSession
	metadata  models.SessionMetadata
	queue     *queue.Queue
	authority models.PlaybackAuthority
	volume    float64
	muted     bool

	// autoExpand asks the UI to expand the player after a fresh start
	autoExpand bool
	// loading is true while a start or refresh round-trip is in flight
	loading bool
}

// NewService creates the playback service. The transports are wired in by
// the caller; the service owns the sync scheduler and the snapshot store.
func NewService(
	api librarian.PlaybackAPI,
	content librarian.ContentAPI,
	res *resolver.Resolver,
	local LocalController,
	cast CastController,
	snapshots *state.Store,
	opts Options,
	log *logger.Logger,
) *Service {
	if opts.SyncInterval <= 0 {
		opts.SyncInterval = 15 * time.Second
	}
	if opts.PositionDebounce <= 0 {
		opts.PositionDebounce = 1.0
	}

	s := &Service{
		api:       api,
		content:   content,
		resolver:  res,
		local:     local,
		cast:      cast,
		snapshots: snapshots,
		ledger:    newLedger(),
		log:       log,
		debounce:  opts.PositionDebounce,
		authority: models.LocalAuthority(),
		volume:    1.0,
	}
	s.scheduler = newScheduler(opts.SyncInterval, s.syncTick, log)
	return s
}

// Session returns a copy of the active session, or nil when idle
func (s *Service) Session() *models.PlaybackSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	session := *s.session
	return &session
}

// Metadata returns the display metadata for the active session
func (s *Service) Metadata() models.SessionMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metadata
}

// Authority returns who currently owns transport commands
func (s *Service) Authority() models.PlaybackAuthority {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authority
}

// Queue returns the queue items and the active index, or (nil, -1)
func (s *Service) Queue() ([]models.QueueItem, int) {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()
	if q == nil {
		return nil, -1
	}
	return q.Items(), q.Index()
}

// Shuffle reports the active queue's shuffle state
func (s *Service) Shuffle() bool {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()
	return q != nil && q.Shuffle()
}

// Repeat returns the active queue's repeat mode
func (s *Service) Repeat() models.RepeatMode {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()
	if q == nil {
		return models.RepeatOff
	}
	return q.Repeat()
}

// Loading reports whether a start or refresh is still in flight
func (s *Service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Service) setLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// Volume returns the current volume in [0, 1]
func (s *Service) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// Muted reports whether output is muted
func (s *Service) Muted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.muted
}

// AutoExpand reports whether a freshly started session is waiting for the
// UI to expand the player
func (s *Service) AutoExpand() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.autoExpand
}

// AckAutoExpand clears the auto-expand request once the UI has acted on it
func (s *Service) AckAutoExpand() {
	s.mu.Lock()
	s.autoExpand = false
	s.mu.Unlock()
}

// Divergent reports whether local state may disagree with the server
func (s *Service) Divergent() bool {
	return s.ledger.isDivergent()
}

// ConfirmedSession returns the last server-confirmed session state, or nil.
// While divergent it shows what the server still believes is playing.
func (s *Service) ConfirmedSession() *models.PlaybackSession {
	return s.ledger.confirmedSession()
}

// ApplySyncInterval adopts a server-provided sync interval in seconds
func (s *Service) ApplySyncInterval(seconds int) {
	if seconds > 0 {
		s.scheduler.SetInterval(time.Duration(seconds) * time.Second)
	}
}

// Start replaces the active session with a new one. Local state is only
// touched after the server accepted the session; on failure the previous
// session, queue and transports stay exactly as they were.
func (s *Service) Start(ctx context.Context, input librarian.StartPlaybackInput, metadata models.SessionMetadata) bool {
	s.mu.RLock()
	input.IsMuted = s.muted
	s.mu.RUnlock()

	s.setLoading(true)
	defer s.setLoading(false)

	result, err := s.api.StartPlayback(ctx, input)
	if err != nil {
		s.log.Error("Failed to start playback", map[string]interface{}{
			"contentType": string(input.ContentType),
			"contentId":   input.ContentID,
			"error":       err.Error(),
		})
		return false
	}
	if !result.Success || result.Session == nil {
		s.log.Warn("Server rejected playback start", map[string]interface{}{
			"contentId": input.ContentID,
			"error":     result.Error,
		})
		return false
	}

	session := *result.Session
	s.ledger.resetBaseline(&session)
	s.resolver.Prime(session.ID, metadata)

	s.mu.Lock()
	s.session = &session
	s.metadata = metadata
	s.authority = models.LocalAuthority()
	s.autoExpand = true
	s.mu.Unlock()

	s.local.Bind(&session)
	s.local.SetVolume(s.Volume())
	s.scheduler.Rearm(session.IsPlaying)
	s.saveSnapshot()

	s.log.Info("Playback session started", map[string]interface{}{
		"sessionId":   session.ID,
		"contentType": string(session.ContentType),
		"contentId":   session.ContentID,
	})
	return true
}

// StartEpisode starts an episode session. Episodes are not queue-based.
func (s *Service) StartEpisode(ctx context.Context, show *models.Show, episode models.Episode, position float64) bool {
	s.clearQueue()
	metadata := models.SessionMetadata{
		Title:       episode.Title,
		Subtitle:    fmt.Sprintf("S%02dE%02d", episode.SeasonNumber, episode.EpisodeNumber),
		ParentTitle: show.Title,
		ArtworkURL:  show.ArtworkURL,
	}
	return s.Start(ctx, librarian.StartPlaybackInput{
		ContentType:     models.ContentTypeEpisode,
		ContentID:       episode.ID,
		ParentID:        show.ID,
		MediaFileID:     episode.MediaFileID,
		CurrentPosition: position,
		Duration:        episode.Duration,
		IsPlaying:       true,
	}, metadata)
}

// StartMovie starts a movie session
func (s *Service) StartMovie(ctx context.Context, movie models.Movie, position float64) bool {
	s.clearQueue()
	metadata := models.SessionMetadata{
		Title:      movie.Title,
		ArtworkURL: movie.ArtworkURL,
	}
	return s.Start(ctx, librarian.StartPlaybackInput{
		ContentType:     models.ContentTypeMovie,
		ContentID:       movie.ID,
		MediaFileID:     movie.MediaFileID,
		CurrentPosition: position,
		Duration:        movie.Duration,
		IsPlaying:       true,
	}, metadata)
}

// StartTrack builds a queue from the album and starts the given track.
// Tracks without a media file are excluded from the queue; starting one
// of them fails without touching the current session.
func (s *Service) StartTrack(ctx context.Context, album *models.Album, trackID string, position float64) bool {
	items := queue.BuildFromAlbum(album)
	return s.startQueued(ctx, models.ContentTypeTrack, album.ID, items, trackID, position)
}

// StartAudiobookChapter builds a queue from the audiobook's chapters and
// starts the given chapter
func (s *Service) StartAudiobookChapter(ctx context.Context, book *models.Audiobook, chapterID string, position float64) bool {
	items := queue.BuildFromAudiobook(book)
	return s.startQueued(ctx, models.ContentTypeAudiobook, book.ID, items, chapterID, position)
}

func (s *Service) startQueued(ctx context.Context, contentType models.ContentType, parentID string, items []models.QueueItem, activeID string, position float64) bool {
	q := queue.New(items, activeID)
	item, ok := q.Current()
	if !ok {
		s.log.Warn("No playable item in queue", map[string]interface{}{
			"parentId": parentID,
			"activeId": activeID,
		})
		return false
	}

	s.mu.RLock()
	if s.queue != nil {
		q.SetShuffle(s.queue.Shuffle())
		q.SetRepeat(s.queue.Repeat())
	}
	s.mu.RUnlock()

	if !s.startQueueItem(ctx, contentType, parentID, q, item, position) {
		return false
	}
	return true
}

// startQueueItem starts one queue item and, on success, installs q as the
// active queue. On failure the previous queue stays installed.
func (s *Service) startQueueItem(ctx context.Context, contentType models.ContentType, parentID string, q *queue.Queue, item models.QueueItem, position float64) bool {
	metadata := models.SessionMetadata{
		Title:       item.Title,
		Subtitle:    item.Artist,
		ParentTitle: item.Artist,
		ArtworkURL:  item.ArtworkURL,
	}
	ok := s.Start(ctx, librarian.StartPlaybackInput{
		ContentType:     contentType,
		ContentID:       item.SourceID,
		ParentID:        parentID,
		MediaFileID:     item.MediaFileID,
		CurrentPosition: position,
		Duration:        item.Duration,
		IsPlaying:       true,
	}, metadata)
	if !ok {
		return false
	}

	s.mu.Lock()
	s.queue = q
	s.mu.Unlock()
	s.saveSnapshot()
	return true
}

// Update applies an optimistic mutation to the active session and persists
// it to the server. The local mirror is updated before the network call
// and is never rolled back; a failed write only marks the session
// divergent for the next refresh.
func (s *Service) Update(ctx context.Context, update models.PlaybackUpdate) bool {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return false
	}
	positionOnly := update.IsPlaying == nil && update.IsMuted == nil && update.Duration == nil && update.CurrentPosition != nil

	if update.CurrentPosition != nil {
		s.session.CurrentPosition = *update.CurrentPosition
	}
	if update.Duration != nil {
		s.session.Duration = *update.Duration
	}
	if update.IsPlaying != nil {
		s.session.IsPlaying = *update.IsPlaying
	}
	if update.IsMuted != nil {
		s.session.IsMuted = *update.IsMuted
	}
	s.mu.Unlock()

	// Sub-threshold position changes succeed locally without a network
	// write. The baseline stays put so drift still accumulates toward
	// the next real sync.
	if positionOnly && !s.ledger.shouldSyncPosition(*update.CurrentPosition, s.debounce) {
		return true
	}

	seq := s.ledger.stage(update)
	result, err := s.api.UpdatePlayback(ctx, update)
	if err != nil {
		s.ledger.fail(seq)
		s.log.Warn("Playback update failed", map[string]interface{}{
			"error": err.Error(),
		})
		return false
	}
	if !result.Success {
		s.ledger.fail(seq)
		s.log.Warn("Server rejected playback update", map[string]interface{}{
			"error": result.Error,
		})
		return false
	}
	s.ledger.confirm(seq, result.Session)
	return true
}

// Stop ends the active session. All local state is cleared only after the
// server confirmed the stop; on failure everything stays intact so the
// caller can retry.
func (s *Service) Stop(ctx context.Context) bool {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()
	if session == nil {
		return true
	}

	result, err := s.api.StopPlayback(ctx)
	if err != nil {
		s.log.Error("Failed to stop playback", map[string]interface{}{
			"sessionId": session.ID,
			"error":     err.Error(),
		})
		return false
	}
	if !result.Success {
		s.log.Warn("Server rejected playback stop", map[string]interface{}{
			"sessionId": session.ID,
			"error":     result.Error,
		})
		return false
	}

	s.scheduler.Rearm(false)
	s.local.Unbind()
	s.resolver.Invalidate(session.ID)
	s.ledger.resetBaseline(nil)

	s.mu.Lock()
	s.session = nil
	s.metadata = models.SessionMetadata{}
	s.queue = nil
	s.authority = models.LocalAuthority()
	s.autoExpand = false
	s.mu.Unlock()

	if err := s.snapshots.Clear(); err != nil {
		s.log.Warn("Failed to clear playback snapshot", map[string]interface{}{
			"error": err.Error(),
		})
	}

	s.log.Info("Playback session stopped", map[string]interface{}{
		"sessionId": session.ID,
	})
	return true
}

// PlayNext advances the queue. At the end of the queue it wraps only when
// repeat-all is on; otherwise it reports false and the session is
// untouched.
func (s *Service) PlayNext(ctx context.Context) bool {
	return s.advance(ctx, func(q *queue.Queue) (models.QueueItem, bool) { return q.Next() })
}

// PlayPrevious steps back in the queue, staying on the first item unless
// repeat-all is on
func (s *Service) PlayPrevious(ctx context.Context) bool {
	return s.advance(ctx, func(q *queue.Queue) (models.QueueItem, bool) { return q.Previous() })
}

// PlayQueueItem jumps to an arbitrary queue index
func (s *Service) PlayQueueItem(ctx context.Context, index int) bool {
	return s.advance(ctx, func(q *queue.Queue) (models.QueueItem, bool) { return q.Jump(index) })
}

func (s *Service) advance(ctx context.Context, step func(*queue.Queue) (models.QueueItem, bool)) bool {
	s.mu.RLock()
	q := s.queue
	session := s.session
	s.mu.RUnlock()
	if q == nil || session == nil {
		return false
	}

	item, ok := step(q)
	if !ok {
		return false
	}
	return s.startQueueItem(ctx, session.ContentType, session.ParentID, q, item, 0)
}

// SetShuffle toggles shuffle on the active queue
func (s *Service) SetShuffle(on bool) {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()
	if q == nil {
		return
	}
	q.SetShuffle(on)
	s.saveSnapshot()
}

// SetRepeat sets the repeat mode on the active queue
func (s *Service) SetRepeat(mode models.RepeatMode) {
	s.mu.RLock()
	q := s.queue
	s.mu.RUnlock()
	if q == nil {
		return
	}
	q.SetRepeat(mode)
	s.saveSnapshot()
}

// Play resumes playback on whichever transport holds authority
func (s *Service) Play(ctx context.Context) {
	if s.castAuthority() {
		if s.cast.Play(ctx) {
			s.setPlaying(ctx, true)
		}
		return
	}
	s.local.Play()
	s.setPlaying(ctx, true)
}

// Pause pauses playback on whichever transport holds authority
func (s *Service) Pause(ctx context.Context) {
	if s.castAuthority() {
		if s.cast.Pause(ctx) {
			s.setPlaying(ctx, false)
		}
		return
	}
	s.local.Pause()
	s.setPlaying(ctx, false)
}

// TogglePlay flips between play and pause
func (s *Service) TogglePlay(ctx context.Context) {
	s.mu.RLock()
	playing := s.session != nil && s.session.IsPlaying
	s.mu.RUnlock()
	if playing {
		s.Pause(ctx)
	} else {
		s.Play(ctx)
	}
}

// Seek moves the playhead on the authoritative transport and persists the
// new position immediately, bypassing the debounce
func (s *Service) Seek(ctx context.Context, position float64) {
	if position < 0 {
		position = 0
	}
	if s.castAuthority() {
		if !s.cast.Seek(ctx, position) {
			return
		}
	} else {
		s.local.Seek(position)
	}
	s.ledger.markSynced(-s.debounce * 2) // force the write through
	s.Update(ctx, models.PlaybackUpdate{CurrentPosition: &position})
}

// SetVolume applies volume to the authoritative transport. Volume is a
// client-side concern and is persisted only in the local snapshot.
func (s *Service) SetVolume(ctx context.Context, volume float64) {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()

	if s.castAuthority() {
		s.cast.SetVolume(ctx, volume)
	} else {
		s.local.SetVolume(volume)
	}
	s.saveSnapshot()
}

// SetMuted applies mute to the authoritative transport and persists it on
// the session
func (s *Service) SetMuted(ctx context.Context, muted bool) {
	s.mu.Lock()
	s.muted = muted
	hasSession := s.session != nil
	s.mu.Unlock()

	if s.castAuthority() {
		s.cast.SetMuted(ctx, muted)
	} else {
		s.local.SetMuted(muted)
	}
	if hasSession {
		s.Update(ctx, models.PlaybackUpdate{IsMuted: &muted})
	}
	s.saveSnapshot()
}

// StartCasting hands playback authority to a cast device. The local
// transport is paused before the handoff so two transports never play at
// once; on a failed handoff authority stays local.
func (s *Service) StartCasting(ctx context.Context, deviceID string) error {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()
	if session == nil {
		return fmt.Errorf("no active playback session")
	}

	s.local.Pause()
	s.scheduler.Rearm(false)

	err := s.cast.CastMedia(ctx, librarian.CastMediaInput{
		DeviceID:    deviceID,
		MediaFileID: session.MediaFileID,
		ContentID:   session.ContentID,
		ContentType: session.ContentType,
		Position:    s.local.Position(),
	})
	if err != nil {
		s.log.Error("Cast handoff failed", map[string]interface{}{
			"deviceId": deviceID,
			"error":    err.Error(),
		})
		return err
	}

	s.mu.Lock()
	s.authority = models.CastAuthority(deviceID)
	s.mu.Unlock()

	s.log.Info("Playback authority moved to cast device", map[string]interface{}{
		"deviceId":  deviceID,
		"sessionId": session.ID,
	})
	return nil
}

// StopCasting returns playback authority to the local transport, resuming
// paused at the cast device's last known position
func (s *Service) StopCasting(ctx context.Context) {
	if !s.castAuthority() {
		return
	}

	position := 0.0
	if cs := s.cast.ActiveSession(); cs != nil {
		position = cs.Position
	}
	s.cast.Stop(ctx)

	s.mu.Lock()
	s.authority = models.LocalAuthority()
	session := s.session
	if session != nil {
		session.CurrentPosition = position
		session.IsPlaying = false
	}
	s.mu.Unlock()

	if session != nil {
		bound := *session
		s.local.Bind(&bound)
		paused := false
		s.Update(ctx, models.PlaybackUpdate{CurrentPosition: &position, IsPlaying: &paused})
	}
	s.log.Info("Playback authority returned to local transport", nil)
}

// Refresh re-adopts the server's session as the source of truth. For
// queue-based audio content the queue and metadata are rebuilt from the
// parent; with no server session the last snapshot restores the queue in
// a paused state.
func (s *Service) Refresh(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	session, err := s.api.GetPlaybackSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch playback session: %w", err)
	}

	if session == nil {
		s.restoreFromSnapshot()
		return nil
	}

	s.ledger.resetBaseline(session)

	metadata, err := s.resolver.Resolve(ctx, session)
	if err != nil {
		s.log.Warn("Failed to resolve session metadata", map[string]interface{}{
			"sessionId": session.ID,
			"error":     err.Error(),
		})
	}

	var q *queue.Queue
	if session.ContentType.IsAudio() && session.ParentID != "" {
		q, err = s.rebuildQueue(ctx, session)
		if err != nil {
			s.log.Warn("Failed to rebuild queue", map[string]interface{}{
				"parentId": session.ParentID,
				"error":    err.Error(),
			})
		}
	}

	if snapshot, snapErr := s.snapshots.Load(); snapErr == nil && snapshot != nil && q != nil && snapshot.ParentID == session.ParentID {
		q.SetShuffle(snapshot.Shuffle)
		q.SetRepeat(snapshot.Repeat)
	}

	adopted := *session
	s.mu.Lock()
	s.session = &adopted
	s.metadata = metadata
	s.queue = q
	castBound := s.authority.Mode == models.AuthorityCast
	s.mu.Unlock()

	if !castBound {
		s.local.Bind(&adopted)
		s.scheduler.Rearm(adopted.IsPlaying)
	}

	s.log.Info("Playback session refreshed", map[string]interface{}{
		"sessionId":   adopted.ID,
		"contentType": string(adopted.ContentType),
		"isPlaying":   adopted.IsPlaying,
	})
	return nil
}

func (s *Service) rebuildQueue(ctx context.Context, session *models.PlaybackSession) (*queue.Queue, error) {
	var items []models.QueueItem
	switch session.ContentType {
	case models.ContentTypeTrack:
		album, err := s.content.GetAlbumWithTracks(ctx, session.ParentID)
		if err != nil {
			return nil, err
		}
		items = queue.BuildFromAlbum(album)
	case models.ContentTypeAudiobook:
		book, err := s.content.GetAudiobookWithChapters(ctx, session.ParentID)
		if err != nil {
			return nil, err
		}
		items = queue.BuildFromAudiobook(book)
	default:
		return nil, nil
	}
	return queue.New(items, session.ContentID), nil
}

// restoreFromSnapshot restores queue preferences from disk when the
// server reports no active session. Nothing starts playing.
func (s *Service) restoreFromSnapshot() {
	snapshot, err := s.snapshots.Load()
	if err != nil || snapshot == nil {
		return
	}

	s.mu.Lock()
	s.volume = snapshot.Volume
	s.muted = snapshot.IsMuted
	if len(snapshot.QueueItems) > 0 && snapshot.QueueIndex >= 0 && snapshot.QueueIndex < len(snapshot.QueueItems) {
		q := queue.New(snapshot.QueueItems, snapshot.QueueItems[snapshot.QueueIndex].SourceID)
		q.SetShuffle(snapshot.Shuffle)
		q.SetRepeat(snapshot.Repeat)
		s.queue = q
	}
	s.mu.Unlock()

	s.log.Debug("Restored playback preferences from snapshot", map[string]interface{}{
		"queueLen": len(snapshot.QueueItems),
	})
}

// Shutdown stops the scheduler and persists a final snapshot. The server
// session is left running so another client can pick it up.
func (s *Service) Shutdown() {
	s.scheduler.Stop()
	s.saveSnapshot()
	s.local.Unbind()
}

// PlayingChanged implements the local transport sink. The element's
// play/pause events are folded into the session; events that match the
// optimistic state only rearm the scheduler.
func (s *Service) PlayingChanged(playing bool) {
	s.mu.RLock()
	session := s.session
	matches := session != nil && session.IsPlaying == playing
	s.mu.RUnlock()
	if session == nil {
		return
	}

	s.scheduler.Rearm(playing && !s.castAuthority())
	if matches {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	s.Update(ctx, models.PlaybackUpdate{IsPlaying: &playing})
}

// DurationLoaded implements the local transport sink
func (s *Service) DurationLoaded(duration float64) {
	s.mu.RLock()
	session := s.session
	s.mu.RUnlock()
	if session == nil || duration <= 0 || session.Duration == duration {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	s.Update(ctx, models.PlaybackUpdate{Duration: &duration})
}

// Ended implements the local transport sink. Queue-based content advances
// to the next item; everything else stops the session.
func (s *Service) Ended() {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if s.PlayNext(ctx) {
		return
	}
	s.Stop(ctx)
}

func (s *Service) castAuthority() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authority.Mode == models.AuthorityCast
}

func (s *Service) setPlaying(ctx context.Context, playing bool) {
	s.Update(ctx, models.PlaybackUpdate{IsPlaying: &playing})
	s.scheduler.Rearm(playing && !s.castAuthority())
}

// syncTick is the scheduler callback. Position is read from the local
// transport; while casting the receiver reports its own progress and the
// tick is a no-op.
func (s *Service) syncTick(ctx context.Context) {
	s.mu.RLock()
	session := s.session
	casting := s.authority.Mode == models.AuthorityCast
	s.mu.RUnlock()

	if session == nil || !session.IsPlaying || casting {
		return
	}

	position := s.local.Position()
	if !s.ledger.shouldSyncPosition(position, s.debounce) {
		return
	}

	tickCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	update := models.PlaybackUpdate{CurrentPosition: &position}
	if d := s.local.Duration(); d > 0 && d != session.Duration {
		update.Duration = &d
	}
	s.Update(tickCtx, update)
	s.saveSnapshot()
}

func (s *Service) saveSnapshot() {
	s.mu.RLock()
	session := s.session
	q := s.queue
	volume := s.volume
	muted := s.muted
	s.mu.RUnlock()

	snapshot := state.Snapshot{
		Version: state.CurrentVersion,
		SavedAt: time.Now().Unix(),
		Volume:  volume,
		IsMuted: muted,
	}
	if session != nil {
		snapshot.ContentType = session.ContentType
		snapshot.ParentID = session.ParentID
		snapshot.Position = session.CurrentPosition
	}
	if q != nil {
		snapshot.QueueItems = q.Items()
		snapshot.QueueIndex = q.Index()
		snapshot.Shuffle = q.Shuffle()
		snapshot.Repeat = q.Repeat()
	}

	if err := s.snapshots.Save(snapshot); err != nil {
		s.log.Warn("Failed to save playback snapshot", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Service) clearQueue() {
	s.mu.Lock()
	s.queue = nil
	s.mu.Unlock()
}
