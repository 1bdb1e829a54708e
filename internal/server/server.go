package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Dastari/librarian/internal/logger"
	"github.com/Dastari/librarian/internal/models"
	"github.com/Dastari/librarian/internal/playback"
)

// DeviceRegistry is the slice of the device registry the server exposes
type DeviceRegistry interface {
	List() ([]models.CastDevice, error)
	SetFavorite(id string, favorite bool) error
	Delete(id string) error
}

// Server exposes playback status and device management over HTTP
type Server struct {
	server   *http.Server
	playback *playback.Service
	devices  DeviceRegistry
	logger   *logger.Logger
}

// New creates the status HTTP server
func New(addr string, svc *playback.Service, devices DeviceRegistry, log *logger.Logger) *Server {
	s := &Server{
		server: &http.Server{
			Addr: addr,
		},
		playback: svc,
		devices:  devices,
		logger:   log,
	}

	handler := http.NewServeMux()
	handler.HandleFunc("/healthz", s.handleHealthCheck)
	handler.HandleFunc("/api/nowplaying", s.handleNowPlaying)
	handler.HandleFunc("/api/queue", s.handleQueue)
	handler.HandleFunc("/api/devices", s.handleDevices)
	handler.HandleFunc("/api/devices/", s.handleDeviceByID)

	s.server.Handler = logger.HTTPMiddleware(handler)
	s.server.ReadTimeout = 10 * time.Second
	s.server.WriteTimeout = 30 * time.Second
	s.server.IdleTimeout = 120 * time.Second

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting status server", map[string]interface{}{
		"addr": s.server.Addr,
	})

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down status server", nil)
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

// nowPlayingResponse is the JSON shape of GET /api/nowplaying
type nowPlayingResponse struct {
	Session   *models.PlaybackSession  `json:"session"`
	Metadata  *models.SessionMetadata  `json:"metadata,omitempty"`
	Authority models.PlaybackAuthority `json:"authority"`
	Volume    float64                  `json:"volume"`
	Muted     bool                     `json:"muted"`
	Divergent bool                     `json:"divergent"`
	// Confirmed is the last server-confirmed state, present only while
	// local state has diverged from it
	Confirmed  *models.PlaybackSession `json:"confirmed,omitempty"`
	AutoExpand bool                    `json:"autoExpand"`
	Loading    bool                    `json:"loading"`
}

func (s *Server) handleNowPlaying(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := nowPlayingResponse{
		Session:    s.playback.Session(),
		Authority:  s.playback.Authority(),
		Volume:     s.playback.Volume(),
		Muted:      s.playback.Muted(),
		Divergent:  s.playback.Divergent(),
		AutoExpand: s.playback.AutoExpand(),
		Loading:    s.playback.Loading(),
	}
	if resp.Divergent {
		resp.Confirmed = s.playback.ConfirmedSession()
	}
	if resp.Session != nil {
		metadata := s.playback.Metadata()
		resp.Metadata = &metadata
	}
	s.writeJSON(w, resp)
}

type queueResponse struct {
	Items   []models.QueueItem `json:"items"`
	Index   int                `json:"index"`
	Shuffle bool               `json:"shuffle"`
	Repeat  models.RepeatMode  `json:"repeat"`
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	items, index := s.playback.Queue()
	if items == nil {
		items = []models.QueueItem{}
	}
	s.writeJSON(w, queueResponse{
		Items:   items,
		Index:   index,
		Shuffle: s.playback.Shuffle(),
		Repeat:  s.playback.Repeat(),
	})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	devices, err := s.devices.List()
	if err != nil {
		s.logger.Error("Failed to list devices", map[string]interface{}{
			"error": err.Error(),
		})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, devices)
}

// handleDeviceByID routes PATCH /api/devices/{id} (favorite toggle) and
// DELETE /api/devices/{id}
func (s *Server) handleDeviceByID(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Path[len("/api/devices/"):]
	if id == "" {
		http.Error(w, "Device ID required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPatch:
		favorite, err := strconv.ParseBool(r.URL.Query().Get("favorite"))
		if err != nil {
			http.Error(w, "favorite query parameter required", http.StatusBadRequest)
			return
		}
		if err := s.devices.SetFavorite(id, favorite); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if err := s.devices.Delete(id); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
