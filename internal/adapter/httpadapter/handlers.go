package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/couchcryptid/congress-dashboard/internal/dashboard"
	"github.com/couchcryptid/congress-dashboard/internal/domain"
	"github.com/couchcryptid/congress-dashboard/internal/render"
)

const maxBodyBytes = 1 << 16

// clickRequest names either a feature id or a map coordinate.
type clickRequest struct {
	ID  string   `json:"id"`
	Lon *float64 `json:"lon"`
	Lat *float64 `json:"lat"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, map[string]string{"id": s.svc.NewSession()})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.CloseSession(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.writeFrame(w)(s.svc.View(r.PathValue("id")))
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid click body: " + err.Error()})
		return
	}

	id := r.PathValue("id")
	switch {
	case req.ID != "":
		s.writeFrame(w)(s.svc.Click(r.Context(), id, req.ID))
	case req.Lon != nil && req.Lat != nil:
		s.writeFrame(w)(s.svc.ClickAt(r.Context(), id, domain.GeoPoint{Lon: *req.Lon, Lat: *req.Lat}))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "click needs an id or lon and lat"})
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.writeFrame(w)(s.svc.Reset(r.Context(), r.PathValue("id")))
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.writeFrame(w)(s.svc.BackToState(r.Context(), r.PathValue("id")))
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profile(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleStates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.States())
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	districts, err := s.svc.Districts(r.PathValue("abbr"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, districts)
}

func (s *Server) handleRadar(w http.ResponseWriter, r *http.Request) {
	ds, err := s.svc.Radar(r.Context(), r.PathValue("bioguide"), domain.ParseMode(r.URL.Query().Get("mode")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.svc.Topics(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (s *Server) handleTopicCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.svc.TopicCounts(r.Context(), r.PathValue("topic"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := http.StatusOK
	if counts.Pending {
		status = http.StatusAccepted
	}
	writeJSON(w, status, counts)
}

func (s *Server) handleRadarChart(w http.ResponseWriter, r *http.Request) {
	ds, err := s.svc.Radar(r.Context(), r.PathValue("bioguide"), domain.ParseMode(r.URL.Query().Get("mode")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeChart(w, func(buf io.Writer) error { return render.RadarChart(buf, ds) })
}

func (s *Server) handleTopicChart(w http.ResponseWriter, r *http.Request) {
	counts, err := s.svc.TopicCounts(r.Context(), r.PathValue("topic"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if len(counts.Counts) == 0 {
		status := http.StatusNotFound
		if counts.Pending {
			status = http.StatusAccepted
		}
		writeJSON(w, status, counts)
		return
	}
	s.writeChart(w, func(buf io.Writer) error { return render.TopicBarChart(buf, counts.Topic, counts.Counts) })
}

func (s *Server) handleSankeyChart(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.Sankey(r.Context(), r.PathValue("state"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeChart(w, func(buf io.Writer) error { return render.SankeyChart(buf, g) })
}

func (s *Server) writeFrame(w http.ResponseWriter) func(render.MapFrame, error) {
	return func(frame render.MapFrame, err error) {
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, frame)
	}
}

// writeChart renders into a buffer first so a render failure can still
// produce an error status.
func (s *Server) writeChart(w http.ResponseWriter, draw func(io.Writer) error) {
	var buf bytes.Buffer
	if err := draw(&buf); err != nil {
		s.logger.Error("chart render failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "chart render failed"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w) //nolint:errcheck // best-effort response
}

// writeError maps lookup failures to 404. Everything else comes from the
// upstream reference data and maps to 502.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, dashboard.ErrSessionNotFound) ||
		errors.Is(err, dashboard.ErrMemberNotFound) ||
		errors.Is(err, domain.ErrLookupMiss) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	s.logger.Warn("upstream reference data unavailable", "error", err)
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
}
