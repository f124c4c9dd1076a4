package httpadapter

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/met-update-db/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

type airportRequest struct {
	ICAO string `validate:"required,len=4,alphanum,uppercase"`
}

type windResponse struct {
	Direction     float64                `json:"direction"`
	Speed         float64                `json:"speed"`
	Source        domain.WindInputSource `json:"source"`
	ReferenceTime time.Time              `json:"reference_time"`
}

type lastTafEndTimeResponse struct {
	EndTime time.Time `json:"end_time"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleWind(w http.ResponseWriter, r *http.Request) {
	airport, err := s.airport(r)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ref := s.clock.Now().UTC()
	if at := r.URL.Query().Get("at"); at != "" {
		ref, err = parseReferenceTime(at)
		if err != nil {
			sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid at: %v", err)})
			return
		}
	}

	wind, source, err := s.resolver.Resolve(r.Context(), airport, ref)
	if err != nil {
		s.writeResolveError(w, r, airport, err)
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, windResponse{
		Direction:     wind.Direction,
		Speed:         wind.Speed,
		Source:        source,
		ReferenceTime: ref,
	})
}

func (s *Server) handleLastTafEndTime(w http.ResponseWriter, r *http.Request) {
	airport, err := s.airport(r)
	if err != nil {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	end, err := s.resolver.LastTafEndTime(r.Context(), airport)
	if err != nil {
		s.writeResolveError(w, r, airport, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, lastTafEndTimeResponse{EndTime: end})
}

// parseReferenceTime parses the at query value. An offset sent with an
// unescaped "+" arrives as a space and is restored before parsing.
func parseReferenceTime(at string) (time.Time, error) {
	ref, err := domain.ParseTimestamp(at)
	if err == nil {
		return ref, nil
	}
	if restored := strings.ReplaceAll(at, " ", "+"); restored != at {
		if ref, retryErr := domain.ParseTimestamp(restored); retryErr == nil {
			return ref, nil
		}
	}
	return time.Time{}, err
}

// airport reads and validates the {icao} path value. Lower case is accepted.
func (s *Server) airport(r *http.Request) (string, error) {
	req := airportRequest{ICAO: strings.ToUpper(strings.TrimSpace(r.PathValue("icao")))}
	if err := s.validate.Struct(req); err != nil {
		return "", fmt.Errorf("invalid airport code %q", r.PathValue("icao"))
	}
	return req.ICAO, nil
}

func (s *Server) writeResolveError(w http.ResponseWriter, r *http.Request, airport string, err error) {
	if errors.Is(err, domain.ErrMETNotAvailable) {
		sharedobs.WriteJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrMETNotAvailable.Error()})
		return
	}
	s.logger.Error("wind query failed", "error", err, "airport", airport, "path", r.URL.Path)
	sharedobs.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
