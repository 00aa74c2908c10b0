package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"snowglobe/internal/greeting"
	"snowglobe/internal/input"
)

const maxMotionBody = 1 << 20

type shakeResponse struct {
	Burst  uint64 `json:"burst"`
	Repeat int    `json:"repeat"`
	Source string `json:"source"`
}

// motionSample is one accelerometer reading. A zero Time means "now".
type motionSample struct {
	input.Acceleration
	Time time.Time `json:"time,omitempty"`
}

// motionRequest carries accelerometer samples. Reset drops the detector's
// previous sample before these are fed in, e.g. after the device stream
// restarted.
type motionRequest struct {
	Reset   bool           `json:"reset,omitempty"`
	Samples []motionSample `json:"samples"`
}

type motionResponse struct {
	Samples int `json:"samples"`
	Shakes  int `json:"shakes"`
}

type greetingResponse struct {
	Name    string   `json:"name"`
	Locale  string   `json:"locale"`
	Hint    string   `json:"hint"`
	Text    string   `json:"text"`
	Key     string   `json:"key"`
	Locales []string `json:"locales"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleShake(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	source, ok := input.ParseSource(q.Get("source"))
	if !ok {
		http.Error(w, "invalid source parameter", http.StatusBadRequest)
		return
	}
	repeat := 0
	if raw := q.Get("repeat"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid repeat parameter", http.StatusBadRequest)
			return
		}
		repeat = n
	}
	burst := s.card.Trigger(source, repeat)
	writeJSONStatus(w, http.StatusAccepted, shakeResponse{
		Burst:  burst.ID,
		Repeat: burst.Repeat,
		Source: string(source),
	})
}

func (s *Server) handleMotion(w http.ResponseWriter, r *http.Request) {
	var req motionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMotionBody))
	if err := dec.Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid motion payload: %v", err), http.StatusBadRequest)
		return
	}
	if req.Reset {
		s.card.ResetMotion()
	}
	resp := motionResponse{Samples: len(req.Samples)}
	for _, sample := range req.Samples {
		at := sample.Time
		if at.IsZero() {
			at = s.now()
		}
		if s.card.Motion(sample.Acceleration, at) {
			resp.Shakes++
		}
	}
	writeJSON(w, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.card.State())
}

func (s *Server) handleFlakes(w http.ResponseWriter, r *http.Request) {
	flakes := s.card.Flakes()
	switch format := r.URL.Query().Get("format"); format {
	case "", "msgpack":
		data, err := msgpack.Marshal(flakes)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/msgpack")
		_, _ = w.Write(data)
	case "json":
		writeJSON(w, flakes)
	default:
		http.Error(w, "invalid format parameter", http.StatusBadRequest)
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.card.Preview(&buf); err != nil {
		s.logger.Errorw("preview failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleGreeting(w http.ResponseWriter, r *http.Request) {
	p := greeting.ParseParams(r.URL.Query()).Normalized()
	s.card.Relabel(p)
	writeJSON(w, greetingResponse{
		Name:    p.Name,
		Locale:  p.Locale,
		Hint:    p.Hint(),
		Text:    p.Text(),
		Key:     greeting.EncodeKey(p),
		Locales: greeting.Locales(),
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}
