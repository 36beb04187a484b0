package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"token-risk-scanner/internal/chains"
	"token-risk-scanner/internal/domain"
	"token-risk-scanner/internal/observability"
	"token-risk-scanner/internal/scan"
	"token-risk-scanner/internal/solana"
)

// Message types pushed over /ws.
const (
	messageScan  = "scan"
	messageToken = "token"
)

// Message is the envelope pushed to WebSocket clients.
type Message struct {
	Type   string      `json:"type"`
	SentAt time.Time   `json:"sentAt"`
	Tokens []TokenView `json:"tokens,omitempty"`
}

// TokenView is one row of /tokens and /ws: the enriched token plus flag
// labels and display links.
type TokenView struct {
	*domain.EnrichedToken
	FlagDetails   []domain.FlagDetail `json:"flagDetails"`
	BubbleMapsURL string              `json:"bubbleMapsUrl,omitempty"`
}

func newTokenView(t *domain.EnrichedToken) TokenView {
	return TokenView{
		EnrichedToken: t,
		FlagDetails:   domain.Details(t.Risk.Flags),
		BubbleMapsURL: chains.BubbleMapsURL(t.Listing.Network, t.Listing.BaseToken.Address),
	}
}

// StatusResponse is the JSON response for /status.
type StatusResponse struct {
	Status      string    `json:"status"`
	Uptime      string    `json:"uptime"`
	ScanState   string    `json:"scan_state"`
	ScanRunning bool      `json:"scan_running"`
	LastScan    time.Time `json:"last_scan,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	Scans       int       `json:"scans"`
	Failures    int       `json:"failures"`
	Tokens      int       `json:"tokens"`
	WSClients   int       `json:"ws_clients"`
	Networks    []string  `json:"networks"`
	Keys        any       `json:"keys,omitempty"`
}

// RescanRequest is the body of POST /rescan.
type RescanRequest struct {
	Network string `json:"network"`
	Address string `json:"address"`
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /tokens", s.handleTokens)
	mux.HandleFunc("POST /rescan", s.handleRescan)
	mux.HandleFunc("GET /ws", s.handleWS)

	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := StatusResponse{
		Status:      "running",
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		ScanState:   s.scanner.State().String(),
		ScanRunning: s.running,
		LastScan:    s.lastRun,
		LastError:   s.lastErr,
		Scans:       s.runs,
		Failures:    s.failures,
		Tokens:      len(s.latest),
		Networks:    s.scanner.Networks(),
		Keys:        s.keyStatus,
	}
	s.mu.RUnlock()
	resp.WSClients = s.hub.ClientCount()

	writeJSON(w, http.StatusOK, resp)
}

// handleTokens serves the latest snapshot ranked by score, optionally
// filtered by ?network= and ?verdict=.
func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	network := r.URL.Query().Get("network")
	verdict := strings.ToUpper(r.URL.Query().Get("verdict"))
	if verdict != "" && !domain.Verdict(verdict).IsValid() {
		writeError(w, http.StatusBadRequest, "verdict must be OK, CAUTION or RISKY")
		return
	}

	var views []TokenView
	for _, t := range rankTokens(s.Latest()) {
		if network != "" && t.Listing.Network != network {
			continue
		}
		if verdict != "" && t.Risk.Verdict != domain.Verdict(verdict) {
			continue
		}
		views = append(views, newTokenView(t))
	}
	if views == nil {
		views = []TokenView{}
	}

	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	var req RescanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Network == "" || req.Address == "" {
		writeError(w, http.StatusBadRequest, "network and address are required")
		return
	}
	if chains.IsSolanaFamily(req.Network) {
		if err := solana.ValidateAddress(req.Address); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	token, err := s.scanner.Rescan(r.Context(), req.Network, req.Address)
	if err != nil {
		if errors.Is(err, scan.ErrListingNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error().Err(err).Str("network", req.Network).Str("address", req.Address).Msg("rescan failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.replace(token)
	if msg, err := encodeMessage(messageToken, []*domain.EnrichedToken{token}); err == nil {
		s.hub.Broadcast(r.Context(), msg)
	}

	writeJSON(w, http.StatusOK, token)
}

// handleWS upgrades to WebSocket and sends the current snapshot first.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	var hello []byte
	if latest := s.Latest(); latest != nil {
		if msg, err := encodeMessage(messageScan, rankTokens(latest)); err == nil {
			hello = msg
		}
	}
	s.hub.ServeWS(w, r, hello)
}

// rankTokens returns tokens ordered by descending score. Ties keep scan
// order.
func rankTokens(tokens []*domain.EnrichedToken) []*domain.EnrichedToken {
	out := append([]*domain.EnrichedToken(nil), tokens...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Risk.Score > out[j].Risk.Score
	})
	return out
}

func encodeMessage(kind string, tokens []*domain.EnrichedToken) ([]byte, error) {
	views := make([]TokenView, len(tokens))
	for i, t := range tokens {
		views[i] = newTokenView(t)
	}
	return json.Marshal(Message{Type: kind, SentAt: time.Now().UTC(), Tokens: views})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
