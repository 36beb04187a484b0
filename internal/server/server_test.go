package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-risk-scanner/internal/domain"
	"token-risk-scanner/internal/scan"
)

type fakeScanner struct {
	mu      sync.Mutex
	tokens  []*domain.EnrichedToken
	err     error
	runs    int
	rescans map[string]*domain.EnrichedToken
}

func (f *fakeScanner) Run(context.Context) ([]*domain.EnrichedToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	return f.tokens, f.err
}

func (f *fakeScanner) Rescan(_ context.Context, network, address string) (*domain.EnrichedToken, error) {
	if t, ok := f.rescans[domain.TokenID(network, address)]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("rescan: %w", scan.ErrListingNotFound)
}

func (f *fakeScanner) State() scan.State { return scan.StateDone }

func (f *fakeScanner) Networks() []string { return []string{"bsc", "solana"} }

func token(network, address string, score int, verdict domain.Verdict) *domain.EnrichedToken {
	return &domain.EnrichedToken{
		ID:      domain.TokenID(network, address),
		Listing: domain.Listing{Network: network, BaseToken: domain.Token{Address: address}},
		Risk:    domain.ScoreResult{Score: score, Verdict: verdict, Flags: []domain.Flag{}},
	}
}

func newTestServer(t *testing.T, sc *fakeScanner) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Options{Scanner: sc, KeyStatus: map[string]bool{"goplusConfigured": true}, Logger: zerolog.Nop()})

	ctx, cancel := context.WithCancel(context.Background())
	go s.hub.Run(ctx)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return s, ts
}

func TestRunScan_StoresSnapshot(t *testing.T) {
	sc := &fakeScanner{tokens: []*domain.EnrichedToken{token("bsc", "0xa", 10, domain.VerdictOK)}}
	s, _ := newTestServer(t, sc)

	s.RunScan(context.Background())
	require.Len(t, s.Latest(), 1)

	sc.err = errors.New("scan panicked: boom")
	sc.tokens = nil
	s.RunScan(context.Background())
	assert.Len(t, s.Latest(), 1, "failed scan keeps previous snapshot")

	s.mu.RLock()
	defer s.mu.RUnlock()
	assert.Equal(t, 2, s.runs)
	assert.Equal(t, 1, s.failures)
	assert.Contains(t, s.lastErr, "boom")
}

func TestHandleTokens_RankedAndFiltered(t *testing.T) {
	sc := &fakeScanner{tokens: []*domain.EnrichedToken{
		token("bsc", "0xa", 10, domain.VerdictOK),
		token("solana", "Mint1", 90, domain.VerdictRisky),
		token("bsc", "0xb", 45, domain.VerdictCaution),
	}}
	s, ts := newTestServer(t, sc)
	s.RunScan(context.Background())

	var all []map[string]any
	getJSON(t, ts.URL+"/tokens", http.StatusOK, &all)
	require.Len(t, all, 3)
	assert.Equal(t, "solana-Mint1", all[0]["id"])
	assert.Equal(t, "bsc-0xb", all[1]["id"])
	assert.Equal(t, "bsc-0xa", all[2]["id"])
	assert.Equal(t, "https://app.bubblemaps.io/solana/token/Mint1", all[0]["bubbleMapsUrl"])

	var bsc []map[string]any
	getJSON(t, ts.URL+"/tokens?network=bsc", http.StatusOK, &bsc)
	assert.Len(t, bsc, 2)

	var risky []map[string]any
	getJSON(t, ts.URL+"/tokens?verdict=risky", http.StatusOK, &risky)
	require.Len(t, risky, 1)
	assert.Equal(t, "solana-Mint1", risky[0]["id"])

	var none []map[string]any
	getJSON(t, ts.URL+"/tokens?network=base", http.StatusOK, &none)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	resp, err := http.Get(ts.URL + "/tokens?verdict=meh")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleStatus(t *testing.T) {
	sc := &fakeScanner{tokens: []*domain.EnrichedToken{token("bsc", "0xa", 10, domain.VerdictOK)}}
	s, ts := newTestServer(t, sc)
	s.RunScan(context.Background())

	var status StatusResponse
	getJSON(t, ts.URL+"/status", http.StatusOK, &status)
	assert.Equal(t, "running", status.Status)
	assert.Equal(t, "done", status.ScanState)
	assert.Equal(t, 1, status.Scans)
	assert.Equal(t, 1, status.Tokens)
	assert.Equal(t, []string{"bsc", "solana"}, status.Networks)
	assert.NotNil(t, status.Keys)
}

func TestHealthAndMetrics(t *testing.T) {
	_, ts := newTestServer(t, &fakeScanner{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleRescan(t *testing.T) {
	old := token("bsc", "0xa", 10, domain.VerdictOK)
	fresh := token("bsc", "0xa", 70, domain.VerdictRisky)
	sc := &fakeScanner{
		tokens:  []*domain.EnrichedToken{old},
		rescans: map[string]*domain.EnrichedToken{"bsc-0xa": fresh},
	}
	s, ts := newTestServer(t, sc)
	s.RunScan(context.Background())

	resp := postJSON(t, ts.URL+"/rescan", `{"network":"bsc","address":"0xa"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, s.Latest(), 1)
	assert.Same(t, fresh, s.Latest()[0])

	resp = postJSON(t, ts.URL+"/rescan", `{"network":"base","address":"0xa"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/rescan", `{"network":"bsc"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/rescan", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleRescan_RejectsMalformedSolanaAddress(t *testing.T) {
	_, ts := newTestServer(t, &fakeScanner{})

	resp := postJSON(t, ts.URL+"/rescan", `{"network":"solana","address":"0OIl"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/rescan", `{"network":"solana","address":"So11111111111111111111111111111111111111112"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "well-formed address reaches the scanner")
}

func TestHandleTokens_FlagDetails(t *testing.T) {
	flagged := token("bsc", "0xa", 40, domain.VerdictCaution)
	flagged.Risk.Flags = []domain.Flag{domain.FlagLowLiquidity, domain.Flag("custom_flag")}
	sc := &fakeScanner{tokens: []*domain.EnrichedToken{flagged}}
	s, ts := newTestServer(t, sc)
	s.RunScan(context.Background())

	var views []TokenView
	getJSON(t, ts.URL+"/tokens", http.StatusOK, &views)
	require.Len(t, views, 1)
	require.Len(t, views[0].FlagDetails, 2)
	assert.Equal(t, domain.FlagLowLiquidity, views[0].FlagDetails[0].ID)
	assert.Equal(t, "Low Liq.", views[0].FlagDetails[0].Label)
	assert.NotEmpty(t, views[0].FlagDetails[0].Tooltip)
	assert.Equal(t, "custom_flag", views[0].FlagDetails[1].Label)

	resp, err := http.Get(ts.URL + "/tokens")
	require.NoError(t, err)
	defer resp.Body.Close()
	var raw bytes.Buffer
	_, err = raw.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), `"label":"Low Liq."`)
}

func TestWebSocket_SnapshotThenBroadcast(t *testing.T) {
	sc := &fakeScanner{tokens: []*domain.EnrichedToken{token("bsc", "0xa", 10, domain.VerdictOK)}}
	s, ts := newTestServer(t, sc)
	s.RunScan(context.Background())

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	hello := readMessage(t, conn)
	assert.Equal(t, messageScan, hello.Type)
	require.Len(t, hello.Tokens, 1)

	require.Eventually(t, func() bool { return s.hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	sc.tokens = []*domain.EnrichedToken{
		token("bsc", "0xa", 10, domain.VerdictOK),
		token("bsc", "0xb", 80, domain.VerdictRisky),
	}
	s.RunScan(context.Background())

	next := readMessage(t, conn)
	assert.Equal(t, messageScan, next.Type)
	require.Len(t, next.Tokens, 2)
	assert.Equal(t, "bsc-0xb", next.Tokens[0].ID)
	assert.NotNil(t, next.Tokens[0].FlagDetails)
}

func TestServeWS_HubStopped(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	returned := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(returned)
		hub.ServeWS(w, r, nil)
	}))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("ServeWS blocked after the hub stopped")
	}
	assert.Zero(t, hub.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestRankTokens_StableAndCopy(t *testing.T) {
	in := []*domain.EnrichedToken{
		token("bsc", "a", 10, domain.VerdictOK),
		token("bsc", "b", 10, domain.VerdictOK),
		token("bsc", "c", 20, domain.VerdictOK),
	}
	out := rankTokens(in)
	assert.Equal(t, []string{"bsc-c", "bsc-a", "bsc-b"}, []string{out[0].ID, out[1].ID, out[2].ID})
	assert.Equal(t, "bsc-a", in[0].ID)
}

func getJSON(t *testing.T, url string, wantStatus int, v any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantStatus, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}
