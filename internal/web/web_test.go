package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typist/internal/generator"
	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/session"
	"github.com/verte-zerg/typist/internal/story"
)

type memScores struct {
	mu      sync.Mutex
	records []model.ScoreRecord
}

func (m *memScores) AppendScore(_ context.Context, rec model.ScoreRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
}

func (m *memScores) LastScores(_ context.Context, n int) []model.ScoreRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.records) > n {
		return append([]model.ScoreRecord(nil), m.records[len(m.records)-n:]...)
	}
	return append([]model.ScoreRecord(nil), m.records...)
}

func (m *memScores) all() []model.ScoreRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ScoreRecord(nil), m.records...)
}

type memProgress struct {
	mu sync.Mutex
	p  model.StoryProgress
}

func (m *memProgress) LoadProgress(context.Context) model.StoryProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.p
}

func (m *memProgress) SaveProgress(_ context.Context, p model.StoryProgress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.p = p
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	ts       *httptest.Server
	client   *http.Client
	scores   *memScores
	progress *memProgress
	clock    *clock
	server   *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		scores:   &memScores{},
		progress: &memProgress{},
		clock:    &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	cfg := model.DefaultConfig()
	cfg.DrillRounds = 2
	cfg.StoryRounds = 2
	f.server = New(Options{
		Practice:   cfg,
		Story:      story.NewEngine(story.Default(), f.progress, generator.NewSeeded(5), cfg.StoryRounds),
		Scores:     f.scores,
		SessionTTL: time.Hour,
		Now:        f.clock.Now,
		Tick:       10 * time.Millisecond,
	})
	f.ts = httptest.NewServer(f.server.Handler())
	t.Cleanup(f.ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	f.client = &http.Client{Jar: jar}
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	status, body := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestIndexServesPage(t *testing.T) {
	f := newFixture(t)
	resp, err := f.client.Get(f.ts.URL + "/")
	require.NoError(t, err)
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			_ = cerr
		}
	}()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
}

func TestPottyToggleSticksToCookie(t *testing.T) {
	f := newFixture(t)

	_, body := f.do(t, http.MethodGet, "/api/settings", nil)
	assert.Equal(t, true, body["potty_mode"])
	assert.Equal(t, 1, f.server.Players().Len())

	_, body = f.do(t, http.MethodPost, "/api/settings/potty", nil)
	assert.Equal(t, false, body["potty_mode"])

	_, body = f.do(t, http.MethodGet, "/api/settings", nil)
	assert.Equal(t, false, body["potty_mode"])
	assert.Equal(t, 1, f.server.Players().Len())

	_, body = f.do(t, http.MethodPost, "/api/settings/potty", map[string]bool{"enabled": true})
	assert.Equal(t, true, body["potty_mode"])
}

func TestDrillsFlow(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/api/drills/start", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2.0, body["rounds"])

	for round := 1; round <= 2; round++ {
		_, next := f.do(t, http.MethodGet, "/api/drills/next", nil)
		assert.Equal(t, false, next["done"])
		assert.Equal(t, float64(round), next["round"])
		prompt := next["prompt"].(string)
		require.NotEmpty(t, prompt)

		status, sub := f.do(t, http.MethodPost, "/api/drills/submit", submitRequest{Typed: prompt, Seconds: 6})
		require.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, sub["comment"])
		stats := sub["stats"].(map[string]any)
		assert.Equal(t, 100.0, stats["accuracy_pct"])
		if round == 2 {
			assert.Equal(t, true, sub["done"])
			summary := sub["summary"].(map[string]any)
			assert.Equal(t, 100.0, summary["avg_acc"])
		}
	}

	_, next := f.do(t, http.MethodGet, "/api/drills/next", nil)
	assert.Equal(t, true, next["done"])

	recs := f.scores.all()
	require.Len(t, recs, 1)
	assert.Equal(t, session.LabelDrills, recs[0].Mode)

	_, last := f.do(t, http.MethodGet, "/api/scores/last", nil)
	assert.Len(t, last["scores"], 1)
}

func TestSubmitErrors(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodPost, "/api/sprints/submit", submitRequest{Typed: "x", Seconds: 1})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "no_active_run", body["error"])

	f.do(t, http.MethodPost, "/api/sprints/start", nil)
	status, body = f.do(t, http.MethodPost, "/api/sprints/submit", submitRequest{Typed: "x", Seconds: 1})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "no_prompt", body["error"])

	req, err := http.NewRequest(http.MethodPost, f.ts.URL+"/api/sprints/submit", strings.NewReader("{nope"))
	require.NoError(t, err)
	resp, err := f.client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBossREST(t *testing.T) {
	f := newFixture(t)

	_, body := f.do(t, http.MethodPost, "/api/boss/start", map[string]int{"duration": 30})
	assert.Equal(t, "Boss Battle 30s", body["mode"])
	assert.Equal(t, 30.0, body["ends_in"])

	_, next := f.do(t, http.MethodGet, "/api/boss/next", nil)
	prompt := next["prompt"].(string)
	require.NotEmpty(t, prompt)

	f.clock.Advance(31 * time.Second)
	_, sub := f.do(t, http.MethodPost, "/api/boss/submit", submitRequest{Typed: prompt})
	assert.Equal(t, true, sub["done"])
	summary := sub["summary"].(map[string]any)
	assert.Equal(t, 1.0, summary["prompts"])
	assert.Equal(t, 100.0, summary["accuracy_pct"])

	recs := f.scores.all()
	require.Len(t, recs, 1)
	assert.Equal(t, "Boss Battle 30s", recs[0].Mode)

	status, _ := f.do(t, http.MethodGet, "/api/boss/next", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestStoryFlow(t *testing.T) {
	f := newFixture(t)

	_, cur := f.do(t, http.MethodGet, "/api/story/current", nil)
	node := cur["node"].(map[string]any)
	assert.Equal(t, story.DefaultStart, node["id"])

	status, start := f.do(t, http.MethodPost, "/api/story/start", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2.0, start["rounds"])

	var last map[string]any
	for i := 0; i < 2; i++ {
		_, next := f.do(t, http.MethodGet, "/api/story/next", nil)
		_, last = f.do(t, http.MethodPost, "/api/story/submit", submitRequest{Typed: next["prompt"].(string), Seconds: 1})
	}
	require.Equal(t, true, last["done"])
	outcome := last["outcome"].(map[string]any)
	assert.Equal(t, "passed", outcome["result"])
	choices := outcome["choices"].([]any)
	require.NotEmpty(t, choices)

	status, body := f.do(t, http.MethodPost, "/api/story/start", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "choice_pending", body["error"])

	status, chose := f.do(t, http.MethodPost, "/api/story/choose", map[string]int{"index": 0})
	require.Equal(t, http.StatusOK, status)
	first := choices[0].(map[string]any)
	assert.Equal(t, first["target"], chose["current_node"])
	assert.Equal(t, false, chose["defaulted"])

	status, body = f.do(t, http.MethodPost, "/api/story/choose", map[string]int{"index": 0})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "no_pending_choice", body["error"])

	require.Len(t, f.scores.all(), 1)
	assert.Equal(t, session.StoryLabel(story.DefaultStart), f.scores.all()[0].Mode)
}

func TestStoryMissingNode(t *testing.T) {
	f := newFixture(t)
	f.progress.SaveProgress(context.Background(), model.StoryProgress{CurrentNode: "nowhere"})

	status, body := f.do(t, http.MethodPost, "/api/story/start", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "missing_node", body["error"])
	assert.Equal(t, "nowhere", body["node"])

	_, reset := f.do(t, http.MethodPost, "/api/story/reset", nil)
	assert.Equal(t, true, reset["ok"])
	status, _ = f.do(t, http.MethodPost, "/api/story/start", nil)
	assert.Equal(t, http.StatusOK, status)
}

func playStoryChapter(t *testing.T, f *fixture) map[string]any {
	t.Helper()
	var last map[string]any
	for i := 0; i < 2; i++ {
		_, next := f.do(t, http.MethodGet, "/api/story/next", nil)
		_, last = f.do(t, http.MethodPost, "/api/story/submit", submitRequest{Typed: next["prompt"].(string), Seconds: 1})
	}
	return last
}

func TestStoryEndingIsPlayed(t *testing.T) {
	f := newFixture(t)
	f.progress.SaveProgress(context.Background(), model.NewStoryProgress("throne"))

	status, start := f.do(t, http.MethodPost, "/api/story/start", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2.0, start["rounds"])

	last := playStoryChapter(t, f)
	require.Equal(t, true, last["done"])
	assert.Equal(t, true, last["ended"])
	assert.Equal(t, "ended", last["outcome"].(map[string]any)["result"])

	p := f.progress.LoadProgress(context.Background())
	assert.Equal(t, "throne", p.CurrentNode)
	require.Len(t, p.History, 1)
	assert.Equal(t, model.ResultSuccess, p.History[0].Result)
	require.Len(t, f.scores.all(), 1)
	assert.Equal(t, session.StoryLabel("throne"), f.scores.all()[0].Mode)
}

func TestStoryStaleRunRejected(t *testing.T) {
	f := newFixture(t)
	status, _ := f.do(t, http.MethodPost, "/api/story/start", nil)
	require.Equal(t, http.StatusOK, status)

	f.progress.SaveProgress(context.Background(), model.NewStoryProgress("stall_left"))

	var last map[string]any
	var code int
	for i := 0; i < 2; i++ {
		_, next := f.do(t, http.MethodGet, "/api/story/next", nil)
		code, last = f.do(t, http.MethodPost, "/api/story/submit", submitRequest{Typed: next["prompt"].(string), Seconds: 1})
	}
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "stale_chapter", last["error"])

	p := f.progress.LoadProgress(context.Background())
	assert.Equal(t, "stall_left", p.CurrentNode)
	assert.Empty(t, p.History)
	assert.Empty(t, f.scores.all())
}

func readUntil(t *testing.T, conn *websocket.Conn, kind string) wsOutbound {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg wsOutbound
		require.NoError(t, conn.ReadJSON(&msg))
		require.NotEqual(t, msgError, msg.Type, msg.Error)
		if msg.Type == kind {
			return msg
		}
	}
}

func TestBossSocket(t *testing.T) {
	f := newFixture(t)

	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws/boss"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			_ = cerr
		}
	}()

	require.NoError(t, conn.WriteJSON(wsInbound{Type: msgStart, Duration: 20}))
	first := readUntil(t, conn, msgPrompt)
	assert.Equal(t, 20, first.Remaining)
	require.NotEmpty(t, first.Prompt)

	require.NoError(t, conn.WriteJSON(wsInbound{Type: msgSubmit, Typed: first.Prompt}))
	readUntil(t, conn, msgPrompt)

	f.clock.Advance(21 * time.Second)
	done := readUntil(t, conn, msgDone)
	require.NotNil(t, done.Summary)
	assert.Equal(t, 1, done.Summary.Prompts)
	assert.Equal(t, 100.0, done.Summary.AccuracyPct)
	assert.NotEmpty(t, done.Comment)

	recs := f.scores.all()
	require.Len(t, recs, 1)
	assert.Equal(t, "Boss Battle 20s", recs[0].Mode)
}

func TestPlayersExpire(t *testing.T) {
	c := &clock{t: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}
	players := NewPlayers(time.Minute, c.Now, func() *session.Trainer {
		return session.NewTrainer(model.DefaultConfig(), generator.NewSeeded(1), nil, nil)
	})

	a := players.Create()
	b := players.Create()
	assert.NotEqual(t, a.ID, b.ID)

	_, ok := players.Get("not-a-uuid")
	assert.False(t, ok)

	c.Advance(50 * time.Second)
	_, ok = players.Get(a.ID)
	require.True(t, ok)

	c.Advance(30 * time.Second)
	assert.Equal(t, 1, players.Sweep())
	assert.Equal(t, 1, players.Len())

	_, ok = players.Get(b.ID)
	assert.False(t, ok)

	c.Advance(2 * time.Minute)
	_, ok = players.Get(a.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, players.Len())
}

func dialBoss(t *testing.T, f *fixture) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws/boss"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() {
		if cerr := conn.Close(); cerr != nil {
			_ = cerr
		}
	})
	return conn
}

func readUntilClosed(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg wsOutbound
		if err := conn.ReadJSON(&msg); err != nil {
			var netErr interface{ Timeout() bool }
			if errors.As(err, &netErr) && netErr.Timeout() {
				t.Fatalf("socket stayed open: %v", err)
			}
			return
		}
	}
}

func TestCloseDropsBossSockets(t *testing.T) {
	f := newFixture(t)
	conn := dialBoss(t, f)
	require.NoError(t, conn.WriteJSON(wsInbound{Type: msgStart, Duration: 20}))
	readUntil(t, conn, msgPrompt)

	closed := make(chan struct{})
	go func() {
		f.server.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}
	readUntilClosed(t, conn)

	f.clock.Advance(21 * time.Second)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.scores.all())

	late := dialBoss(t, f)
	readUntilClosed(t, late)
}
