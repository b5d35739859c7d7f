package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verte-zerg/typist/internal/logs"
	"github.com/verte-zerg/typist/internal/session"
)

// Boss socket message types.
const (
	msgStart  = "start"
	msgSubmit = "submit"
	msgPrompt = "prompt"
	msgTick   = "tick"
	msgDone   = "done"
	msgError  = "error"
)

// wsInbound is sent by the browser.
type wsInbound struct {
	Type     string `json:"type"`
	Duration int    `json:"duration,omitempty"`
	Typed    string `json:"typed,omitempty"`
}

// wsOutbound is pushed by the server.
type wsOutbound struct {
	Type      string       `json:"type"`
	Prompt    string       `json:"prompt,omitempty"`
	Remaining int          `json:"remaining"`
	Summary   *bossSummary `json:"summary,omitempty"`
	Comment   string       `json:"comment,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// bossConn serializes writes to one websocket.
type bossConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *bossConn) send(msg wsOutbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (s *Server) handleBossSocket(w http.ResponseWriter, r *http.Request) {
	p, cookie := s.resolvePlayer(r)
	header := http.Header{}
	if cookie != nil {
		header.Add("Set-Cookie", cookie.String())
	}
	conn, err := s.upgrader.Upgrade(w, r, header)
	if err != nil {
		s.logger.WarnContext(r.Context(), "websocket upgrade failed", "err", err)
		return
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()
	if !s.trackSocket(conn) {
		return
	}
	defer s.untrackSocket(conn)

	var ticker sync.WaitGroup
	ctx, cancel := context.WithCancel(logs.WithPlayer(r.Context(), p.ID))
	defer func() {
		cancel()
		ticker.Wait()
	}()

	bc := &bossConn{conn: conn}

	for {
		var msg wsInbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.WarnContext(ctx, "boss socket closed", "err", err)
			}
			return
		}

		switch msg.Type {
		case msgStart:
			p.mu.Lock()
			p.boss = p.trainer.BossFor(bossDuration(msg.Duration, p.trainer.Config().BossDuration))
			boss := p.boss
			out := s.nextBossMessage(ctx, p)
			p.mu.Unlock()
			if err := bc.send(out); err != nil {
				return
			}
			ticker.Add(1)
			go func() {
				defer ticker.Done()
				s.tickBoss(ctx, bc, p, boss)
			}()
		case msgSubmit:
			p.mu.Lock()
			var out wsOutbound
			if p.boss == nil {
				out = wsOutbound{Type: msgError, Error: "no_active_run"}
			} else if err := p.boss.Submit(msg.Typed); err != nil {
				out = wsOutbound{Type: msgError, Error: "no_prompt"}
			} else {
				out = s.nextBossMessage(ctx, p)
			}
			p.mu.Unlock()
			if err := bc.send(out); err != nil {
				return
			}
		default:
			if err := bc.send(wsOutbound{Type: msgError, Error: "unknown message type"}); err != nil {
				return
			}
		}
	}
}

// nextBossMessage hands out the next prompt, or finishes an expired battle.
// The caller holds p.mu.
func (s *Server) nextBossMessage(ctx context.Context, p *Player) wsOutbound {
	if p.boss.Expired() {
		sum, comment := s.finishBoss(ctx, p)
		return wsOutbound{Type: msgDone, Summary: &sum, Comment: comment}
	}
	prompt, err := p.boss.Next()
	if err != nil {
		return wsOutbound{Type: msgError, Error: err.Error()}
	}
	return wsOutbound{Type: msgPrompt, Prompt: prompt, Remaining: remainingSeconds(p.boss.Remaining())}
}

// tickBoss pushes the remaining time until the battle ends, then the summary.
func (s *Server) tickBoss(ctx context.Context, bc *bossConn, p *Player, boss *session.Boss) {
	t := time.NewTicker(s.tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		p.mu.Lock()
		if p.boss != boss {
			// Finished by a submit or replaced by a new start.
			p.mu.Unlock()
			return
		}
		var out wsOutbound
		done := boss.Expired()
		if done {
			sum, comment := s.finishBoss(ctx, p)
			out = wsOutbound{Type: msgDone, Summary: &sum, Comment: comment}
		} else {
			out = wsOutbound{Type: msgTick, Remaining: remainingSeconds(boss.Remaining())}
		}
		p.mu.Unlock()

		if err := bc.send(out); err != nil || done {
			return
		}
	}
}
