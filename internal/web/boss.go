package web

import (
	"context"
	"net/http"
	"time"

	"github.com/verte-zerg/typist/internal/scoring"
)

const maxBossSeconds = 600

type bossSummary struct {
	Prompts     int     `json:"prompts"`
	GrossWPM    float64 `json:"gross_wpm"`
	AccuracyPct float64 `json:"accuracy_pct"`
	NetWPM      float64 `json:"net_wpm"`
}

func bossDuration(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(min(seconds, maxBossSeconds)) * time.Second
}

func remainingSeconds(d time.Duration) int {
	return int(d / time.Second)
}

// finishBoss records the player's battle once and returns its summary.
// The caller holds p.mu.
func (s *Server) finishBoss(ctx context.Context, p *Player) (bossSummary, string) {
	res := p.trainer.FinishBoss(ctx, p.boss)
	p.boss = nil
	comment := p.trainer.BossFeedback(res)
	return bossSummary{
		Prompts:     res.Prompts,
		GrossWPM:    scoring.Round(res.GrossWPM, 1),
		AccuracyPct: scoring.Round(res.AccuracyPct, 1),
		NetWPM:      scoring.Round(res.NetWPM, 1),
	}, comment
}

func (s *Server) handleBossStart(w http.ResponseWriter, r *http.Request, p *Player) {
	var req struct {
		Duration int `json:"duration"`
	}
	if err := readJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	p.boss = p.trainer.BossFor(bossDuration(req.Duration, p.trainer.Config().BossDuration))
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"ends_in": remainingSeconds(p.boss.Duration()),
		"mode":    p.boss.Label(),
	})
}

func (s *Server) handleBossNext(w http.ResponseWriter, r *http.Request, p *Player) {
	if p.boss == nil {
		s.fail(w, r, errNoRun)
		return
	}
	if p.boss.Expired() {
		sum, comment := s.finishBoss(r.Context(), p)
		writeJSON(w, http.StatusOK, map[string]any{"done": true, "summary": sum, "comment": comment})
		return
	}
	prompt, err := p.boss.Next()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"done":      false,
		"prompt":    prompt,
		"remaining": remainingSeconds(p.boss.Remaining()),
	})
}

func (s *Server) handleBossSubmit(w http.ResponseWriter, r *http.Request, p *Player) {
	if p.boss == nil {
		s.fail(w, r, errNoRun)
		return
	}
	var req submitRequest
	if err := readJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := p.boss.Submit(req.Typed); err != nil {
		s.fail(w, r, err)
		return
	}
	if p.boss.Expired() {
		sum, comment := s.finishBoss(r.Context(), p)
		writeJSON(w, http.StatusOK, map[string]any{"done": true, "summary": sum, "comment": comment})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"done":      false,
		"remaining": remainingSeconds(p.boss.Remaining()),
	})
}
