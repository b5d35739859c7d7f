package web

import (
	"net/http"

	"github.com/verte-zerg/typist/internal/scoring"
	"github.com/verte-zerg/typist/internal/session"
)

// runSlot selects one of the player's run fields.
type runSlot func(p *Player) **session.Run

func drillsRun(p *Player) **session.Run  { return &p.drills }
func sprintsRun(p *Player) **session.Run { return &p.sprints }
func storyRun(p *Player) **session.Run   { return &p.storyRun }

const maxDrillRounds = 100

type submitRequest struct {
	Typed   string  `json:"typed"`
	Seconds float64 `json:"seconds"`
}

type summaryBody struct {
	AvgNet float64 `json:"avg_net"`
	AvgAcc float64 `json:"avg_acc"`
}

func roundedSummary(sum session.Summary) summaryBody {
	return summaryBody{
		AvgNet: scoring.Round(sum.AvgNet, 1),
		AvgAcc: scoring.Round(sum.AvgAcc, 1),
	}
}

func (s *Server) handleDrillsStart(w http.ResponseWriter, r *http.Request, p *Player) {
	var req struct {
		Rounds int `json:"rounds"`
	}
	if err := readJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	rounds := p.trainer.Config().DrillRounds
	if req.Rounds > 0 {
		rounds = min(req.Rounds, maxDrillRounds)
	}
	run := p.trainer.DrillRounds(rounds)
	p.drills = run
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rounds": run.Total()})
}

func (s *Server) handleSprintsStart(w http.ResponseWriter, r *http.Request, p *Player) {
	p.sprints = p.trainer.Sprints()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "rounds": p.sprints.Total()})
}

func (s *Server) runNext(slot runSlot) playerHandler {
	return func(w http.ResponseWriter, r *http.Request, p *Player) {
		run := *slot(p)
		if run == nil {
			s.fail(w, r, errNoRun)
			return
		}
		if run.Done() {
			writeJSON(w, http.StatusOK, map[string]any{"done": true})
			return
		}
		prompt, err := run.Next()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"done":   false,
			"round":  prompt.Round,
			"rounds": prompt.Total,
			"prompt": prompt.Text,
		})
	}
}

func (s *Server) runSubmit(slot runSlot) playerHandler {
	return func(w http.ResponseWriter, r *http.Request, p *Player) {
		run := *slot(p)
		if run == nil {
			s.fail(w, r, errNoRun)
			return
		}
		var req submitRequest
		if err := readJSON(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		attempt, err := run.Submit(req.Typed, req.Seconds)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		resp := map[string]any{
			"done":    run.Done(),
			"stats":   attempt,
			"comment": p.trainer.Feedback(attempt),
		}
		if run.Done() {
			sum, err := p.trainer.Finish(r.Context(), run)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			resp["summary"] = roundedSummary(sum)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
