package web

import (
	"net/http"

	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/story"
)

type outcomeBody struct {
	Result  string         `json:"result"`
	Text    string         `json:"text"`
	AvgNet  float64        `json:"avg_net"`
	AvgAcc  float64        `json:"avg_acc"`
	Choices []model.Choice `json:"choices,omitempty"`
	Next    string         `json:"next,omitempty"`
}

func newOutcomeBody(out story.Outcome) outcomeBody {
	body := outcomeBody{
		Result:  out.Kind.String(),
		AvgNet:  out.AvgNet,
		AvgAcc:  out.AvgAcc,
		Choices: out.Choices,
		Next:    out.Next,
	}
	if out.Kind == story.Failed {
		body.Text = out.Node.FailureText
	} else {
		body.Text = out.Node.SuccessText
	}
	return body
}

func (s *Server) handleStoryCurrent(w http.ResponseWriter, r *http.Request, p *Player) {
	progress, node, err := s.story.Progress(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"node":            node,
		"progress":        progress,
		"pending_choices": progress.PendingChoices,
		"terminal":        node.Terminal(),
	})
}

func (s *Server) handleStoryReset(w http.ResponseWriter, r *http.Request, p *Player) {
	progress := s.story.Reset(r.Context())
	p.storyRun = nil
	p.storyNode = ""
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "progress": progress})
}

func (s *Server) handleStoryStart(w http.ResponseWriter, r *http.Request, p *Player) {
	run, ch, err := p.trainer.StoryChapter(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p.storyRun = run
	p.storyNode = ch.Node.ID
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"node":   ch.Node,
		"rounds": run.Total(),
	})
}

func (s *Server) handleStorySubmit(w http.ResponseWriter, r *http.Request, p *Player) {
	run := p.storyRun
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
		sum, out, err := p.trainer.FinishStory(r.Context(), run, p.storyNode)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		resp["summary"] = roundedSummary(sum)
		resp["outcome"] = newOutcomeBody(out)
		resp["ended"] = out.Kind == story.Ended
		p.storyRun = nil
		p.storyNode = ""
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStoryChoose(w http.ResponseWriter, r *http.Request, p *Player) {
	var req struct {
		Index  *int   `json:"index"`
		Label  string `json:"label"`
		NextID string `json:"next_id"`
	}
	if err := readJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	var (
		res story.ChoiceResult
		err error
	)
	switch {
	case req.Index != nil:
		res, err = s.story.ChooseIndex(r.Context(), *req.Index)
	case req.Label != "":
		res, err = s.story.Choose(r.Context(), req.Label)
	default:
		res, err = s.story.Choose(r.Context(), req.NextID)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"choice":       res.Choice,
		"defaulted":    res.Defaulted,
		"current_node": res.Choice.Target,
	})
}
