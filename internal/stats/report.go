package stats

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/store"
)

const terminalWidthBackup = 80

// ReportConfig selects which scores a report covers.
type ReportConfig struct {
	Last int
	Mode string
	// Window is the moving average window for the trend line.
	Window int
}

// Report contains loaded data for score rendering.
type Report struct {
	Records []model.ScoreRecord
	Window  int
}

// BuildReport loads the scores a report covers.
func BuildReport(ctx context.Context, st *store.Store, cfg ReportConfig) (Report, error) {
	records, err := st.ListScores(ctx, store.ScoreFilter{Mode: cfg.Mode, Last: cfg.Last})
	if err != nil {
		return Report{}, err
	}
	return Report{Records: records, Window: cfg.Window}, nil
}

// Render prints the full scores view sized to width.
func (r Report) Render(w io.Writer, width int) error {
	if err := RenderScores(w, r.Records); err != nil {
		return err
	}
	if len(r.Records) == 0 {
		return nil
	}
	if err := writeLines(w, []string{""}); err != nil {
		return err
	}
	if err := RenderSummary(w, r.Records); err != nil {
		return err
	}
	if err := RenderModes(w, r.Records); err != nil {
		return err
	}
	return RenderTrend(w, r.Records, r.Window, width)
}

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
