package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/grez-lucas/form-autofill/internal/autofill/filler"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

type stepView struct {
	Index    int               `json:"index"`
	Control  filler.Descriptor `json:"control"`
	Action   filler.Action     `json:"action"`
	Value    string            `json:"value,omitempty"`
	Resolved []int             `json:"resolved,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type reportView struct {
	Collected int        `json:"collected"`
	Filled    int        `json:"filled"`
	Steps     []stepView `json:"steps"`
}

func newReportView(r *filler.Report) reportView {
	view := reportView{
		Collected: r.Collected,
		Filled:    len(r.Filled()),
		Steps:     make([]stepView, 0, len(r.Steps)),
	}
	for _, s := range r.Steps {
		sv := stepView{
			Index:    s.Index,
			Control:  s.Control,
			Action:   s.Action,
			Value:    s.Value,
			Resolved: s.Resolved,
		}
		if s.Err != nil {
			sv.Error = s.Err.Error()
		}
		view.Steps = append(view.Steps, sv)
	}
	return view
}

// writeReport prints one line per step, or the whole report as JSON.
func writeReport(w io.Writer, r *filler.Report, asJSON bool) error {
	view := newReportView(r)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range view.Steps {
		switch {
		case s.Error != "":
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Index, s.Control, s.Action, errorColor.Sprint(s.Error))
		case s.Action == filler.ActionNone:
			fmt.Fprintf(tw, "%d\t%s\t%s\t\n", s.Index, s.Control, dimColor.Sprint(s.Action))
		default:
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.Index, s.Control, s.Action, s.Value)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := successColor.Fprintf(w, "✓ filled %d of %d controls\n", view.Filled, view.Collected)
	return err
}
