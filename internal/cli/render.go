package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/bryanwahyu/automaton-trust/internal/application/tracking"
	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
)

var (
	bold  = color.New(color.Bold)
	faint = color.New(color.Faint)
	red   = color.New(color.FgRed)
	green = color.New(color.FgGreen)
)

func bandColor(b domain.Band) *color.Color {
	switch b {
	case domain.BandHigh:
		return color.New(color.FgGreen, color.Bold)
	case domain.BandMedium:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func printReport(w io.Writer, r domain.Report) {
	if r.GithubURL != "" {
		faint.Fprintf(w, "%s\n", r.GithubURL)
	}
	bandColor(r.Band).Fprintf(w, "Trust score %d/100  %s  (%s)\n", r.TrustScore, r.Band, r.Decision)

	bold.Fprintln(w, "\nScore ledger")
	fmt.Fprintf(w, "  %-44s %5d\n", "Base score", r.Ledger.Base)
	for _, d := range r.Ledger.Entries {
		red.Fprintf(w, "  %-44s %5d\n", d.Label, -d.Amount)
	}
	fmt.Fprintf(w, "  %-44s %5d\n", "Final score", r.Ledger.FinalScore)
	if !r.LedgerAgrees {
		color.New(color.FgYellow).Fprintf(w, "  note: ledger total %d differs from server score %d\n", r.Ledger.FinalScore, r.TrustScore)
	}

	bold.Fprintln(w, "\nPolicy gates")
	for _, g := range r.Gates {
		if g.Passed {
			green.Fprintf(w, "  [pass] %s", g.Label)
		} else {
			red.Fprintf(w, "  [fail] %s", g.Label)
		}
		faint.Fprintf(w, "  %s\n", g.Detail)
	}
	for _, reason := range r.DenyReasons {
		red.Fprintf(w, "  deny: %s\n", reason)
	}

	if len(r.Matches) > 0 {
		bold.Fprintln(w, "\nRisks")
		for _, m := range r.Matches {
			fmt.Fprintf(w, "  [%s] %s: %s\n", m.Risk.Level(), m.Risk.Category, m.Risk.Reason)
			switch m.State {
			case domain.GroundingLinked:
				for _, s := range m.Snippets {
					faint.Fprintf(w, "      policy: %s\n", s)
				}
			case domain.GroundingUnlinked:
				faint.Fprintln(w, "      no matching policy snippet")
			}
		}
	}

	for _, c := range r.Caveats {
		color.New(color.FgYellow).Fprintf(w, "\nnote: %s\n", c)
	}
}

func printError(w io.Writer, err error) {
	var ve *tracking.ValidationError
	if errors.As(err, &ve) {
		red.Fprintf(w, "%s\n", ve.Message)
		return
	}
	var te *domain.TransportError
	if errors.As(err, &te) {
		red.Fprintf(w, "error: %s\n", te.Message())
		return
	}
	red.Fprintf(w, "error: %v\n", err)
}
