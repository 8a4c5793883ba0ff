package cmd

import (
	"fmt"
	"io"

	"github.com/xmazu/envsync/internal/project"
	"github.com/xmazu/envsync/internal/tui"
	"github.com/xmazu/envsync/internal/updater"
)

func printUpdateResult(w io.Writer, p *project.Project, res *updater.Result) {
	name := p.Rel(res.Output)
	switch {
	case !res.Written && res.Before == res.After && !res.Created:
		fmt.Fprintf(w, "%s %s\n", tui.Muted("unchanged"), name)
		return
	case !res.Written:
		fmt.Fprintf(w, "%s %s\n", tui.Warning("would write"), name)
		tui.PrintDiff(w, updater.Diff(res.Before, res.After))
	case res.Created:
		fmt.Fprintf(w, "%s %s\n", tui.Success("created"), name)
	default:
		fmt.Fprintf(w, "%s %s\n", tui.Success("updated"), name)
	}
	tui.PrintKeys(w, "added", res.Summary.Added)
	tui.PrintKeys(w, "changed", res.Summary.Changed)
	tui.PrintKeys(w, "cleared", res.Summary.Cleared)
	tui.PrintKeys(w, "kept", res.Summary.Kept)
}

func printReport(w io.Writer, name string, exists bool, r updater.Report) {
	switch {
	case !exists:
		fmt.Fprintf(w, "%s %s %s\n", tui.Error("✗"), name, tui.Muted("(missing)"))
	case r.OK():
		fmt.Fprintf(w, "%s %s\n", tui.Success("✓"), name)
	default:
		fmt.Fprintf(w, "%s %s\n", tui.Error("✗"), name)
	}
	if exists {
		tui.PrintKeys(w, "  missing", r.Missing)
	}
	tui.PrintKeys(w, "  empty", r.Empty)
	tui.PrintKeys(w, "  extra", r.Extra)
}
