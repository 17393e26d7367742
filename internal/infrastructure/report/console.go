package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"

	"RepoScout/internal/domain"
)

// ConsoleReporter renders a run's ranked list as a colorized table.
type ConsoleReporter struct {
	out    io.Writer
	logger *slog.Logger
}

// NewConsoleReporter writes to stdout when out is nil.
func NewConsoleReporter(out io.Writer, logger *slog.Logger) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out, logger: logger}
}

// PublishReport implements ports.Reporter.
func (r *ConsoleReporter) PublishReport(_ context.Context, state *domain.RunState) error {
	header := color.New(color.FgCyan, color.Bold).SprintFunc()
	title := color.New(color.Bold).SprintFunc()
	gold := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(r.out, "%s\n", header(fmt.Sprintf("Results for: %s", state.Query)))
	if state.HardwareSpec != "" {
		fmt.Fprintf(r.out, "Hardware constraint: %s\n", state.HardwareSpec)
	}
	if len(state.Final) == 0 {
		fmt.Fprintln(r.out, "No repositories matched the query.")
		return nil
	}

	tw := tabwriter.NewWriter(r.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, header("#\tRepository\tSemantic\tRerank\tFinal\tLink"))
	for i, cand := range state.Final {
		name := title(cand.FullName)
		if cand.Personal != nil && cand.Personal.Gold {
			name = gold(cand.FullName + " *")
		}
		fmt.Fprintf(tw, "%d\t%s\t%.1f%%\t%.3f\t%.1f%%\t%s\n",
			i+1,
			name,
			cand.Scores.SemanticSimilarity*100,
			cand.Scores.CrossEncoderScore,
			cand.Scores.FinalScore*100,
			cand.Link,
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	if r.logger != nil {
		r.logger.Info("report published", "run", state.ID, "rows", len(state.Final))
	}
	return nil
}
