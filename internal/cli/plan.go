package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/catagraph/catagraph/internal/check"
	"github.com/catagraph/catagraph/internal/ddl"
	"github.com/catagraph/catagraph/internal/planner"
)

// PlanResult holds the rewritten statements for JSON output.
type PlanResult struct {
	Statements []planner.Statement `json:"statements"`
	Ambiguous  bool                `json:"ambiguous"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	var paradigm string
	var maxAlternatives int

	cmd := &cobra.Command{
		Use:   "plan <document> <query.json>",
		Short: "Rewrite a logical query against the compiled layout",
		Long: `Build and validate the catalog, compile it for the chosen paradigm and
rewrite the query into executable statements. More than one statement means
the rewrite is ambiguous; statements come back smallest table count first
with a per-statement cost.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(rootOpts, args[0], args[1], paradigm, maxAlternatives, cmd)
		},
	}

	cmd.Flags().StringVar(&paradigm, "paradigm", "", "storage paradigm (normalized|document)")
	cmd.Flags().IntVar(&maxAlternatives, "max-alternatives", 0, "cap on enumerated rewrite alternatives")
	return cmd
}

func runPlan(rootOpts *RootOptions, docPath, queryPath, paradigm string, maxAlternatives int, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	ddlOpts, err := rootOpts.ddlParadigm(paradigm)
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}
	cat, err := buildCatalog(formatter, docPath)
	if err != nil {
		return err
	}
	checkOpts, err := rootOpts.checkParadigm(paradigm, false, false)
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}
	if checkOpts.Paradigm == check.ParadigmNone {
		checkOpts.Paradigm = check.ParadigmNormalized
	}
	if err := requireValid(formatter, cat, checkOpts); err != nil {
		return err
	}

	layout, err := ddl.Build(cat, ddlOpts)
	if err != nil {
		return WrapExitError(ExitFailure, "compiling layout", err)
	}

	data, err := os.ReadFile(queryPath)
	if err != nil {
		_ = formatter.Failure("Q300", fmt.Sprintf("reading query: %v", err), nil)
		return WrapExitError(ExitCommandError, "reading query", err)
	}
	var query planner.Query
	if err := json.Unmarshal(data, &query); err != nil {
		_ = formatter.Failure("Q300", fmt.Sprintf("parsing query: %v", err), nil)
		return WrapExitError(ExitCommandError, "parsing query", err)
	}

	if maxAlternatives == 0 {
		maxAlternatives = rootOpts.config.MaxAlternatives
	}
	p := planner.New(layout, planner.Options{MaxAlternatives: maxAlternatives})
	stmts, err := p.Rewrite(query)
	if err != nil {
		if qe, ok := err.(*planner.QueryError); ok {
			_ = formatter.Failure(qe.Code, qe.Message, qe.Elements)
		} else {
			_ = formatter.Failure("Q300", err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "rewriting query", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(PlanResult{Statements: stmts, Ambiguous: len(stmts) > 1})
	}
	for _, stmt := range stmts {
		fmt.Fprintf(formatter.Writer, "-- cost %d, tables %v\n%s\n", stmt.Cost, stmt.Tables, stmt.SQL)
	}
	if len(stmts) > 1 {
		formatter.VerboseLog("rewrite is ambiguous: %d alternatives", len(stmts))
	}
	return nil
}
