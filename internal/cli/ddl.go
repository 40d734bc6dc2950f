package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catagraph/catagraph/internal/check"
	"github.com/catagraph/catagraph/internal/ddl"
)

// DDLResult holds the generated statements for JSON output.
type DDLResult struct {
	Paradigm   string   `json:"paradigm"`
	Statements []string `json:"statements"`
}

// NewDDLCommand creates the ddl command.
func NewDDLCommand(rootOpts *RootOptions) *cobra.Command {
	var paradigm string
	var skipCheck bool

	cmd := &cobra.Command{
		Use:   "ddl <document>",
		Short: "Compile a schema document to DDL statements",
		Long: `Build the catalog, validate it for the chosen paradigm and emit the
CREATE TABLE / ALTER TABLE statements: tables first, then primary keys,
then foreign keys.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDDL(rootOpts, args[0], paradigm, skipCheck, cmd)
		},
	}

	cmd.Flags().StringVar(&paradigm, "paradigm", "", "storage paradigm (normalized|document)")
	cmd.Flags().BoolVar(&skipCheck, "skip-check", false, "compile without running the constraint battery first")
	return cmd
}

func runDDL(rootOpts *RootOptions, path, paradigm string, skipCheck bool, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	ddlOpts, err := rootOpts.ddlParadigm(paradigm)
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}
	cat, err := buildCatalog(formatter, path)
	if err != nil {
		return err
	}
	if !skipCheck {
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
	}

	layout, err := ddl.Build(cat, ddlOpts)
	if err != nil {
		if ce, ok := err.(*ddl.CompileError); ok {
			_ = formatter.Failure(ce.Code, ce.Message, ce.Table)
		} else {
			_ = formatter.Failure("C201", err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "compiling layout", err)
	}

	stmts := layout.DDL()
	if formatter.Format == "json" {
		return formatter.Success(DDLResult{Paradigm: ddlOpts.Paradigm.String(), Statements: stmts})
	}
	for _, stmt := range stmts {
		fmt.Fprintln(formatter.Writer, stmt)
	}
	return nil
}
