package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catagraph/catagraph/internal/catalog"
	"github.com/catagraph/catagraph/internal/check"
	"github.com/catagraph/catagraph/internal/loadspec"
)

// ValidationResult holds a validation run for JSON output.
type ValidationResult struct {
	Valid      bool              `json:"valid"`
	Violations []check.Violation `json:"violations,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var paradigm string
	var oneNF, design bool

	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Validate a schema document against the integrity constraints",
		Long: `Build the catalog from a schema document and run the constraint
battery: generic hypergraph shape, atom rules, struct rules, set rules, and
optionally the design-level and paradigm-specific rules.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := rootOpts.checkParadigm(paradigm, oneNF, design)
			if err != nil {
				return NewExitError(ExitCommandError, err.Error())
			}
			return runValidate(rootOpts, args[0], opts, cmd)
		},
	}

	cmd.Flags().StringVar(&paradigm, "paradigm", "", "storage paradigm rules to apply (normalized|document)")
	cmd.Flags().BoolVar(&oneNF, "one-nf", false, "also apply the first-normal-form rules")
	cmd.Flags().BoolVar(&design, "design", false, "also apply the design-level completeness rules")
	return cmd
}

func runValidate(rootOpts *RootOptions, path string, opts check.Options, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	cat, err := buildCatalog(formatter, path)
	if err != nil {
		return err
	}
	report := check.Check(cat, opts)
	if report.OK {
		if formatter.Format == "json" {
			return formatter.Success(ValidationResult{Valid: true})
		}
		fmt.Fprintln(formatter.Writer, "✓ catalog valid")
		return nil
	}
	return outputViolations(formatter, report.Violations)
}

// buildCatalog loads a document and constructs the catalog, mapping load
// and build failures to command errors.
func buildCatalog(formatter *OutputFormatter, path string) (*catalog.Catalog, error) {
	doc, err := loadspec.Load(path)
	if err != nil {
		if le, ok := err.(*loadspec.LoadError); ok {
			_ = formatter.Failure(le.Code, le.Message, nil)
		} else {
			_ = formatter.Failure("L001", err.Error(), nil)
		}
		return nil, WrapExitError(ExitCommandError, "loading document", err)
	}
	formatter.VerboseLog("loaded %s: %d classes, %d associations, %d structs, %d sets",
		path, len(doc.Classes), len(doc.Associations), len(doc.Structs), len(doc.Sets))

	cat, err := loadspec.Build(doc)
	if err != nil {
		if be, ok := err.(*catalog.BuildError); ok {
			_ = formatter.Failure(be.Code, be.Message, be.Element)
		} else {
			_ = formatter.Failure("B104", err.Error(), nil)
		}
		return nil, WrapExitError(ExitFailure, "building catalog", err)
	}
	return cat, nil
}

// requireValid runs the constraint battery and fails the command when any
// violation is found. DDL and planning refuse to run on an invalid catalog.
func requireValid(formatter *OutputFormatter, cat *catalog.Catalog, opts check.Options) error {
	report := check.Check(cat, opts)
	if report.OK {
		return nil
	}
	return outputViolations(formatter, report.Violations)
}

func outputViolations(formatter *OutputFormatter, violations []check.Violation) error {
	if formatter.Format == "json" {
		// Envelope built by hand so the payload carries both the full
		// violation list and the leading error.
		resp := Response{
			Status: "error",
			Data:   ValidationResult{Valid: false, Violations: violations},
			Error:  &Error{Code: violations[0].Code, Message: violations[0].Message},
		}
		if err := formatter.encode(resp); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d violation(s)", len(violations)))
	}

	fmt.Fprintln(formatter.Writer, "✗ validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, v := range violations {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", v.Code, v.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d violation(s)", len(violations)))
}
