// Package cli implements the catagraph command line: validating schema
// documents, emitting DDL, rewriting queries and managing catalog
// snapshots.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catagraph/catagraph/internal/check"
	"github.com/catagraph/catagraph/internal/ddl"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	config *Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the catagraph CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "catagraph",
		Short: "catagraph - hypergraph schema catalogs",
		Long:  "Model database schemas as typed hypergraphs, validate them, compile DDL and rewrite queries.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := LoadConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewDDLCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewListCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// formatter builds the output formatter for a command invocation.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// checkParadigm resolves a paradigm flag (falling back to the config file)
// into validator options.
func (o *RootOptions) checkParadigm(paradigm string, oneNF, design bool) (check.Options, error) {
	if paradigm == "" {
		paradigm = o.config.Paradigm
	}
	opts := check.Options{DesignLevel: design || o.config.DesignLevel}
	switch paradigm {
	case "", "none":
		opts.Paradigm = check.ParadigmNone
	case "normalized":
		opts.Paradigm = check.ParadigmNormalized
	case "document":
		opts.Paradigm = check.ParadigmDocument
	default:
		return opts, fmt.Errorf("unknown paradigm %q: must be normalized or document", paradigm)
	}
	if oneNF || o.config.OneNF {
		if opts.Paradigm == check.ParadigmDocument {
			return opts, fmt.Errorf("one-nf rules apply to the normalized paradigm only")
		}
		opts.Paradigm = check.ParadigmOneNF
	}
	return opts, nil
}

// ddlParadigm resolves a paradigm flag into compiler options.
func (o *RootOptions) ddlParadigm(paradigm string) (ddl.Options, error) {
	if paradigm == "" {
		paradigm = o.config.Paradigm
	}
	switch paradigm {
	case "", "normalized":
		return ddl.Options{Paradigm: ddl.Normalized}, nil
	case "document":
		return ddl.Options{Paradigm: ddl.Document}, nil
	default:
		return ddl.Options{}, fmt.Errorf("unknown paradigm %q: must be normalized or document", paradigm)
	}
}
