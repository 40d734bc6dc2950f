package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catagraph/catagraph/internal/snapshot"
)

// SnapshotResult describes one saved or loaded snapshot for JSON output.
type SnapshotResult struct {
	ID          string `json:"id"`
	Fingerprint string `json:"fingerprint"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
	Incidences  int    `json:"incidences"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:           "save <document>",
		Short:         "Build a catalog from a document and persist it as a snapshot",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(rootOpts, args[0], dbPath, cmd)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "snapshot database path")
	return cmd
}

func runSave(rootOpts *RootOptions, path, dbPath string, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	cat, err := buildCatalog(formatter, path)
	if err != nil {
		return err
	}
	store, err := openStore(rootOpts, dbPath)
	if err != nil {
		_ = formatter.Failure("S401", err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening snapshot database", err)
	}
	defer store.Close()

	if err := store.Save(cmd.Context(), cat); err != nil {
		_ = formatter.Failure("S402", err.Error(), nil)
		return WrapExitError(ExitCommandError, "saving snapshot", err)
	}
	fingerprint, err := cat.Fingerprint()
	if err != nil {
		return WrapExitError(ExitCommandError, "fingerprinting catalog", err)
	}

	result := SnapshotResult{
		ID:          cat.ID,
		Fingerprint: fingerprint,
		Nodes:       len(cat.Nodes()),
		Edges:       len(cat.Edges()),
		Incidences:  len(cat.Incidences()),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "saved catalog %s (fingerprint %s)\n", result.ID, result.Fingerprint)
	return nil
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:           "load <catalog-id>",
		Short:         "Restore a snapshot and verify its fingerprint",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, args[0], dbPath, cmd)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "snapshot database path")
	return cmd
}

func runLoad(rootOpts *RootOptions, id, dbPath string, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	store, err := openStore(rootOpts, dbPath)
	if err != nil {
		_ = formatter.Failure("S401", err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening snapshot database", err)
	}
	defer store.Close()

	cat, err := store.Load(cmd.Context(), id)
	if err != nil {
		_ = formatter.Failure("S403", err.Error(), nil)
		return WrapExitError(ExitFailure, "loading snapshot", err)
	}
	fingerprint, err := cat.Fingerprint()
	if err != nil {
		return WrapExitError(ExitCommandError, "fingerprinting catalog", err)
	}

	result := SnapshotResult{
		ID:          cat.ID,
		Fingerprint: fingerprint,
		Nodes:       len(cat.Nodes()),
		Edges:       len(cat.Edges()),
		Incidences:  len(cat.Incidences()),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "loaded catalog %s: %d nodes, %d edges, %d incidences\n",
		result.ID, result.Nodes, result.Edges, result.Incidences)
	return nil
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List stored snapshots",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, dbPath, cmd)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "snapshot database path")
	return cmd
}

func runList(rootOpts *RootOptions, dbPath string, cmd *cobra.Command) error {
	formatter := rootOpts.formatter(cmd)

	store, err := openStore(rootOpts, dbPath)
	if err != nil {
		_ = formatter.Failure("S401", err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening snapshot database", err)
	}
	defer store.Close()

	infos, err := store.List(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "listing snapshots", err)
	}
	if formatter.Format == "json" {
		return formatter.Success(infos)
	}
	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%s  %s  %s\n", info.ID, info.SavedAt, info.Fingerprint)
	}
	return nil
}

// openStore resolves the snapshot database path (flag, then config file,
// then a default next to the working directory).
func openStore(rootOpts *RootOptions, dbPath string) (*snapshot.Store, error) {
	if dbPath == "" {
		dbPath = rootOpts.config.SnapshotDB
	}
	if dbPath == "" {
		dbPath = "catagraph.db"
	}
	return snapshot.Open(dbPath)
}
