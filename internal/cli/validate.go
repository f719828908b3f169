package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finchdb/finch/internal/schema"
)

// EntityReport describes one resolved entity.
type EntityReport struct {
	Name   string `json:"name"`
	Module string `json:"module,omitempty"`
	Table  string `json:"table"`
	Fields int    `json:"fields"`
}

// ValidationResult holds the outcome of validating a schema directory.
type ValidationResult struct {
	Valid    bool           `json:"valid"`
	Entities []EntityReport `json:"entities,omitempty"`
	Errors   []string       `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var prefixes []string

	cmd := &cobra.Command{
		Use:   "validate <schemas-dir>",
		Short: "Validate a schema directory",
		Long: `Load every entity declaration in a schema directory, resolve
duplicate registrations and report the resulting entity set.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], prefixes, cmd)
		},
	}

	cmd.Flags().StringArrayVar(&prefixes, "prefer", nil, "preferred module prefix for duplicate resolution (repeatable)")

	return cmd
}

func runValidate(opts *RootOptions, schemaDir string, prefixes []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadSettings(opts, schemaDir, "", prefixes)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	descs, err := schema.LoadDir(cfg.SchemaDir)
	if err != nil {
		_ = formatter.Error(ErrCodeSchemaLoad, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	formatter.VerboseLog("Loaded %d entity declaration(s) from %s", len(descs), cfg.SchemaDir)

	if cfg.PreventDuplicateImports {
		descs = schema.Resolve(descs, schema.ResolveOptions{
			AcceptedFilePatterns:    cfg.SchemaPatterns,
			PreferredModulePrefixes: cfg.PreferredModulePrefixes,
		})
	}
	reg, err := schema.NewRegistry(descs)
	if err != nil {
		result := ValidationResult{Valid: false, Errors: []string{err.Error()}}
		if formatter.Format == "json" {
			_ = formatter.Success(result)
		} else {
			fmt.Fprintf(formatter.Writer, "✗ Validation failed\n\n  %s\n", err.Error())
		}
		return NewExitError(ExitFailure, err.Error())
	}

	result := ValidationResult{Valid: true}
	for _, ent := range reg.All() {
		result.Entities = append(result.Entities, EntityReport{
			Name:   ent.Name,
			Module: ent.Module,
			Table:  ent.Table,
			Fields: len(ent.Fields),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %d entity(ies) valid\n", len(result.Entities))
	for _, ent := range result.Entities {
		fmt.Fprintf(formatter.Writer, "  %s -> table %s (%d fields)\n", ent.Name, ent.Table, ent.Fields)
	}
	return nil
}
