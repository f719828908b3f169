package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finchdb/finch/internal/method"
	"github.com/finchdb/finch/internal/querysql"
)

// SQLResult holds a compiled statement and its bound parameters.
type SQLResult struct {
	Method string `json:"method"`
	Entity string `json:"entity"`
	SQL    string `json:"sql"`
	Params []any  `json:"params,omitempty"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		entityName string
		schemaDir  string
		argFlags   []string
	)

	cmd := &cobra.Command{
		Use:   "sql <method-name>",
		Short: "Show the SQL a derived method compiles to",
		Long: `Parse a method name against an entity from a schema directory and
print the parameterized SQL it compiles to, without touching a database.

Arguments bind with repeated --arg key=value flags; IN / NOT IN fields
take comma-separated lists.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(rootOpts, args[0], entityName, schemaDir, argFlags, cmd)
		},
	}

	cmd.Flags().StringVar(&entityName, "entity", "", "entity name from the schema directory (required)")
	cmd.Flags().StringVar(&schemaDir, "schemas", "", "schema directory (default from config)")
	cmd.Flags().StringArrayVar(&argFlags, "arg", nil, "bound argument, key=value (repeatable)")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

func runSQL(opts *RootOptions, name, entityName, schemaDir string, argFlags []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadSettings(opts, schemaDir, "", nil)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		_ = formatter.Error(ErrCodeSchemaLoad, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	ent, err := lookupEntity(reg, entityName)
	if err != nil {
		_ = formatter.Error(ErrCodeNoEntity, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	desc, err := method.Parse(name)
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	args, err := parseArgFlags(argFlags)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}

	filter, err := querysql.BuildFilter(desc, ent.ColumnsByField(), bindValues(desc, args))
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}
	query, params, err := querysql.CompileSelect(ent.Table, ent.Columns(), filter)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	result := SQLResult{Method: name, Entity: ent.Name, SQL: query, Params: params}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, result.SQL)
	if len(result.Params) > 0 {
		fmt.Fprintf(formatter.Writer, "params: %v\n", result.Params)
	}
	return nil
}
