package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finchdb/finch/internal/engine"
	"github.com/finchdb/finch/internal/method"
	"github.com/finchdb/finch/internal/session"
	"github.com/finchdb/finch/internal/store"
)

// QueryResult holds the rows returned by a derived query.
type QueryResult struct {
	Method string           `json:"method"`
	Entity string           `json:"entity"`
	Count  int              `json:"count"`
	Rows   []map[string]any `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		entityName string
		schemaDir  string
		dbURI      string
		argFlags   []string
	)

	cmd := &cobra.Command{
		Use:   "query <method-name>",
		Short: "Run a derived query against a database",
		Long: `Parse a method name against an entity, compile it and run it
against the given database, printing the matching rows.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, args[0], entityName, schemaDir, dbURI, argFlags, cmd)
		},
	}

	cmd.Flags().StringVar(&entityName, "entity", "", "entity name from the schema directory (required)")
	cmd.Flags().StringVar(&schemaDir, "schemas", "", "schema directory (default from config)")
	cmd.Flags().StringVar(&dbURI, "db", "", "database location, path or sqlite3:// URI (default from config)")
	cmd.Flags().StringArrayVar(&argFlags, "arg", nil, "bound argument, key=value (repeatable)")
	_ = cmd.MarkFlagRequired("entity")

	return cmd
}

func runQuery(opts *RootOptions, name, entityName, schemaDir, dbURI string, argFlags []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadSettings(opts, schemaDir, dbURI, nil)
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

	st, err := store.OpenURI(cfg.DatabaseURI)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return NewExitError(ExitCommandError, err.Error())
	}
	defer st.Close()

	if cfg.EagerCreateTables {
		if err := st.CreateTables(cmd.Context(), reg.All()); err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
	}

	exec := engine.New(session.NewManager(st.DB()))
	rows, err := exec.FindMaps(cmd.Context(), ent, desc, bindValues(desc, args))
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}
	if desc.IsSingleResult && len(rows) > 1 {
		rows = rows[:1]
	}

	result := QueryResult{Method: name, Entity: ent.Name, Count: len(rows), Rows: rows}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%d row(s)\n", result.Count)
	columns := ent.Columns()
	sort.Strings(columns)
	for _, row := range rows {
		parts := make([]string, 0, len(columns))
		for _, col := range columns {
			parts = append(parts, fmt.Sprintf("%s=%v", col, row[col]))
		}
		fmt.Fprintf(formatter.Writer, "  %s\n", strings.Join(parts, " "))
	}
	return nil
}
