package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finchdb/finch/internal/method"
)

// ParsedCondition is one field condition of a parsed method name.
type ParsedCondition struct {
	Field     string `json:"field"`
	Operation string `json:"operation"`
}

// ParseResult holds the breakdown of a derived method name.
type ParseResult struct {
	Method     string            `json:"method"`
	Single     bool              `json:"single_result"`
	Conditions []ParsedCondition `json:"conditions"`
	Connectors []string          `json:"connectors,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <method-name>",
		Short: "Parse a derived method name",
		Long: `Parse a repository method name against the naming grammar and show
the derived query structure: fields, operations and connectors.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runParse(opts *RootOptions, name string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	desc, err := method.Parse(name)
	if err != nil {
		_ = formatter.Error(errorCode(err), err.Error(), nil)
		return NewExitError(ExitFailure, err.Error())
	}

	result := parseResult(name, desc)
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	arity := "list"
	if result.Single {
		arity = "single"
	}
	fmt.Fprintf(formatter.Writer, "method: %s\nresult: %s\n", result.Method, arity)
	for i, cond := range result.Conditions {
		if i > 0 {
			fmt.Fprintf(formatter.Writer, "  %s\n", result.Connectors[i-1])
		}
		fmt.Fprintf(formatter.Writer, "  %s %s ?\n", cond.Field, cond.Operation)
	}
	return nil
}

func parseResult(name string, desc method.Descriptor) ParseResult {
	result := ParseResult{
		Method: name,
		Single: desc.IsSingleResult,
	}
	for _, field := range desc.RequiredFields {
		result.Conditions = append(result.Conditions, ParsedCondition{
			Field:     field,
			Operation: string(desc.Operation(field)),
		})
	}
	for _, conn := range desc.Connectors {
		switch conn {
		case method.ConnectorAnd:
			result.Connectors = append(result.Connectors, "and")
		case method.ConnectorOr:
			result.Connectors = append(result.Connectors, "or")
		}
	}
	return result
}
