package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/finchdb/finch/internal/binder"
	"github.com/finchdb/finch/internal/config"
	"github.com/finchdb/finch/internal/method"
	"github.com/finchdb/finch/internal/querysql"
	"github.com/finchdb/finch/internal/schema"
)

// errorCode maps a domain error to its taxonomy code for CLI output.
func errorCode(err error) string {
	var pe *method.ParseError
	if errors.As(err, &pe) {
		return string(pe.Code)
	}
	var ae *querysql.ArgumentError
	if errors.As(err, &ae) {
		return string(ae.Code)
	}
	var be *binder.BindError
	if errors.As(err, &be) {
		return string(be.Code)
	}
	return ErrCodeGeneric
}

// loadSettings loads the boot configuration and overlays any explicit
// flag values on top of it.
func loadSettings(opts *RootOptions, schemaDir, dbURI string, prefixes []string) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if schemaDir != "" {
		cfg.SchemaDir = schemaDir
	}
	if dbURI != "" {
		cfg.DatabaseURI = dbURI
	}
	if len(prefixes) > 0 {
		cfg.PreferredModulePrefixes = prefixes
	}
	return cfg, nil
}

// loadRegistry loads the configured schema directory and builds the
// entity registry. With duplicate prevention on, conflicting
// registrations are resolved by module priority first; with it off they
// surface as registry errors.
func loadRegistry(cfg config.Config) (*schema.Registry, error) {
	descs, err := schema.LoadDir(cfg.SchemaDir)
	if err != nil {
		return nil, err
	}
	if cfg.PreventDuplicateImports {
		descs = schema.Resolve(descs, schema.ResolveOptions{
			AcceptedFilePatterns:    cfg.SchemaPatterns,
			PreferredModulePrefixes: cfg.PreferredModulePrefixes,
		})
	}
	return schema.NewRegistry(descs)
}

// lookupEntity finds one entity in a loaded registry by name.
func lookupEntity(reg *schema.Registry, name string) (*schema.EntityDescriptor, error) {
	ent, ok := reg.ByName(name)
	if !ok {
		names := make([]string, 0, len(reg.All()))
		for _, d := range reg.All() {
			names = append(names, d.Name)
		}
		return nil, fmt.Errorf("no entity %q in schema directory (have: %s)",
			name, strings.Join(names, ", "))
	}
	return ent, nil
}

// parseArgFlags turns repeated key=value flags into a map.
func parseArgFlags(flags []string) (map[string]string, error) {
	args := make(map[string]string, len(flags))
	for _, flag := range flags {
		key, value, found := strings.Cut(flag, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", flag)
		}
		args[key] = value
	}
	return args, nil
}

// bindValues shapes raw string arguments for a parsed descriptor:
// IN / NOT IN fields are split on commas into slices, everything else
// binds as-is. Unknown keys pass through so the filter builder can
// reject them with a proper error.
func bindValues(desc method.Descriptor, args map[string]string) map[string]any {
	values := make(map[string]any, len(args))
	required := make(map[string]bool, len(desc.RequiredFields))
	for _, field := range desc.RequiredFields {
		required[field] = true
	}
	for key, raw := range args {
		if !required[key] {
			values[key] = raw
			continue
		}
		switch desc.Operation(key) {
		case method.OpIn, method.OpNotIn:
			if raw == "" {
				values[key] = []any{}
				continue
			}
			parts := strings.Split(raw, ",")
			elems := make([]any, len(parts))
			for i, p := range parts {
				elems[i] = p
			}
			values[key] = elems
		default:
			values[key] = raw
		}
	}
	return values
}
