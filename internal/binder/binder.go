// Package binder installs implementations for declared repository
// methods at boot: derived methods are parsed against the naming
// grammar and validated against their entity, raw-SQL methods are
// registered as-is. Binding failures are fatal and prevent startup.
package binder

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/finchdb/finch/internal/method"
	"github.com/finchdb/finch/internal/querysql"
	"github.com/finchdb/finch/internal/schema"
)

// MethodSpec declares one derived query method: its name and the
// parameter names of its signature.
type MethodSpec struct {
	Name   string
	Params []string
}

// RawSpec declares a hand-written SQL method. Raw methods skip name
// derivation entirely.
type RawSpec struct {
	Name      string
	SQL       string
	Modifying bool
}

// Binding is the installed implementation of one derived method.
type Binding struct {
	// Desc is the parsed method descriptor.
	Desc method.Descriptor

	// ParamToField maps each signature parameter to the entity field it
	// binds.
	ParamToField map[string]string
}

// RawBinding is the installed implementation of one raw-SQL method.
type RawBinding struct {
	SQL       string
	Modifying bool
}

// Table is the per-repository dispatch table produced by Bind. It is
// plain data: callers look bindings up and execute them through the
// engine with their own entity typing.
type Table struct {
	repository string
	bindings   map[string]Binding
	raws       map[string]RawBinding
}

// Repository returns the repository name the table was bound for.
func (t *Table) Repository() string {
	return t.repository
}

// Lookup returns the derived-method binding for name.
func (t *Table) Lookup(name string) (Binding, bool) {
	b, ok := t.bindings[name]
	return b, ok
}

// LookupRaw returns the raw-SQL binding for name.
func (t *Table) LookupRaw(name string) (RawBinding, bool) {
	r, ok := t.raws[name]
	return r, ok
}

// Methods returns every bound method name, sorted, for diagnostics.
func (t *Table) Methods() []string {
	names := make([]string, 0, len(t.bindings)+len(t.raws))
	for name := range t.bindings {
		names = append(names, name)
	}
	for name := range t.raws {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// reservedNames is the base CRUD contract. Those methods are provided by
// the repository itself and cannot be re-declared as derived methods.
var reservedNames = map[string]bool{
	"find_by_id":        true,
	"find_all":          true,
	"find_all_by_ids":   true,
	"save":              true,
	"save_all":          true,
	"delete":            true,
	"delete_by_id":      true,
	"delete_all":        true,
	"delete_all_by_ids": true,
	"upsert":            true,
}

// Bind builds the dispatch table for one repository. Names listed in
// skip are left unbound; raw specs never go through derivation. Any
// failure is fatal: a repository with one bad method does not bind at
// all.
func Bind(repository string, ent *schema.EntityDescriptor, methods []MethodSpec, raws []RawSpec, skip ...string) (*Table, error) {
	log := slog.With("component", "binder", "repository", repository)
	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[name] = true
	}

	table := &Table{
		repository: repository,
		bindings:   make(map[string]Binding, len(methods)),
		raws:       make(map[string]RawBinding, len(raws)),
	}

	for _, raw := range raws {
		if raw.Name == "" || raw.SQL == "" {
			return nil, fmt.Errorf("repository %s: raw method needs a name and SQL", repository)
		}
		if _, dup := table.raws[raw.Name]; dup {
			return nil, fmt.Errorf("repository %s: raw method %q declared twice", repository, raw.Name)
		}
		table.raws[raw.Name] = RawBinding{SQL: raw.SQL, Modifying: raw.Modifying}
		log.Debug("raw method bound", "method", raw.Name, "modifying", raw.Modifying)
	}

	for _, spec := range methods {
		if skipped[spec.Name] {
			log.Debug("method skipped by marker", "method", spec.Name)
			continue
		}
		if _, isRaw := table.raws[spec.Name]; isRaw {
			return nil, fmt.Errorf("repository %s: method %q declared both derived and raw", repository, spec.Name)
		}
		if reservedNames[spec.Name] {
			return nil, &BindError{
				Code:       ErrCodeInvalidSignature,
				Repository: repository,
				Method:     spec.Name,
				Message:    "name is part of the base contract and cannot be re-declared",
			}
		}
		if _, dup := table.bindings[spec.Name]; dup {
			return nil, fmt.Errorf("repository %s: method %q declared twice", repository, spec.Name)
		}

		binding, err := bindMethod(repository, ent, spec)
		if err != nil {
			return nil, err
		}
		table.bindings[spec.Name] = binding
		log.Debug("derived method bound",
			"method", spec.Name,
			"fields", binding.Desc.RequiredFields,
			"single", binding.Desc.IsSingleResult)
	}

	return table, nil
}

// bindMethod parses and validates one derived method spec.
func bindMethod(repository string, ent *schema.EntityDescriptor, spec MethodSpec) (Binding, error) {
	desc, err := method.Parse(spec.Name)
	if err != nil {
		return Binding{}, err
	}

	required := make(map[string]bool, len(desc.RequiredFields))
	for _, field := range desc.RequiredFields {
		if _, ok := ent.FieldByName(field); !ok {
			return Binding{}, &BindError{
				Code:       ErrCodeInvalidSignature,
				Repository: repository,
				Method:     spec.Name,
				Message:    fmt.Sprintf("method requires field %q which entity %s does not declare", field, ent.Name),
			}
		}
		required[field] = true
	}

	if len(spec.Params) != len(required) {
		return Binding{}, &BindError{
			Code:       ErrCodeInvalidSignature,
			Repository: repository,
			Method:     spec.Name,
			Message: fmt.Sprintf("method requires %d distinct fields but the signature declares %d parameters",
				len(required), len(spec.Params)),
		}
	}

	paramToField := make(map[string]string, len(spec.Params))
	bound := make(map[string]string, len(spec.Params))
	for _, param := range spec.Params {
		param = norm.NFC.String(param)
		field, err := resolveParam(repository, spec.Name, param, required)
		if err != nil {
			return Binding{}, err
		}
		if prior, taken := bound[field]; taken {
			return Binding{}, &BindError{
				Code:       ErrCodeInvalidSignature,
				Repository: repository,
				Method:     spec.Name,
				Message:    fmt.Sprintf("parameters %q and %q both bind field %q", prior, param, field),
			}
		}
		bound[field] = param
		paramToField[param] = field
	}

	// Counts match and every parameter binds a distinct required field,
	// so the field sets are equal here.
	return Binding{Desc: desc, ParamToField: paramToField}, nil
}

// resolveParam maps a signature parameter name to exactly one required
// field: an exact match wins, otherwise simple plural forms are
// accepted (trailing "s", "ies" to "y", "ses" to "s").
func resolveParam(repository, methodName, param string, required map[string]bool) (string, error) {
	if required[param] {
		return param, nil
	}

	var matches []string
	for _, cand := range singularForms(param) {
		if required[cand] {
			matches = append(matches, cand)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", &BindError{
			Code:       ErrCodeAmbiguousParameter,
			Repository: repository,
			Method:     methodName,
			Message:    fmt.Sprintf("parameter %q does not map to any required field", param),
		}
	default:
		sort.Strings(matches)
		return "", &BindError{
			Code:       ErrCodeAmbiguousParameter,
			Repository: repository,
			Method:     methodName,
			Message:    fmt.Sprintf("parameter %q maps to multiple fields: %s", param, strings.Join(matches, ", ")),
		}
	}
}

// singularForms lists the field names a plural parameter could stand
// for, most specific first.
func singularForms(param string) []string {
	var forms []string
	if strings.HasSuffix(param, "ies") {
		forms = append(forms, strings.TrimSuffix(param, "ies")+"y")
	}
	if strings.HasSuffix(param, "ses") {
		forms = append(forms, strings.TrimSuffix(param, "es"))
	}
	if strings.HasSuffix(param, "s") {
		forms = append(forms, strings.TrimSuffix(param, "s"))
	}
	return forms
}

// MapArgs translates caller arguments keyed by parameter name into
// values keyed by field name. Missing or extra arguments fail with an
// ArgumentError, matching the engine's call-time error taxonomy.
func (b Binding) MapArgs(args map[string]any) (map[string]any, error) {
	values := make(map[string]any, len(b.ParamToField))
	for param, field := range b.ParamToField {
		value, ok := args[param]
		if !ok {
			return nil, &querysql.ArgumentError{
				Code:    querysql.ErrCodeInvalidArgument,
				Field:   param,
				Message: "missing argument",
			}
		}
		values[field] = value
	}
	for name := range args {
		if _, ok := b.ParamToField[name]; !ok {
			return nil, &querysql.ArgumentError{
				Code:    querysql.ErrCodeInvalidArgument,
				Field:   name,
				Message: "argument does not match any declared parameter",
			}
		}
	}
	return values, nil
}
