package schema

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPreferredModulePrefixes score a module higher during
// same-simple-name conflict resolution.
var DefaultPreferredModulePrefixes = []string{"src.", "models"}

// ResolveOptions configures duplicate resolution.
type ResolveOptions struct {
	// AcceptedFilePatterns lists the schema/model file base names a
	// candidate may come from, as exact names or glob patterns. A
	// candidate whose SourceFile is known but matches no pattern is
	// rejected; an unknown SourceFile on an otherwise valid candidate is
	// accepted with a warning (deliberate leniency).
	AcceptedFilePatterns []string

	// PreferredModulePrefixes override the default preference list.
	PreferredModulePrefixes []string

	// Log overrides the package logger. Resolution decisions are logged,
	// never raised: duplicate handling is best-effort hygiene.
	Log *slog.Logger
}

// Resolve deduplicates candidate entity descriptors.
//
// Guarantees of the result: no two descriptors share a simple name, and
// exact qualified-name duplicates are collapsed. Same-simple-name
// conflicts across modules are resolved by module-priority score; ties
// keep the already-registered entry (encounter order wins on tie). The
// result is sorted by qualified name so downstream registry construction
// is deterministic regardless of input order.
func Resolve(candidates []EntityDescriptor, opts ResolveOptions) []EntityDescriptor {
	log := opts.Log
	if log == nil {
		log = slog.With("component", "schema")
	}
	prefixes := opts.PreferredModulePrefixes
	if len(prefixes) == 0 {
		prefixes = DefaultPreferredModulePrefixes
	}
	registry := make(map[string]EntityDescriptor)
	for _, candidate := range candidates {
		if !isValidCandidate(candidate, opts.AcceptedFilePatterns, log) {
			continue
		}

		qualified := candidate.QualifiedName()
		if _, exists := registry[qualified]; exists {
			log.Warn("exact duplicate registration skipped", "entity", qualified)
			continue
		}

		existingKey, existing, found := findBySimpleName(registry, candidate.Name)
		if !found {
			registry[qualified] = candidate
			log.Debug("entity registered", "entity", qualified)
			continue
		}

		newPriority := modulePriority(candidate.Module, prefixes)
		existingPriority := modulePriority(existing.Module, prefixes)
		if newPriority > existingPriority {
			delete(registry, existingKey)
			registry[qualified] = candidate
			log.Info("duplicate entity name resolved, replacing",
				"entity", candidate.Name,
				"kept", candidate.Module,
				"discarded", existing.Module)
		} else {
			log.Warn("duplicate entity name resolved, keeping existing",
				"entity", candidate.Name,
				"kept", existing.Module,
				"discarded", candidate.Module)
		}
	}

	result := make([]EntityDescriptor, 0, len(registry))
	for _, desc := range registry {
		result = append(result, desc)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].QualifiedName() < result[j].QualifiedName()
	})
	return result
}

// isValidCandidate applies the rejection rules: a candidate needs a
// persistent-table identity and must be attributable to an accepted
// source file. A missing source file on a candidate with a module is
// tolerated with a warning.
func isValidCandidate(candidate EntityDescriptor, patterns []string, log *slog.Logger) bool {
	if candidate.Table == "" {
		log.Debug("candidate rejected, no table identity", "entity", candidate.Name)
		return false
	}
	if candidate.SourceFile == "" {
		if candidate.Module != "" {
			log.Warn("candidate has no source file, accepting by module",
				"entity", candidate.Name, "module", candidate.Module)
			return true
		}
		log.Warn("candidate rejected, no source file and no module", "entity", candidate.Name)
		return false
	}
	if len(patterns) > 0 && !matchesAny(candidate.SourceFile, patterns) {
		log.Debug("candidate rejected, source file not accepted",
			"entity", candidate.Name, "source_file", candidate.SourceFile)
		return false
	}
	return true
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func findBySimpleName(registry map[string]EntityDescriptor, name string) (string, EntityDescriptor, bool) {
	for key, desc := range registry {
		if desc.Name == name {
			return key, desc, true
		}
	}
	return "", EntityDescriptor{}, false
}

// modulePriority scores a module for conflict resolution. Higher wins.
func modulePriority(module string, prefixes []string) int {
	for _, prefix := range prefixes {
		if strings.HasPrefix(module, prefix) || module == prefix {
			return 2
		}
	}
	return 1
}
