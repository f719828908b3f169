package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(name, module, sourceFile string) EntityDescriptor {
	return EntityDescriptor{
		Name:       name,
		Module:     module,
		SourceFile: sourceFile,
		Table:      SnakeCase(name),
		Fields:     []Field{{Name: "id", Column: "id", IsPrimary: true, SQLType: SQLInteger}},
	}
}

func TestResolve_PrefersConfiguredModule(t *testing.T) {
	candidates := []EntityDescriptor{
		candidate("Foo", "other.foo", ""),
		candidate("Foo", "src.models.foo", ""),
	}

	result := Resolve(candidates, ResolveOptions{})

	require.Len(t, result, 1)
	assert.Equal(t, "src.models.foo", result[0].Module)
}

// Resolution is order-independent: the preferred module wins no matter
// which candidate is encountered first.
func TestResolve_PreferenceIsOrderIndependent(t *testing.T) {
	forward := Resolve([]EntityDescriptor{
		candidate("Foo", "src.models.foo", ""),
		candidate("Foo", "other.foo", ""),
	}, ResolveOptions{})
	backward := Resolve([]EntityDescriptor{
		candidate("Foo", "other.foo", ""),
		candidate("Foo", "src.models.foo", ""),
	}, ResolveOptions{})

	require.Len(t, forward, 1)
	require.Len(t, backward, 1)
	assert.Equal(t, forward[0].Module, backward[0].Module)
}

func TestResolve_TieKeepsFirstEncountered(t *testing.T) {
	candidates := []EntityDescriptor{
		candidate("Foo", "pkg.alpha", ""),
		candidate("Foo", "pkg.beta", ""),
	}

	result := Resolve(candidates, ResolveOptions{})

	require.Len(t, result, 1)
	assert.Equal(t, "pkg.alpha", result[0].Module)
}

func TestResolve_ExactDuplicateSkipped(t *testing.T) {
	candidates := []EntityDescriptor{
		candidate("Foo", "src.models", ""),
		candidate("Foo", "src.models", ""),
	}

	result := Resolve(candidates, ResolveOptions{})

	assert.Len(t, result, 1)
}

func TestResolve_RejectsWithoutTableIdentity(t *testing.T) {
	noTable := candidate("Ghost", "src.models", "")
	noTable.Table = ""

	result := Resolve([]EntityDescriptor{noTable}, ResolveOptions{})

	assert.Empty(t, result)
}

func TestResolve_SourceFilePatterns(t *testing.T) {
	opts := ResolveOptions{AcceptedFilePatterns: []string{"models.cue"}}

	accepted := candidate("Foo", "src.models", "models.cue")
	rejected := candidate("Bar", "src.models", "scratch.cue")
	// Unknown source file with a valid module: accepted with a warning.
	lenient := candidate("Baz", "src.models", "")

	result := Resolve([]EntityDescriptor{accepted, rejected, lenient}, opts)

	names := make([]string, len(result))
	for i, d := range result {
		names[i] = d.Name
	}
	assert.ElementsMatch(t, []string{"Foo", "Baz"}, names)
}

func TestResolve_GlobFilePatterns(t *testing.T) {
	opts := ResolveOptions{AcceptedFilePatterns: []string{"*.cue"}}

	ok := candidate("Foo", "src.models", "models.cue")
	bad := candidate("Bar", "src.models", "models.yaml")

	result := Resolve([]EntityDescriptor{ok, bad}, opts)

	require.Len(t, result, 1)
	assert.Equal(t, "Foo", result[0].Name)
}

func TestResolve_DistinctNamesAllKept(t *testing.T) {
	candidates := []EntityDescriptor{
		candidate("Foo", "src.models", ""),
		candidate("Bar", "src.models", ""),
		candidate("Qux", "other", ""),
	}

	result := Resolve(candidates, ResolveOptions{})

	assert.Len(t, result, 3)
	// Deterministic output order: sorted by qualified name.
	assert.Equal(t, "Qux", result[0].Name)
	assert.Equal(t, "Bar", result[1].Name)
	assert.Equal(t, "Foo", result[2].Name)
}

func TestResolve_CustomPreferredPrefixes(t *testing.T) {
	opts := ResolveOptions{PreferredModulePrefixes: []string{"internal.core"}}
	candidates := []EntityDescriptor{
		candidate("Foo", "src.models", ""),
		candidate("Foo", "internal.core.foo", ""),
	}

	result := Resolve(candidates, opts)

	require.Len(t, result, 1)
	assert.Equal(t, "internal.core.foo", result[0].Module)
}
