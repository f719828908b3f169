package schema

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Lookups(t *testing.T) {
	user, err := Describe[User]()
	require.NoError(t, err)
	device, err := Describe[Device]()
	require.NoError(t, err)

	reg, err := NewRegistry([]EntityDescriptor{user, device})
	require.NoError(t, err)

	byName, ok := reg.ByName("User")
	require.True(t, ok)
	assert.Equal(t, "user", byName.Table)

	byTable, ok := reg.ByTable("devices")
	require.True(t, ok)
	assert.Equal(t, "Device", byTable.Name)

	byType, ok := reg.ByType(reflect.TypeOf(User{}))
	require.True(t, ok)
	assert.Equal(t, "User", byType.Name)

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Device", all[0].Name)
	assert.Equal(t, "User", all[1].Name)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	a := candidate("Foo", "src.models", "")
	b := candidate("Foo", "other", "")

	_, err := NewRegistry([]EntityDescriptor{a, b})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entity name")
}

func TestEntityDescriptor_Validate(t *testing.T) {
	valid := candidate("Foo", "src.models", "")
	require.NoError(t, valid.Validate())

	noFields := valid
	noFields.Fields = nil
	require.Error(t, noFields.Validate())

	twoPKs := candidate("Foo", "src.models", "")
	twoPKs.Fields = append(twoPKs.Fields, Field{Name: "alt", Column: "alt", IsPrimary: true, SQLType: SQLText})
	require.Error(t, twoPKs.Validate())

	dupColumns := candidate("Foo", "src.models", "")
	dupColumns.Fields = append(dupColumns.Fields, Field{Name: "id", Column: "id", SQLType: SQLText})
	require.Error(t, dupColumns.Validate())
}
