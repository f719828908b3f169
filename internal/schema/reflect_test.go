package schema

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type User struct {
	ID     int64  `db:"id,pk"`
	Name   string `db:"name"`
	Age    int    `db:"age"`
	Status string `db:"status"`
}

type Device struct {
	Token    uuid.UUID `db:"token,pk"`
	Label    string    `db:"label"`
	SeenAt   time.Time `db:"seen_at"`
	Payload  []byte    `db:"payload"`
	Battery  float64   `db:"battery"`
	Disabled bool      `db:"disabled"`
	Comment  *string   `db:"comment"`
	Skipped  string    `db:"-"`
}

func (Device) TableName() string { return "devices" }

func TestDescribe_Basic(t *testing.T) {
	desc, err := Describe[User]()
	require.NoError(t, err)

	assert.Equal(t, "User", desc.Name)
	assert.Equal(t, "user", desc.Table)
	assert.Equal(t, []string{"id", "name", "age", "status"}, desc.Columns())

	pk, err := desc.PrimaryKey()
	require.NoError(t, err)
	assert.Equal(t, "id", pk.Column)
}

func TestDescribe_TableNameOverrideAndTypes(t *testing.T) {
	desc, err := Describe[Device]()
	require.NoError(t, err)

	assert.Equal(t, "devices", desc.Table)
	assert.Equal(t, []string{"token", "label", "seen_at", "payload", "battery", "disabled", "comment"}, desc.Columns())

	expect := map[string]string{
		"token":    SQLText,
		"label":    SQLText,
		"seen_at":  SQLTimestamp,
		"payload":  SQLBlob,
		"battery":  SQLReal,
		"disabled": SQLInteger,
		"comment":  SQLText,
	}
	for column, sqlType := range expect {
		f, ok := desc.FieldByColumn(column)
		require.True(t, ok, "missing column %s", column)
		assert.Equal(t, sqlType, f.SQLType, "column %s", column)
	}

	comment, _ := desc.FieldByColumn("comment")
	assert.True(t, comment.Nullable)
	label, _ := desc.FieldByColumn("label")
	assert.False(t, label.Nullable)
}

func TestDescribe_ImplicitIDPrimaryKey(t *testing.T) {
	type Widget struct {
		ID   int64  `db:"id"`
		Name string `db:"name"`
	}

	desc, err := Describe[Widget]()
	require.NoError(t, err)

	pk, err := desc.PrimaryKey()
	require.NoError(t, err)
	assert.Equal(t, "id", pk.Column)
}

func TestDescribe_UntaggedFieldsUseSnakeCase(t *testing.T) {
	type AuditEntry struct {
		ID        int64 `db:"id,pk"`
		CreatedOn time.Time
		UserID    int64
	}

	desc, err := Describe[AuditEntry]()
	require.NoError(t, err)

	assert.Equal(t, "audit_entry", desc.Table)
	assert.Equal(t, []string{"id", "created_on", "user_id"}, desc.Columns())
}

func TestDescribe_RejectsOperationSuffixCollision(t *testing.T) {
	type Payroll struct {
		ID      int64 `db:"id,pk"`
		BonusIn int64 `db:"bonus_in"`
	}

	_, err := Describe[Payroll]()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved operation suffix")
}

func TestDescribe_NonStruct(t *testing.T) {
	_, err := Describe[int]()
	require.Error(t, err)
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"User":      "user",
		"CreatedOn": "created_on",
		"UserID":    "user_id",
		"ID":        "id",
		"HTTPCode":  "http_code",
		"name":      "name",
	}
	for in, want := range tests {
		assert.Equal(t, want, SnakeCase(in), "input %q", in)
	}
}
