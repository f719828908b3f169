package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// TableNamer lets an entity struct override its derived table name.
type TableNamer interface {
	TableName() string
}

var (
	uuidType = reflect.TypeOf(uuid.UUID{})
	timeType = reflect.TypeOf(time.Time{})
)

// Describe reflects a tagged entity struct into an EntityDescriptor.
//
// Exported fields become persistent fields. The `db` tag overrides the
// column name (default: snake_case of the Go name) and `pk` marks the
// primary key; a tag of "-" excludes the field. Without an explicit pk
// tag, a column named "id" is taken as the primary key.
//
//	type User struct {
//		ID     int64  `db:"id,pk"`
//		Name   string `db:"name"`
//		Age    int    `db:"age"`
//		Status string `db:"status"`
//	}
func Describe[T any]() (EntityDescriptor, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return EntityDescriptor{}, fmt.Errorf("entity type must be a struct, got %s", t.Kind())
	}

	desc := EntityDescriptor{
		Name:   t.Name(),
		Module: t.PkgPath(),
		Table:  SnakeCase(t.Name()),
		GoType: t,
	}

	var zero T
	if tn, ok := any(zero).(TableNamer); ok {
		desc.Table = tn.TableName()
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}

		column := SnakeCase(sf.Name)
		primary := false
		if tag, ok := sf.Tag.Lookup("db"); ok {
			parts := strings.Split(tag, ",")
			if parts[0] == "-" {
				continue
			}
			if parts[0] != "" {
				column = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "pk" {
					primary = true
				}
			}
		}

		sqlType, nullable := sqlTypeFor(sf.Type)
		desc.Fields = append(desc.Fields, Field{
			Name:      column,
			Column:    column,
			IsPrimary: primary,
			Index:     i,
			Type:      sf.Type,
			SQLType:   sqlType,
			Nullable:  nullable,
		})
	}

	if _, err := desc.PrimaryKey(); err != nil {
		// No explicit pk tag: fall back to a column named "id".
		for i, f := range desc.Fields {
			if f.Column == "id" {
				desc.Fields[i].IsPrimary = true
				break
			}
		}
	}

	if err := desc.Validate(); err != nil {
		return EntityDescriptor{}, err
	}
	return desc, nil
}

// sqlTypeFor maps a Go type to a SQLite column affinity.
func sqlTypeFor(t reflect.Type) (sqlType string, nullable bool) {
	if t.Kind() == reflect.Pointer {
		inner, _ := sqlTypeFor(t.Elem())
		return inner, true
	}
	switch t {
	case uuidType:
		return SQLText, false
	case timeType:
		return SQLTimestamp, false
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return SQLInteger, false
	case reflect.Float32, reflect.Float64:
		return SQLReal, false
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return SQLBlob, false
		}
	}
	return SQLText, false
}

// SnakeCase converts a Go identifier to snake_case: "CreatedOn" becomes
// "created_on", "UserID" becomes "user_id".
func SnakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			boundary := i > 0 &&
				(unicode.IsLower(runes[i-1]) ||
					(i+1 < len(runes) && unicode.IsLower(runes[i+1])))
			if boundary {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
