// Package util provides reflection helpers for turning tagged structs into
// column records.
package util

import (
	"errors"
	"reflect"
	"strings"
)

// parseDBTag returns the column name of a db tag. Options after the first
// comma are ignored, so "id,pk" maps to "id".
//
// Supported formats:
//   - "column"       -> column
//   - "column,opt"   -> column
//   - "-"            -> skip field
func parseDBTag(tag string) string {
	column, _, _ := strings.Cut(tag, ",")
	return strings.TrimSpace(column)
}

// StructToMap converts a struct to map[string]interface{} using db tags.
//
// Rules:
//   - Unexported fields are skipped.
//   - db:"-" fields are skipped.
//   - db:"column_name" maps to column_name.
//   - Fields without db tag use field name.
//   - Zero values are included.
//
// Returns error if:
//   - data is not a struct or *struct.
//   - data is nil pointer.
func StructToMap(data interface{}) (map[string]interface{}, error) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, errors.New("StructToMap: nil pointer")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil, errors.New("StructToMap: expected struct, got " + v.Kind().String())
	}

	t := v.Type()
	result := make(map[string]interface{})

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		dbName := field.Name
		if tag, ok := field.Tag.Lookup("db"); ok {
			column := parseDBTag(tag)
			if column == "-" {
				continue
			}
			if column != "" {
				dbName = column
			}
		}

		result[dbName] = v.Field(i).Interface()
	}

	return result, nil
}

// StructsToMaps converts a slice or array of structs (or struct pointers)
// with StructToMap. A single struct yields one record.
func StructsToMaps(rows interface{}) ([]map[string]interface{}, error) {
	v := reflect.ValueOf(rows)
	if v.Kind() == reflect.Ptr && !v.IsNil() && v.Elem().Kind() == reflect.Struct {
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		record, err := StructToMap(v.Interface())
		if err != nil {
			return nil, err
		}
		return []map[string]interface{}{record}, nil
	}

	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, errors.New("StructsToMaps: expected slice of structs, got " + v.Kind().String())
	}

	records := make([]map[string]interface{}, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		record, err := StructToMap(v.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
