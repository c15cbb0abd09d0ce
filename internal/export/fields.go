package export

import (
	"reflect"
	"strings"
)

func structFields(t any) []reflect.StructField {
	typeOf := reflect.TypeOf(t)
	result := make([]reflect.StructField, 0, typeOf.NumField())
	for i := 0; i < typeOf.NumField(); i++ {
		result = append(result, typeOf.Field(i))
	}
	return result
}

// parquetTagToKeyValue splits "name=id, type=INT32" into its properties.
func parquetTagToKeyValue(tag string) map[string]string {
	result := make(map[string]string)
	for _, entry := range strings.Split(tag, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(entry), "=")
		if !found {
			continue
		}
		result[key] = value
	}
	return result
}
