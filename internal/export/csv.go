package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"reflect"
)

type CSVWriter struct {
	buffer *bytes.Buffer
	writer *csv.Writer
	fields []reflect.StructField
}

func NewCSVWriter() *CSVWriter {
	buf := new(bytes.Buffer)
	return &CSVWriter{
		buffer: buf,
		writer: csv.NewWriter(buf),
		fields: structFields(SpeciesRow{}),
	}
}

// WriteHeader writes the parquet column names so both snapshots line up
func (w *CSVWriter) WriteHeader() error {
	names := make([]string, 0, len(w.fields))
	for _, field := range w.fields {
		properties := parquetTagToKeyValue(field.Tag.Get("parquet"))
		names = append(names, properties["name"])
	}
	return w.writer.Write(names)
}

func (w *CSVWriter) Write(row SpeciesRow) error {
	value := reflect.ValueOf(row)
	converted := make([]string, 0, len(w.fields))
	for _, field := range w.fields {
		converted = append(converted, fmt.Sprint(value.FieldByName(field.Name).Interface()))
	}
	return w.writer.Write(converted)
}

func (w *CSVWriter) Finish() error {
	w.writer.Flush()
	return w.writer.Error()
}

func (w *CSVWriter) Bytes() []byte {
	return w.buffer.Bytes()
}
