package export

import (
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/writer"
)

const initialCapacity = 1024 * 1024

type ParquetWriter struct {
	buffer *buffer.BufferFile
	writer *writer.ParquetWriter
}

func NewParquetWriter() (*ParquetWriter, error) {
	bufferFile := buffer.NewBufferFileCapacity(initialCapacity)
	w, err := writer.NewParquetWriter(bufferFile, new(SpeciesRow), 1)
	if err != nil {
		return nil, err
	}
	return &ParquetWriter{
		buffer: bufferFile,
		writer: w,
	}, nil
}

func (w *ParquetWriter) Write(row SpeciesRow) error {
	return w.writer.Write(&row)
}

// Finish writes the footer. The writer must not be used afterwards.
func (w *ParquetWriter) Finish() error {
	return w.writer.WriteStop()
}

func (w *ParquetWriter) Bytes() []byte {
	return w.buffer.Bytes()
}
