package utils_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/miloslab/labops/internal/utils"
)

const flushingWriterPayloadConstant = "Sessions: 3 total, 1 cron\n"

type flushRecordingWriter struct {
	buffer     bytes.Buffer
	flushCount int
}

func (writer *flushRecordingWriter) Write(data []byte) (int, error) {
	return writer.buffer.Write(data)
}

func (writer *flushRecordingWriter) Flush() error {
	writer.flushCount++
	return nil
}

func TestNewFlushingWriterHandlesNilWriter(testInstance *testing.T) {
	require.Nil(testInstance, utils.NewFlushingWriter(nil))
}

func TestFlushingWriterFlushesAfterEachWrite(testInstance *testing.T) {
	recordingWriter := &flushRecordingWriter{}
	flushingWriter := utils.NewFlushingWriter(recordingWriter)

	bytesWritten, writeError := flushingWriter.Write([]byte(flushingWriterPayloadConstant))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, len(flushingWriterPayloadConstant), bytesWritten)
	require.Equal(testInstance, flushingWriterPayloadConstant, recordingWriter.buffer.String())
	require.Equal(testInstance, 1, recordingWriter.flushCount)
}

func TestNewFlushingWriterAvoidsDoubleWrapping(testInstance *testing.T) {
	recordingWriter := &flushRecordingWriter{}
	flushingWriter := utils.NewFlushingWriter(recordingWriter)
	require.Same(testInstance, flushingWriter, utils.NewFlushingWriter(flushingWriter))
}

func TestFlushingWriterPassesThroughPlainWriters(testInstance *testing.T) {
	var plainBuffer bytes.Buffer
	flushingWriter := utils.NewFlushingWriter(&plainBuffer)

	_, writeError := flushingWriter.Write([]byte(flushingWriterPayloadConstant))
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, flushingWriterPayloadConstant, plainBuffer.String())
}
