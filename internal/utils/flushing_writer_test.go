package utils_test

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/promptctl/internal/utils"
)

var errFlushRejected = errors.New("flush rejected")

type rejectingFlusher struct {
	bytes.Buffer
}

func (flusher *rejectingFlusher) Flush() error {
	return errFlushRejected
}

func TestFlushingWriterFlushesBufferedWriters(testInstance *testing.T) {
	destination := &bytes.Buffer{}
	bufferedWriter := bufio.NewWriterSize(destination, 4096)

	flushingWriter := utils.NewFlushingWriter(bufferedWriter)
	_, writeError := flushingWriter.Write([]byte("Tagged v1.4.0\n"))
	require.NoError(testInstance, writeError)

	require.Equal(testInstance, "Tagged v1.4.0\n", destination.String())
	require.Same(testInstance, flushingWriter, utils.NewFlushingWriter(flushingWriter))
	require.Nil(testInstance, utils.NewFlushingWriter(nil))
}

func TestFlushingWriterTargets(testInstance *testing.T) {
	testCases := []struct {
		name          string
		target        io.Writer
		expectedError error
	}{
		{name: "plain_buffer", target: &bytes.Buffer{}},
		{name: "flush_failure", target: &rejectingFlusher{}, expectedError: errFlushRejected},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			written, writeError := utils.NewFlushingWriter(testCase.target).Write([]byte("push cancelled\n"))
			require.Equal(testInstance, len("push cancelled\n"), written)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, writeError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, writeError)
		})
	}
}
