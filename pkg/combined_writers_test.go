package pkg

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write(_ []byte) (int, error) {
	return 0, errors.New("write failed")
}

func TestCombinedWriter(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	cw := NewCombinedWriter(&buf1, &buf2)

	n, err := cw.Write([]byte("ohai"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "ohai", buf1.String())
	assert.Equal(t, "ohai", buf2.String())
}

func TestCombinedWriter_OneWriterFails(t *testing.T) {
	var buf bytes.Buffer
	cw := NewCombinedWriter(&buf, failingWriter{})

	n, err := cw.Write([]byte("ohai"))
	require.Error(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "ohai", buf.String())
}
