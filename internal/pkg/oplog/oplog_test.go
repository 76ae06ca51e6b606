package oplog

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/users333/faculty-registry/internal/pkg/filestorage"
	"github.com/users333/faculty-registry/internal/pkg/logger"
)

func fixedClock() time.Time {
	return time.Date(2024, time.October, 1, 12, 30, 45, 500000000, time.Local)
}

func openSink(t *testing.T) *FileSink {
	t.Helper()
	storage, err := filestorage.NewLocalStorage(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	sink, err := Open(storage, "log_operatii.txt", WithNow(fixedClock))
	require.NoError(t, err)
	return sink
}

func TestFileSink_WritesFlushedEntries(t *testing.T) {
	sink := openSink(t)

	require.NoError(t, sink.Record("Creata facultatea Engineering"))

	// flushed before Close
	b, err := os.ReadFile(sink.Path())
	require.NoError(t, err)
	assert.Equal(t, "2024-10-01T12:30:45.5 - Creata facultatea Engineering\n", string(b))

	require.NoError(t, sink.Close())
}

func TestFileSink_AppendsAcrossOpens(t *testing.T) {
	storage, err := filestorage.NewLocalStorage(t.TempDir(), logger.Nop())
	require.NoError(t, err)

	for _, msg := range []string{"first", "second"} {
		sink, err := Open(storage, "ops.log", WithNow(fixedClock))
		require.NoError(t, err)
		require.NoError(t, sink.Record(msg))
		require.NoError(t, sink.Close())
	}

	b, err := os.ReadFile(storage.Path("ops.log"))
	require.NoError(t, err)
	assert.Equal(t,
		"2024-10-01T12:30:45.5 - first\n2024-10-01T12:30:45.5 - second\n",
		string(b))
}

func TestFileSink_CloseOnce(t *testing.T) {
	sink := openSink(t)

	require.NoError(t, sink.Close())
	assert.True(t, errors.Is(sink.Close(), ErrClosed))
	assert.True(t, errors.Is(sink.Record("late"), ErrClosed))
}

func TestMemorySink(t *testing.T) {
	m := &MemorySink{}
	require.NoError(t, m.Record("a"))
	require.NoError(t, m.Record("b"))
	assert.Equal(t, []string{"a", "b"}, m.Entries())
	assert.Equal(t, "a\nb", m.String())

	m.Fail = errors.New("disk full")
	assert.Error(t, m.Record("c"))

	require.NoError(t, m.Close())
	assert.True(t, m.Closed())
	assert.ErrorIs(t, m.Close(), ErrClosed)
}
