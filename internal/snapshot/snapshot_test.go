package snapshot_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streampref/streampref/internal/snapshot"
	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/value"
)

func TestPutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sink, err := snapshot.Open(filepath.Join(dir, "snap"))
	require.NoError(t, err)
	defer sink.Close()

	a := record.NewAttribute("a")
	rec := record.NewBuffer().Add(a, value.NewInteger(1))

	require.NoError(t, sink.Put("q1", 5, []record.Record{rec}))

	rows, err := sink.Get("q1", 5)
	require.NoError(t, err)
	require.Equal(t, []string{`a="1"`}, rows)

	rows, err = sink.Get("q1", 6)
	require.NoError(t, err)
	require.Empty(t, rows)
}
