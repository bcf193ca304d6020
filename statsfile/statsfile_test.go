package statsfile_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streampref/streampref/statsfile"
)

func TestWriteTickHeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	w := statsfile.New(&buf)

	require.NoError(t, w.WriteTick(0, []int{2, 4}, 3, []int{4}))
	require.NoError(t, w.WriteTick(1, nil, 0, nil))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "timestamp,in,in_min,in_max,in_avg,comp,out,out_min,out_max,out_avg", lines[0])
	require.Equal(t, "0,2,2,4,3.0000,3,1,4,4,4.0000", lines[1])
	require.Equal(t, "1,0,0,0,0.0000,0,0,0,0,0.0000", lines[2])
}
