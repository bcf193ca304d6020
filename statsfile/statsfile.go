// Package statsfile implements the optional per-tick comparison-statistics
// sink described in spec.md §6: "The temporal-preference operator, if
// configured with a comparison-statistics file, appends per-tick
// (timestamp, in, in_min, in_max, in_avg, comp, out, out_min, out_max,
// out_avg) rows." Grounded on original_source/control/manager.py's
// statistics hook and, for the CSV writing idiom itself, on the teacher's
// encoding/csv usage pattern in cmd/genji/dump.go.
package statsfile

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/streampref/streampref/prefop"
)

var _ prefop.StatsSink = (*Writer)(nil)

// header is written once, on the first WriteTick call.
var header = []string{
	"timestamp", "in", "in_min", "in_max", "in_avg",
	"comp", "out", "out_min", "out_max", "out_avg",
}

// Writer appends one row per tick to an underlying io.Writer, satisfying
// prefop.StatsSink.
type Writer struct {
	w           *csv.Writer
	wroteHeader bool
}

// New wraps w as a statistics sink. The caller owns w's lifetime; WriteTick
// flushes after every row and never closes it.
func New(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// WriteTick implements prefop.StatsSink: it summarizes the in/out sequence
// length lists for tick t and appends one CSV row.
func (s *Writer) WriteTick(t int64, in []int, comparisons int, out []int) error {
	if !s.wroteHeader {
		if err := s.w.Write(header); err != nil {
			return err
		}
		s.wroteHeader = true
	}

	inMin, inMax, inAvg := summarize(in)
	outMin, outMax, outAvg := summarize(out)

	row := []string{
		strconv.FormatInt(t, 10),
		strconv.Itoa(len(in)),
		strconv.Itoa(inMin),
		strconv.Itoa(inMax),
		strconv.FormatFloat(inAvg, 'f', 4, 64),
		strconv.Itoa(comparisons),
		strconv.Itoa(len(out)),
		strconv.Itoa(outMin),
		strconv.Itoa(outMax),
		strconv.FormatFloat(outAvg, 'f', 4, 64),
	}
	if err := s.w.Write(row); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}

// summarize returns (min, max, avg) of xs, or all zeros for an empty slice.
func summarize(xs []int) (int, int, float64) {
	if len(xs) == 0 {
		return 0, 0, 0
	}
	min, max, sum := xs[0], xs[0], 0
	for _, x := range xs {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
		sum += x
	}
	return min, max, float64(sum) / float64(len(xs))
}
