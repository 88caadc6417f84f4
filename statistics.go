package helios

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Statistics collects the loss of one or more training runs, epoch by epoch.
type Statistics struct {
	Runs    []string
	Loss    map[string][]float64
	Elapsed map[string][]time.Duration
}

func MakeStatistics() Statistics {
	return Statistics{
		Runs:    make([]string, 0, 8),
		Loss:    make(map[string][]float64),
		Elapsed: make(map[string][]time.Duration),
	}
}

// Record appends one epoch to the named run.
func (s *Statistics) Record(run string, loss float64, elapsed time.Duration) {
	if s.Loss == nil {
		s.Loss = make(map[string][]float64)
		s.Elapsed = make(map[string][]time.Duration)
	}
	if _, ok := s.Loss[run]; !ok {
		s.Runs = append(s.Runs, run)
	}
	s.Loss[run] = append(s.Loss[run], loss)
	s.Elapsed[run] = append(s.Elapsed[run], elapsed)
}

// Encode writes every recorded epoch as CSV: run, epoch, loss, seconds.
func (s *Statistics) Encode(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"run", "epoch", "loss", "seconds"}); err != nil {
		return err
	}
	var records [][]string
	for _, run := range s.Runs {
		for epoch, loss := range s.Loss[run] {
			records = append(records, []string{
				run,
				strconv.Itoa(epoch),
				strconv.FormatFloat(loss, 'g', 6, 64),
				strconv.FormatFloat(s.Elapsed[run][epoch].Seconds(), 'f', 6, 64),
			})
		}
	}
	// WriteAll flushes
	return cw.WriteAll(records)
}

// Dump writes the statistics to filename, truncating it.
func (s *Statistics) Dump(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "dumping statistics")
	}
	if err := s.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
