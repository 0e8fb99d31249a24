package dataset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/hupe1980/cmhash/codec"
	"github.com/hupe1980/cmhash/labels"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 64 << 20

// Record is the JSONL form of a Sample.
type Record struct {
	S1         []float64 `json:"s1"`
	S2         []float64 `json:"s2"`
	Labels     []uint32  `json:"labels"`
	NumClasses int       `json:"num_classes"`
	S1Name     string    `json:"s1_name"`
	S2Name     string    `json:"s2_name"`
}

// ToSample converts the record.
func (r Record) ToSample() (Sample, error) {
	ls, err := labels.New(r.NumClasses, r.Labels...)
	if err != nil {
		return Sample{}, err
	}
	return Sample{S1: r.S1, S2: r.S2, Label: ls, S1Name: r.S1Name, S2Name: r.S2Name}, nil
}

// RecordOf converts a sample.
func RecordOf(s Sample) Record {
	return Record{
		S1:         s.S1,
		S2:         s.S2,
		Labels:     s.Label.Classes(),
		NumClasses: s.Label.Dim(),
		S1Name:     s.S1Name,
		S2Name:     s.S2Name,
	}
}

// ReadJSONL reads one Record per line. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]Sample, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineSize)

	var (
		out  []Sample
		line int
	)
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := codec.Default.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", line, err)
		}
		s, err := rec.ToSample()
		if err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", line, err)
		}
		out = append(out, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	return out, nil
}

// WriteJSONL writes one Record per line.
func WriteJSONL(w io.Writer, samples []Sample) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for i, s := range samples {
		var err error
		buf, err = codec.GoJSON{}.Append(buf[:0], RecordOf(s))
		if err != nil {
			return fmt.Errorf("dataset: sample %d: %w", i, err)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
