package tracking

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/hupe1980/cmhash/eval"
)

// ResultsLog writes a human-readable, append-only results log.
type ResultsLog struct {
	mu sync.Mutex
	w  io.Writer
}

var (
	_ Sink     = (*ResultsLog)(nil)
	_ Finisher = (*ResultsLog)(nil)
)

// NewResultsLog creates a results log writing to w.
func NewResultsLog(w io.Writer) *ResultsLog {
	return &ResultsLog{w: w}
}

// Record implements Sink.
func (l *ResultsLog) Record(_ context.Context, r EpochReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Epoch %d/%d\n", r.Epoch, r.Epochs-1)
	b.WriteString(strings.Repeat("-", 10) + "\n")
	fmt.Fprintf(&b, "Train loss: %.6f\n", r.TrainLoss)
	WriteScores(&b, r.Scores, r.K)
	fmt.Fprintf(&b, "Best Epoch: %t\n", r.IsBest)
	fmt.Fprintf(&b, "Train time: %s, validation time: %s\n\n",
		r.TrainDuration.Round(time.Millisecond), r.ValDuration.Round(time.Millisecond))

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := io.WriteString(l.w, b.String())
	return err
}

// Finish implements Finisher.
func (l *ResultsLog) Finish(_ context.Context, s Summary) error {
	var b strings.Builder
	if s.BestEpoch >= 0 {
		fmt.Fprintf(&b, "Best epoch: %d (average mAP %.6f)\n", s.BestEpoch, s.BestScore)
	} else {
		b.WriteString("Best epoch: none\n")
	}
	fmt.Fprintf(&b, "Training and Validation Time has been elapsed: %s\n", FormatElapsed(s.Elapsed))

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := io.WriteString(l.w, b.String())
	return err
}

// WriteScores renders the plain and weighted mAP of every direction as a table.
func WriteScores(w io.Writer, s eval.Scores, k int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"DIRECTION", "MAP@" + strconv.Itoa(k), "WEIGHTED MAP@" + strconv.Itoa(k)})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)

	for _, d := range eval.Directions {
		table.Append([]string{d.String(), formatScore(s.Plain[d]), formatScore(s.Weighted[d])})
	}
	table.SetFooter([]string{"Average", formatScore(s.AveragePlain), formatScore(s.AverageWeighted)})
	table.Render()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// FormatElapsed formats d as hh:mm:ss.
func FormatElapsed(d time.Duration) string {
	secs := int64(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
}
