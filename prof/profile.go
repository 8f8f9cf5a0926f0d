// Package prof collects coarse wall-clock timings for the self-test
// and CLI drivers.
package prof

import (
	"fmt"
	"sync"
	"time"
)

// Entry represents a single timing measurement.
type Entry struct {
	Label string
	Dur   time.Duration
}

var (
	mu     sync.Mutex
	record []Entry
)

// Track logs the duration since start under the given label.
func Track(start time.Time, label string) {
	elapsed := time.Since(start)
	mu.Lock()
	record = append(record, Entry{Label: label, Dur: elapsed})
	mu.Unlock()
}

// SnapshotAndReset returns the collected timing entries and clears them.
func SnapshotAndReset() []Entry {
	mu.Lock()
	defer mu.Unlock()
	out := make([]Entry, len(record))
	copy(out, record)
	record = nil
	return out
}

// Summary aggregates entries per label as "label: n=<count> avg=<dur>"
// lines, in first-seen order.
func Summary(entries []Entry) []string {
	type agg struct {
		n   int
		sum time.Duration
	}
	order := make([]string, 0, 4)
	byLabel := make(map[string]*agg)
	for _, e := range entries {
		a, ok := byLabel[e.Label]
		if !ok {
			a = &agg{}
			byLabel[e.Label] = a
			order = append(order, e.Label)
		}
		a.n++
		a.sum += e.Dur
	}
	out := make([]string, 0, len(order))
	for _, label := range order {
		a := byLabel[label]
		out = append(out, fmt.Sprintf("%s: n=%d avg=%s", label, a.n, a.sum/time.Duration(a.n)))
	}
	return out
}
