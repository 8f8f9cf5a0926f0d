package prof

import (
	"strings"
	"testing"
	"time"
)

func TestTrackAndSnapshot(t *testing.T) {
	SnapshotAndReset()
	Track(time.Now().Add(-time.Millisecond), "enc")
	Track(time.Now().Add(-time.Millisecond), "enc")
	Track(time.Now().Add(-time.Millisecond), "dec")
	got := SnapshotAndReset()
	if len(got) != 3 {
		t.Fatalf("entries = %d, want 3", len(got))
	}
	if got[0].Label != "enc" || got[2].Label != "dec" {
		t.Fatalf("labels out of order: %v", got)
	}
	if again := SnapshotAndReset(); len(again) != 0 {
		t.Fatalf("snapshot did not reset: %v", again)
	}
}

func TestSummary(t *testing.T) {
	entries := []Entry{
		{Label: "enc", Dur: 2 * time.Millisecond},
		{Label: "dec", Dur: time.Millisecond},
		{Label: "enc", Dur: 4 * time.Millisecond},
	}
	lines := Summary(entries)
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
	if !strings.HasPrefix(lines[0], "enc: n=2 avg=3ms") {
		t.Fatalf("enc line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "dec: n=1") {
		t.Fatalf("dec line = %q", lines[1])
	}
}
