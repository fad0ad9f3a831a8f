package studio

import (
	"fmt"
	"strings"
	"testing"
)

func TestLog_RecordPrepends(t *testing.T) {
	log := NewLog()

	first, err := log.Record(ActionGenerate, "p1", "artifact1", "artifact1")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	second, err := log.Record(ActionScene, "p2", "artifact2", "artifact2")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	if first.ID == "" || second.ID == "" {
		t.Fatal("entries should get non-empty IDs")
	}
	if first.ID == second.ID {
		t.Fatal("entry IDs should be unique")
	}

	entries := log.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].ID != second.ID {
		t.Error("newest entry should be first")
	}
}

func TestLog_CapacityEviction(t *testing.T) {
	log := NewLog()

	var ids []string
	for i := 0; i < LogCapacity+1; i++ {
		e, err := log.Record(ActionGenerate, fmt.Sprintf("p%d", i), "a", "a")
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		ids = append(ids, e.ID)
	}

	if log.Len() != LogCapacity {
		t.Errorf("Len = %d, want %d", log.Len(), LogCapacity)
	}
	entries := log.Entries()
	if entries[0].ID != ids[len(ids)-1] {
		t.Error("first element should be the newest entry")
	}
	if _, ok := log.Get(ids[0]); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := log.Get(ids[1]); !ok {
		t.Error("second-oldest entry should have survived")
	}
}

func TestSelectResult(t *testing.T) {
	img := SelectResult(Entry{Action: ActionEdit, Artifact: "data:image/png;base64,QQ=="})
	if img.Kind != KindImage || img.Image != "data:image/png;base64,QQ==" {
		t.Errorf("edit entry should project to an Image result, got %+v", img)
	}

	txt := SelectResult(Entry{Action: ActionIdeas, Artifact: "some ideas"})
	if txt.Kind != KindText || txt.Text != "some ideas" {
		t.Errorf("ideas entry should project to a Text result, got %+v", txt)
	}
	if txt.Sources != nil {
		t.Error("grounding sources are not retained in log entries")
	}
}

func TestTruncatePreview(t *testing.T) {
	short := strings.Repeat("x", 50)
	if got := TruncatePreview(short); got != short {
		t.Errorf("50-char text should pass through unmodified, got %q", got)
	}

	long := strings.Repeat("y", 150)
	got := TruncatePreview(long)
	if got != strings.Repeat("y", 100)+"..." {
		t.Errorf("150-char text should truncate to 100 chars + ellipsis, got %d chars", len(got))
	}

	exact := strings.Repeat("z", 100)
	if got := TruncatePreview(exact); got != exact {
		t.Errorf("100-char text should pass through unmodified, got %q", got)
	}
}

func TestTruncatePreview_CountsRunes(t *testing.T) {
	long := strings.Repeat("桜", 150)
	got := TruncatePreview(long)
	if got != strings.Repeat("桜", 100)+"..." {
		t.Errorf("truncation should count runes, not bytes; got %d runes", len([]rune(got)))
	}
}

func TestLog_EntriesReturnsCopy(t *testing.T) {
	log := NewLog()
	if _, err := log.Record(ActionGenerate, "p", "a", "a"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries := log.Entries()
	entries[0].Prompt = "mutated"

	if log.Entries()[0].Prompt != "p" {
		t.Error("mutating the returned slice should not affect the log")
	}
}
