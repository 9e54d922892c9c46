package services

import (
	"context"
	"testing"

	"github.com/alirezabazmara/InterviewApp/models"
)

func TestMemoryAskedStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryAskedStore()

	asked, err := store.Asked(ctx, "Go")
	if err != nil {
		t.Fatalf("Asked failed: %v", err)
	}
	if len(asked) != 0 {
		t.Errorf("fresh store returned %v", asked)
	}

	store.Add(ctx, "Go", []string{"What is Go?", "What is a channel?"})
	// Re-adding the same text (modulo case and spacing) is ignored.
	store.Add(ctx, "Go", []string{"  what is go?  "})

	asked, _ = store.Asked(ctx, "Go")
	if len(asked) != 2 {
		t.Errorf("expected 2 recorded questions, got %d: %v", len(asked), asked)
	}

	// Topics are independent.
	other, _ := store.Asked(ctx, "Python")
	if len(other) != 0 {
		t.Errorf("unrelated topic returned %v", other)
	}

	store.Reset(ctx, "Go")
	asked, _ = store.Asked(ctx, "Go")
	if len(asked) != 0 {
		t.Errorf("Reset left %v", asked)
	}
}

func TestMemoryResponseLog(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryResponseLog()

	count, last, err := log.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if count != 0 || last != nil {
		t.Errorf("fresh log status = %d, %v", count, last)
	}

	log.Append(ctx, models.AnswerResult{Answer: "first", Score: 0.5})
	log.Append(ctx, models.AnswerResult{Answer: "second", Score: 0.8})

	all, err := log.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 2 || all[0].Answer != "first" {
		t.Errorf("All = %+v", all)
	}

	count, last, _ = log.Status(ctx)
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if last == nil || last.Answer != "second" {
		t.Errorf("last = %+v", last)
	}

	// The returned slice is a copy.
	all[0].Answer = "mutated"
	fresh, _ := log.All(ctx)
	if fresh[0].Answer != "first" {
		t.Error("All exposed internal state")
	}

	log.Clear(ctx)
	if count, _, _ := log.Status(ctx); count != 0 {
		t.Errorf("count after Clear = %d", count)
	}
}

func TestExtractResumeTextPlain(t *testing.T) {
	text, err := ExtractResumeText([]byte("plain resume text"), "resume.txt")
	if err != nil {
		t.Fatalf("ExtractResumeText failed: %v", err)
	}
	if text != "plain resume text" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractResumeTextBadPDF(t *testing.T) {
	// PDF magic bytes but no valid document behind them.
	if _, err := ExtractResumeText([]byte("%PDF-1.4 garbage"), "resume.pdf"); err == nil {
		t.Error("expected an error for a corrupt PDF")
	}
}
