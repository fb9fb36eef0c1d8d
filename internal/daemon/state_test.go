package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jfmyers9/earshot/internal/recognitionqueue"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	fp := filepath.Join(t.TempDir(), "state.json")
	s, err := NewState(fp)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	return s
}

func TestState_RecordPersists(t *testing.T) {
	s := newTestState(t)
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := s.Record(recognitionqueue.ResultSuccess, at); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(recognitionqueue.ResultSuccess, at); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(recognitionqueue.ResultNoMatches, at); err != nil {
		t.Fatalf("Record: %v", err)
	}

	restored, err := NewState(s.filePath)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	st := restored.GetStatus()
	if st.Processed[recognitionqueue.ResultSuccess] != 2 || st.Processed[recognitionqueue.ResultNoMatches] != 1 {
		t.Errorf("Processed = %v", st.Processed)
	}
	if !st.LastRun.Equal(at) {
		t.Errorf("LastRun = %v, want %v", st.LastRun, at)
	}
}

func TestState_SuspendResume(t *testing.T) {
	s := newTestState(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := s.Suspend(now.Add(time.Hour), "auth-error"); err != nil {
		t.Fatalf("Suspend: %v", err)
	}

	st, err := LoadStatus(s.filePath)
	if err != nil {
		t.Fatalf("LoadStatus: %v", err)
	}
	if !st.Suspended(now) || st.SuspendReason != "auth-error" {
		t.Errorf("status = %+v, want suspended", st)
	}
	if st.Suspended(now.Add(2 * time.Hour)) {
		t.Error("suspension should expire")
	}

	if err := s.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if s.GetStatus().Suspended(now) {
		t.Error("status should not be suspended after Resume")
	}
}

func TestState_GetStatusReturnsCopy(t *testing.T) {
	s := newTestState(t)
	_ = s.Record(recognitionqueue.ResultSuccess, time.Now())

	st := s.GetStatus()
	st.Processed[recognitionqueue.ResultSuccess] = 100

	if got := s.GetStatus().Processed[recognitionqueue.ResultSuccess]; got != 1 {
		t.Errorf("internal count modified through copy: %d", got)
	}
}

func TestState_CorruptFile(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(fp, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewState(fp)
	if err == nil {
		t.Error("expected error for corrupt state file")
	}
	if s == nil {
		t.Fatal("NewState should still return a usable state")
	}
	if err := s.Touch(time.Now()); err != nil {
		t.Errorf("Touch after corrupt restore: %v", err)
	}
}

func TestState_NoFile(t *testing.T) {
	s, err := NewState("")
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}
	if err := s.Record(recognitionqueue.ResultSuccess, time.Now()); err != nil {
		t.Errorf("Record without persistence: %v", err)
	}
}
