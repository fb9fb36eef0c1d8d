package deeplink

import (
	"net/url"
	"testing"
)

func TestTrackIntent(t *testing.T) {
	r := NewRouter("app", "main")

	intent := r.TrackIntent("mb-001")
	if got := intent.URI.String(); got != "app://track/mb-001" {
		t.Errorf("URI = %q, want app://track/mb-001", got)
	}
	if intent.Action != ActionView || intent.Component != "main" {
		t.Errorf("unexpected intent %+v", intent)
	}
	if !intent.Has(FlagNewTask) {
		t.Error("intent should carry FlagNewTask")
	}
}

func TestTrackIntentRoundTrip(t *testing.T) {
	r := NewRouter("earshot", "")

	ids := []string{
		"mb-001",
		"a8d8b1c5-2e2a-4b0f-9c5f-0d5c6a0e7f11",
		"with space",
		"slash/inside",
		"percent%20literal",
		"unicode-ñ",
		"?query#frag",
	}

	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			raw := r.TrackIntent(id).URI.String()

			parsed, err := url.Parse(raw)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", raw, err)
			}
			got, ok := TrackID(parsed)
			if !ok || got != id {
				t.Errorf("TrackID(%q) = %q, %v, want %q", raw, got, ok, id)
			}
		})
	}
}

func TestQueueIntent(t *testing.T) {
	r := NewRouter("", "")

	intent := r.QueueIntent()
	if got := intent.URI.String(); got != "app://recognition-queue" {
		t.Errorf("URI = %q, want app://recognition-queue", got)
	}
	if !IsQueue(intent.URI) {
		t.Error("IsQueue() should be true for the queue intent")
	}
	if _, ok := TrackID(intent.URI); ok {
		t.Error("TrackID() should fail for the queue intent")
	}
	if intent.Component != "main" || !intent.Has(FlagNewTask) {
		t.Errorf("unexpected intent %+v", intent)
	}
}

func TestTrackIDRejectsForeignURIs(t *testing.T) {
	for _, raw := range []string{"app://track", "app://track/", "app://other/mb-001", "https://example.com/track/1"} {
		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", raw, err)
		}
		if id, ok := TrackID(u); ok {
			t.Errorf("TrackID(%q) = %q, want failure", raw, id)
		}
	}
	if _, ok := TrackID(nil); ok {
		t.Error("TrackID(nil) should fail")
	}
}
