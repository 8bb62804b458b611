package logsink_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "armada/pkg/logsink"
)

func TestStripANSI(t *testing.T) {
	cases := map[string]string{
		"plain line":                  "plain line",
		"\x1b[31mred\x1b[0m":          "red",
		"\x1b[1;32mbold green\x1b[0m": "bold green",
		"partial\x1b[K erase":         "partial erase",
		"":                            "",
	}

	for in, want := range cases {
		if got := StripANSI(in); got != want {
			t.Errorf("StripANSI(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStripANSI_Idempotent(t *testing.T) {
	in := "\x1b[31mcolou\x1b[0mred"
	once := StripANSI(in)
	if twice := StripANSI(once); twice != once {
		t.Errorf("second strip changed result: %q -> %q", once, twice)
	}
}

func TestFormatLine_FieldOrder(t *testing.T) {
	record, err := FormatLine(LevelEvent, "norcal-prod", "main", "deploy", "deployed v42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Canonical serialization: alphabetical keys.
	wantOrder := []string{`"cluster"`, `"component"`, `"instance"`, `"level"`, `"message"`, `"timestamp"`}
	last := -1
	for _, key := range wantOrder {
		idx := strings.Index(record, key)
		if idx < 0 {
			t.Fatalf("record missing key %s: %s", key, record)
		}
		if idx < last {
			t.Fatalf("key %s out of order in %s", key, record)
		}
		last = idx
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(record), &parsed); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if parsed["cluster"] != "norcal-prod" || parsed["component"] != "deploy" {
		t.Errorf("unexpected record content: %v", parsed)
	}
	if parsed["message"] != "deployed v42" {
		t.Errorf("unexpected message: %q", parsed["message"])
	}
}

func TestFormatLine_StripsANSIFromMessage(t *testing.T) {
	record, err := FormatLine(LevelEvent, AnyCluster, AnyInstance, "build", "\x1b[32mok\x1b[0m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(record), &parsed); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if parsed["message"] != "ok" {
		t.Errorf("expected ANSI-stripped message 'ok', got %q", parsed["message"])
	}
}

func TestFormatLine_TimestampShape(t *testing.T) {
	record, err := FormatLine(LevelDebug, AnyCluster, AnyInstance, "build", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(record), &parsed); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}

	ts := parsed["timestamp"]
	// Fixed-width microsecond ISO-8601: 2006-01-02T15:04:05.000000
	if len(ts) != 26 || ts[10] != 'T' || ts[19] != '.' {
		t.Errorf("unexpected timestamp shape: %q", ts)
	}
}

func TestFormatLine_UnknownComponent(t *testing.T) {
	if _, err := FormatLine(LevelEvent, AnyCluster, AnyInstance, "nope", "x"); !errors.Is(err, ErrNoSuchLogComponent) {
		t.Errorf("expected ErrNoSuchLogComponent, got %v", err)
	}
}

func TestStreamNameForService(t *testing.T) {
	if got := StreamNameForService("webapp"); got != "stream_armada_webapp" {
		t.Errorf("unexpected stream name %q", got)
	}
}
