package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestNew_JSONLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn", "json")

	l.Info("dropped")
	l.Warn("kept", "id", "abc")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %s", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal(lines[0], &rec); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if rec["msg"] != "kept" || rec["id"] != "abc" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info", "text").With("request_id", "r-1")

	ctx := WithLogger(context.Background(), l)
	FromContext(ctx).Info("hello")

	if !bytes.Contains(buf.Bytes(), []byte("request_id=r-1")) {
		t.Errorf("expected request id in output, got %q", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Error("expected default logger fallback")
	}
}
