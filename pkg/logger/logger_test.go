package logger

import "testing"

func TestNew(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			l, err := New(level)
			if err != nil {
				t.Fatalf("New(%q) error = %v", level, err)
			}
			if l == nil {
				t.Fatalf("New(%q) returned nil logger", level)
			}
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty"); err == nil {
		t.Fatal("New(\"chatty\") error = nil, want error")
	}
}
