package logger

import "testing"

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		"WARN":    WARN,
		"warning": WARN,
		"error":   ERROR,
		"":        INFO,
		"bogus":   INFO,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetLevelRoundTrip(t *testing.T) {
	defer SetLevel(INFO)
	for _, l := range []LogLevel{DEBUG, INFO, WARN, ERROR} {
		SetLevel(l)
		if got := GetLevel(); got != l {
			t.Fatalf("GetLevel() = %v after SetLevel(%v)", got, l)
		}
	}
}

func TestLoggingDoesNotPanic(t *testing.T) {
	Init("production")
	defer Init("development")
	InfoCF("test", "structured", map[string]interface{}{"k": 1})
	DebugC("test", "hidden at info")
	WarnCF("test", "warned", nil)
	Sync()
}
