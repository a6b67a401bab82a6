package scoring

import (
	"testing"
	"time"
)

func TestLockTimeoutStatement(t *testing.T) {
	tests := []struct {
		dialect string
		timeout time.Duration
		want    string
		ok      bool
	}{
		{"postgres", 5 * time.Second, "SET LOCAL lock_timeout = '5000ms'", true},
		{"postgres", 200 * time.Microsecond, "SET LOCAL lock_timeout = '1ms'", true},
		{"postgres", 0, "", false},
		{"sqlite", 5 * time.Second, "", false},
	}
	for _, tt := range tests {
		got, ok := lockTimeoutStatement(tt.dialect, tt.timeout)
		if got != tt.want || ok != tt.ok {
			t.Errorf("lockTimeoutStatement(%q, %v) = %q, %v; want %q, %v", tt.dialect, tt.timeout, got, ok, tt.want, tt.ok)
		}
	}
}
