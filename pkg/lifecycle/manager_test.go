package lifecycle

import (
	"testing"
	"time"
)

func TestManagerWaitsForClosedHandles(t *testing.T) {
	m := NewManager()
	h, err := m.NewServiceHandle("worker")
	if err != nil {
		t.Fatalf("NewServiceHandle: %v", err)
	}

	go func() {
		defer h.Close()
		<-h.Done()
	}()

	m.Shutdown()
	if remaining := m.WaitWithTimeout(time.Second); len(remaining) != 0 {
		t.Fatalf("expected all services closed, still running: %v", remaining)
	}
}

func TestManagerReportsStragglers(t *testing.T) {
	m := NewManager()
	if _, err := m.NewServiceHandle("stuck"); err != nil {
		t.Fatalf("NewServiceHandle: %v", err)
	}
	m.Shutdown()

	remaining := m.WaitWithTimeout(20 * time.Millisecond)
	if len(remaining) != 1 || remaining[0] != "stuck" {
		t.Fatalf("remaining = %v, want [stuck]", remaining)
	}
}

func TestDuplicateServiceName(t *testing.T) {
	m := NewManager()
	if _, err := m.NewServiceHandle("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.NewServiceHandle("a"); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestHandleSleepInterruptedByShutdown(t *testing.T) {
	m := NewManager()
	h, _ := m.NewServiceHandle("sleeper")
	defer h.Close()

	go m.Shutdown()
	if err := h.Sleep(time.Minute); err == nil {
		t.Fatal("expected Sleep to return the cancellation error")
	}
}
