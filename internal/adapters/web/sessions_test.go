package web

import (
	"strings"
	"testing"
	"time"
)

func TestSessions_Controller_ReusesPerSessionAndSlug(t *testing.T) {
	// Arrange
	s := NewSessions(time.Minute, time.Hour, nil)
	defer s.Close()
	ids := []string{"a", "b"}

	// Act
	first := s.Controller("s1", "demo", ids)
	again := s.Controller("s1", "demo", ids)
	otherSlug := s.Controller("s1", "other", ids)
	otherSession := s.Controller("s2", "demo", ids)

	// Assert
	if first != again {
		t.Error("same session and slug should share a controller")
	}
	if first == otherSlug || first == otherSession {
		t.Error("different session or slug should get its own controller")
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
}

func TestSessions_Sweep_ClosesIdleControllers(t *testing.T) {
	// Arrange
	metrics := NewMetrics()
	s := NewSessions(time.Minute, time.Hour, metrics)
	defer s.Close()
	ctrl := s.Controller("s1", "demo", []string{"a", "b"})

	// Act
	dropped := s.Sweep(time.Now().Add(2 * time.Minute))

	// Assert
	if dropped != 1 || s.Len() != 0 {
		t.Errorf("dropped = %d, Len = %d", dropped, s.Len())
	}
	if ctrl.Select("b") {
		t.Error("expired controller should be closed")
	}
	if _, ok := s.Lookup("s1", "demo"); ok {
		t.Error("expired session should not be found")
	}
	if out := scrapeMetrics(t, metrics); !strings.Contains(out, "bubbleview_selection_sessions 0") {
		t.Errorf("sessions gauge not reset:\n%s", out)
	}
}

func TestSessions_Sweep_KeepsRecentlySeen(t *testing.T) {
	s := NewSessions(time.Minute, time.Hour, nil)
	defer s.Close()
	s.Controller("s1", "demo", []string{"a"})

	dropped := s.Sweep(time.Now().Add(30 * time.Second))

	if dropped != 0 || s.Len() != 1 {
		t.Errorf("dropped = %d, Len = %d", dropped, s.Len())
	}
}
