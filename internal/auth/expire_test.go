package auth

import (
	"testing"
	"time"
)

func TestExpiringMap(t *testing.T) {
	t.Run("entries survive until the deadline", func(t *testing.T) {
		m := NewExpiringMap[string, int](time.Hour)
		m.Set("a", 1)

		if v, ok := m.Get("a"); !ok || v != 1 {
			t.Errorf("Expected (1, true), got (%d, %v)", v, ok)
		}
	})

	t.Run("entries expire", func(t *testing.T) {
		m := NewExpiringMap[string, int](10 * time.Millisecond)
		m.Set("a", 1)
		time.Sleep(25 * time.Millisecond)

		if _, ok := m.Get("a"); ok {
			t.Error("Expected entry to have expired")
		}
	})

	t.Run("set resets the lifetime", func(t *testing.T) {
		m := NewExpiringMap[string, int](40 * time.Millisecond)
		m.Set("a", 1)
		time.Sleep(25 * time.Millisecond)
		m.Set("a", 2)
		time.Sleep(25 * time.Millisecond)

		// 50ms after the first Set but only 25ms after the second.
		if v, ok := m.Get("a"); !ok || v != 2 {
			t.Errorf("Expected refreshed entry (2, true), got (%d, %v)", v, ok)
		}
	})

	t.Run("delete removes immediately", func(t *testing.T) {
		m := NewExpiringMap[string, int](time.Hour)
		m.Set("a", 1)
		m.Delete("a")

		if _, ok := m.Get("a"); ok {
			t.Error("Expected entry to be gone")
		}
	})

	t.Run("sweep only drops stale entries", func(t *testing.T) {
		m := NewExpiringMap[string, int](30 * time.Millisecond)
		m.Set("old", 1)
		time.Sleep(40 * time.Millisecond)
		m.Set("fresh", 2)

		if _, ok := m.Get("old"); ok {
			t.Error("Expected old entry to have expired")
		}
		if v, ok := m.Get("fresh"); !ok || v != 2 {
			t.Errorf("Expected (2, true), got (%d, %v)", v, ok)
		}
	})
}
