package session

import "testing"

// TestSubmit_TrimsAndNavigates verifies submission always reaches store selection
func TestSubmit_TrimsAndNavigates(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  90210 \n", "90210"},
		{"L1B9C3", "L1B9C3"},
		{"", ""},
		{"not a postal code", "not a postal code"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := New("10011")
			next := NewEntry(s, 1).Submit(tt.input)

			if next.Screen != ScreenStoreSelector {
				t.Errorf("Expected store selector, got %s", next.Screen)
			}
			if s.PostalCode != tt.want {
				t.Errorf("Expected postal code %q, got %q", tt.want, s.PostalCode)
			}
			if next.PostalCode != tt.want {
				t.Errorf("Expected next postal code %q, got %q", tt.want, next.PostalCode)
			}
		})
	}
}

// TestDefaultFlyer verifies the shortcut keeps the current postal code
func TestDefaultFlyer(t *testing.T) {
	s := New("10011")
	entry := NewEntry(s, 4242)

	next := entry.DefaultFlyer()
	if next.Screen != ScreenFlyer || next.FlyerID != 4242 || next.PostalCode != "10011" {
		t.Errorf("Unexpected next %+v", next)
	}

	entry.Submit("M5V")
	if got := entry.DefaultFlyer().PostalCode; got != "M5V" {
		t.Errorf("Expected submitted postal code to carry over, got %q", got)
	}
}

// TestNew_UniqueIDs verifies each session gets its own id
func TestNew_UniqueIDs(t *testing.T) {
	if New("a").ID == New("a").ID {
		t.Error("Expected distinct session ids")
	}
}
