package suggest

import "testing"

func TestClosest(t *testing.T) {
	opts := []string{"admin", "guest", "admin-cart-3"}
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"admn", "admin", true},
		{"Guest", "guest", true},
		{"admin-cart3", "admin-cart-3", true},
		{"nonexistent", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := Closest(tc.in, opts)
		if ok != tc.ok || got != tc.want {
			t.Errorf("Closest(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestClosestNoOptions(t *testing.T) {
	if _, ok := Closest("admin", nil); ok {
		t.Fatal("expected no suggestion")
	}
}
