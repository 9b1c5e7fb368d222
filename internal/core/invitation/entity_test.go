package invitation

import (
	"strings"
	"testing"
	"time"
)

func TestEffectiveStatus(t *testing.T) {
	t.Parallel()

	expires := time.Date(2025, 8, 4, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		status Status
		now    time.Time
		want   Status
	}{
		{name: "pending before expiry", status: StatusPending, now: expires.Add(-time.Second), want: StatusPending},
		{name: "pending at expiry instant", status: StatusPending, now: expires, want: StatusPending},
		{name: "pending after expiry", status: StatusPending, now: expires.Add(time.Second), want: StatusExpired},
		{name: "used stays used", status: StatusUsed, now: expires.Add(time.Hour), want: StatusUsed},
		{name: "expired stays expired", status: StatusExpired, now: expires.Add(-time.Hour), want: StatusExpired},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := EffectiveStatus(tc.status, expires, tc.now); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestNewCode(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code := NewCode()
		if !strings.HasPrefix(code, "INV-") || len(code) != len("INV-")+10 {
			t.Fatalf("unexpected code %q", code)
		}
		if code != strings.ToUpper(code) {
			t.Fatalf("code must be upper-case: %q", code)
		}
		seen[code] = struct{}{}
	}
	if len(seen) < 99 {
		t.Fatalf("codes are not random enough: %d unique of 100", len(seen))
	}
}
