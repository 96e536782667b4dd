package retry

import "testing"

func TestKindRetryable(t *testing.T) {
	cases := []struct {
		kind Kind
		want bool
	}{
		{Success, false},
		{NoResponse, true},
		{Timeout, false},
		{DeviceError, false},
		{SecurityViolation, false},
		{Unsupported, false},
		{InvalidParameter, false},
		{ResponseNotReady, false},
	}
	for _, c := range cases {
		if got := c.kind.Retryable(); got != c.want {
			t.Errorf("%v.Retryable() = %v, want %v", c.kind, got, c.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if Kind(255).String() != "Unknown" {
		t.Fatalf("unexpected Kind out of range")
	}
	if NoResponse.String() != "NoResponse" {
		t.Fatalf("got %q", NoResponse.String())
	}
}
