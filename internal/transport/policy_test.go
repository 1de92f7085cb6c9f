package transport

import "testing"

func TestReceivePolicyConstructors(t *testing.T) {
	cases := []struct {
		name string
		got  ReceivePolicy
		want ReceivePolicy
	}{
		{"exactly", Exactly(10), ReceivePolicy{Min: 10, Max: 10}},
		{"up_to", UpTo(10), ReceivePolicy{Min: 1, Max: 10}},
		{"between", Between(4, 10), ReceivePolicy{Min: 4, Max: 10}},
		{"stop", Stop(), ReceivePolicy{Min: 0, Max: 0}},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s: got %+v, want %+v", c.name, c.got, c.want)
		}
	}
}
