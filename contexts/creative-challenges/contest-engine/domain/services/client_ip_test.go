package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name      string
		forwarded string
		realIP    string
		want      string
	}{
		{name: "first forwarded hop", forwarded: "203.0.113.1, 198.51.100.1", realIP: "198.51.100.1", want: "203.0.113.1"},
		{name: "single forwarded", forwarded: "192.168.1.100", want: "192.168.1.100"},
		{name: "real ip fallback", realIP: " 198.51.100.7 ", want: "198.51.100.7"},
		{name: "blank forwarded falls through", forwarded: " , 10.0.0.1", realIP: "10.0.0.2", want: "10.0.0.2"},
		{name: "unknown bucket", want: "unknown"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClientIP(tc.forwarded, tc.realIP))
		})
	}
}
