package redis

import "testing"

func TestKeys(t *testing.T) {
	cases := []struct{ got, want string }{
		{RateLimitKey("tg:42"), "ratelimit:tg:42"},
		{SearchStateKey(42), "search:chat:42"},
		{tempKey(42, "alert"), "temp:user:42:alert"},
		{ChannelKey("notifications", "u-1"), "realtime:notifications:u-1"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("key = %q, want %q", c.got, c.want)
		}
	}
}
