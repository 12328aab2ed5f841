package server

import "testing"

func TestParseListenAddress(t *testing.T) {
	cases := []struct {
		addr    string
		wantErr bool
	}{
		{":8080", false},
		{"127.0.0.1:8080", false},
		{"0.0.0.0:1", false},
		{"127.0.0.1:65535", false},
		{"localhost:8080", true},
		{"example.com:8080", true},
		{"127.0.0.1:0", true},
		{"127.0.0.1:65536", true},
		{"127.0.0.1:abc", true},
		{"not-an-address", true},
	}

	for _, c := range cases {
		_, err := parseListenAddress(c.addr)
		if (err != nil) != c.wantErr {
			t.Errorf("parseListenAddress(%q) err = %v, wantErr %v", c.addr, err, c.wantErr)
		}
	}
}
