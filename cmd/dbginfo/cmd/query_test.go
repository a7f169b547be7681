package cmd

import "testing"

func TestParseAddr(t *testing.T) {
	cases := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"0x1000", 0x1000, false},
		{"0X1000", 0x1000, false},
		{"4096", 4096, false},
		{"not-a-number", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := parseAddr(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("parseAddr(%q): expected error, got %d", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAddr(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseAddr(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
