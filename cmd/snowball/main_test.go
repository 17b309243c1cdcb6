package main

import "testing"

func TestShouldRouteToCtl(t *testing.T) {
	cases := []struct {
		args []string
		want bool
	}{
		{nil, false},
		{[]string{"-config", "config.yaml"}, false},
		{[]string{"-port", "8080"}, false},
		{[]string{"-mc", "paths.json"}, true},
		{[]string{"--backtest", "bt.json", "-json"}, true},
		{[]string{"-backtest=bt.json"}, true},
		{[]string{"-schedule", "-params", "p.yaml"}, true},
		{[]string{"-schedule=true", "-params", "p.yaml"}, true},
		{[]string{"--schedule=true"}, true},
		{[]string{"-params=p.yaml"}, true},
		{[]string{"-config=config.yaml"}, false},
	}
	for _, c := range cases {
		if got := shouldRouteToCtl(c.args); got != c.want {
			t.Fatalf("shouldRouteToCtl(%v)=%v want %v", c.args, got, c.want)
		}
	}
}
