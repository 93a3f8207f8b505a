package main

import (
	"testing"

	"github.com/cwbudde/algo-grain/dsp/granular"
)

func TestParsePoints(t *testing.T) {
	got, err := parsePoints(" 0.25, 0.5 ; 1,0;")
	if err != nil {
		t.Fatalf("parsePoints: %v", err)
	}

	want := []granular.Point{{X: 0.25, Y: 0.5}, {X: 1, Y: 0}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParsePointsErrors(t *testing.T) {
	for _, in := range []string{"", ";", "1", "a,1", "1,b", "NaN,1", "0,Inf", "1e39,0"} {
		if _, err := parsePoints(in); err == nil {
			t.Fatalf("parsePoints(%q): expected error", in)
		}
	}
}
