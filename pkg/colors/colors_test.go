package colors_test

import (
	"strings"
	"testing"

	. "armada/pkg/colors"
)

func TestWrap_AddsColorAndReset(t *testing.T) {
	got := RedText("danger")
	if got != Red+"danger"+Default {
		t.Errorf("unexpected wrap %q", got)
	}
}

func TestWrap_SurvivesNestedReset(t *testing.T) {
	inner := GreenText("ok")
	outer := RedText("before " + inner + " after")

	// The inner reset must be followed by a re-insertion of red so the
	// trailing text stays coloured.
	if !strings.Contains(outer, Default+Red) {
		t.Errorf("expected colour re-insertion after nested reset in %q", outer)
	}
	if !strings.HasSuffix(outer, Default) {
		t.Errorf("expected trailing reset in %q", outer)
	}
}

func TestHelpersUseTheirColor(t *testing.T) {
	cases := map[string]struct {
		fn    func(string) string
		color string
	}{
		"blue":   {BlueText, Blue},
		"bold":   {Bold, BoldSeq},
		"cyan":   {CyanText, Cyan},
		"green":  {GreenText, Green},
		"grey":   {GreyText, Grey},
		"red":    {RedText, Red},
		"yellow": {YellowText, Yellow},
	}

	for name, tc := range cases {
		if got := tc.fn("x"); !strings.HasPrefix(got, tc.color) {
			t.Errorf("%s helper did not prefix its colour: %q", name, got)
		}
	}
}
