package output

import (
	"testing"

	"github.com/mobil-koeln/moko-board/internal/testutil"
)

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in   string
		want ColorMode
	}{
		{"always", ColorAlways},
		{"never", ColorNever},
		{"auto", ColorAuto},
		{"", ColorAuto},
		{"sometimes", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			testutil.AssertEqual(t, ParseColorMode(tt.in), tt.want)
		})
	}
}

func TestNewColors_Never(t *testing.T) {
	c := NewColors(ColorNever)

	testutil.AssertEqual(t, c.Line("M10"), "M10")
	testutil.AssertEqual(t, c.Minutes("%d'", 4), "4'")
	testutil.AssertEqual(t, c.Header("%s", "Tram"), "Tram")
}

func TestNewColors_AlwaysEmitsEscapes(t *testing.T) {
	c := NewColors(ColorAlways)

	testutil.AssertContains(t, c.Line("%s", "U8"), "\x1b[")
	testutil.AssertContains(t, c.Line("%s", "U8"), "U8")
}

func TestFormatDelay(t *testing.T) {
	c := NewColors(ColorNever)

	tests := []struct {
		display string
		want    string
	}{
		{"On Time", "On Time"},
		{"2 min", "2 min  "},
		{"7 min", "7 min  "},
		{"-1 min", "-1 min "},
		{"12 min", "12 min "},
	}

	for _, tt := range tests {
		t.Run(tt.display, func(t *testing.T) {
			testutil.AssertEqual(t, c.FormatDelay(tt.display), tt.want)
		})
	}
}

func TestDelayMinutes(t *testing.T) {
	tests := []struct {
		display string
		want    int
		ok      bool
	}{
		{"On Time", 0, false},
		{"3 min", 3, true},
		{"-2 min", -2, true},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := delayMinutes(tt.display)
		testutil.AssertEqual(t, got, tt.want)
		testutil.AssertEqual(t, ok, tt.ok)
	}
}
