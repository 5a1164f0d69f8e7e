package output

import (
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode represents the color output mode
type ColorMode int

const (
	// ColorAuto enables colors if output is a TTY
	ColorAuto ColorMode = iota
	// ColorAlways forces colors on
	ColorAlways
	// ColorNever disables colors
	ColorNever
)

// highDelayMinutes is where a delay switches to the alarming color
const highDelayMinutes = 5

// Colors holds the color functions for different output types
type Colors struct {
	Time      func(format string, a ...interface{}) string
	Minutes   func(format string, a ...interface{}) string
	Delay     func(format string, a ...interface{}) string
	DelayHigh func(format string, a ...interface{}) string
	OnTime    func(format string, a ...interface{}) string
	Line      func(format string, a ...interface{}) string
	Stop      func(format string, a ...interface{}) string
	Dest      func(format string, a ...interface{}) string
	Header    func(format string, a ...interface{}) string
	Muted     func(format string, a ...interface{}) string
}

// NewColors creates a new Colors instance based on the color mode
func NewColors(mode ColorMode) *Colors {
	useColors := false
	switch mode {
	case ColorAlways:
		useColors = true
		color.NoColor = false
	case ColorNever:
		useColors = false
	case ColorAuto:
		useColors = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	if !useColors {
		noColor := func(format string, a ...interface{}) string {
			if len(a) == 0 {
				return format
			}
			return color.New().Sprintf(format, a...)
		}
		return &Colors{
			Time:      noColor,
			Minutes:   noColor,
			Delay:     noColor,
			DelayHigh: noColor,
			OnTime:    noColor,
			Line:      noColor,
			Stop:      noColor,
			Dest:      noColor,
			Header:    noColor,
			Muted:     noColor,
		}
	}

	return &Colors{
		Time:      color.New(color.FgWhite, color.Bold).SprintfFunc(),
		Minutes:   color.New(color.FgHiYellow, color.Bold).SprintfFunc(),
		Delay:     color.New(color.FgYellow).SprintfFunc(),
		DelayHigh: color.New(color.FgRed, color.Bold).SprintfFunc(),
		OnTime:    color.New(color.FgGreen).SprintfFunc(),
		Line:      color.New(color.FgCyan, color.Bold).SprintfFunc(),
		Stop:      color.New(color.FgMagenta).SprintfFunc(),
		Dest:      color.New(color.FgWhite).SprintfFunc(),
		Header:    color.New(color.FgWhite, color.Bold, color.Underline).SprintfFunc(),
		Muted:     color.New(color.FgHiBlack).SprintfFunc(),
	}
}

// FormatDelay colors a delay display string ("On Time", "3 min", "-1 min")
// padded to a fixed width of 7.
func (c *Colors) FormatDelay(display string) string {
	padded := padRight(display, 7)
	minutes, ok := delayMinutes(display)
	switch {
	case !ok:
		return c.OnTime("%s", padded)
	case minutes >= highDelayMinutes:
		return c.DelayHigh("%s", padded)
	case minutes > 0:
		return c.Delay("%s", padded)
	default:
		return c.OnTime("%s", padded)
	}
}

// delayMinutes reads the leading number from "N min"
func delayMinutes(display string) (int, bool) {
	n, _, found := strings.Cut(display, " ")
	if !found {
		return 0, false
	}
	minutes, err := strconv.Atoi(n)
	if err != nil {
		return 0, false
	}
	return minutes, true
}

// ParseColorMode parses a color mode string
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}
