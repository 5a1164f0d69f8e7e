package output

import (
	"context"
	"fmt"
	"io"
	"time"
)

// ClearScreen clears the terminal screen and moves cursor to top-left
func ClearScreen(w io.Writer) {
	_, _ = fmt.Fprint(w, "\033[2J\033[H")
}

// HideCursor hides the terminal cursor
func HideCursor(w io.Writer) {
	_, _ = fmt.Fprint(w, "\033[?25l")
}

// ShowCursor shows the terminal cursor
func ShowCursor(w io.Writer) {
	_, _ = fmt.Fprint(w, "\033[?25h")
}


// Watch clears w and calls render every interval until ctx is done. Render
// errors go to errw and do not stop the loop.
func Watch(ctx context.Context, w, errw io.Writer, interval time.Duration, render func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	HideCursor(w)
	defer ShowCursor(w)

	for {
		ClearScreen(w)
		_, _ = fmt.Fprintf(w, "Last update: %s | Next refresh in %s | Press Ctrl+C to exit\n\n",
			time.Now().Format("15:04:05"), interval)

		if err := render(ctx); err != nil {
			_, _ = fmt.Fprintf(errw, "Error: %v\n", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			ClearScreen(w)
			_, _ = fmt.Fprintln(w, "Watch mode ended.")
			return nil
		}
	}
}
