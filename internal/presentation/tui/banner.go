package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/kinetic"
	"github.com/muesli/termenv"
)

// PrintBanner outputs the kinetic ASCII art banner followed by the version.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _    _            _   _      ", "#34d399"},
		{"| | _(_)_ __   ___| |_(_) ___ ", "#2dd4bf"},
		{"| |/ / | '_ \\ / _ \\ __| |/ __|", "#22d3ee"},
		{"|   <| | | | |  __/ |_| | (__ ", "#38bdf8"},
		{"|_|\\_\\_|_| |_|\\___|\\__|_|\\___|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+strings.TrimSpace(kinetic.Version)).Faint())
	fmt.Fprintln(w)
}
