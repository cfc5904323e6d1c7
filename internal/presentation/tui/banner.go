package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the agora ASCII banner. Writers that are not a
// terminal get the plain letters.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"                                 ", "#818cf8"},
		{"   __ _  __ _  ___  _ __ __ _    ", "#a78bfa"},
		{"  / _` |/ _` |/ _ \\| '__/ _` |   ", "#c084fc"},
		{" | (_| | (_| | (_) | | | (_| |   ", "#e879f9"},
		{"  \\__,_|\\__, |\\___/|_|  \\__,_|   ", "#f472b6"},
		{"        |___/                    ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
