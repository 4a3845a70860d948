package display

import (
	"fmt"
	"io"

	"github.com/backmassage/rawreel/internal/term"
)

// PrintBanner prints the ASCII art banner and version; magenta when the
// palette is enabled.
func PrintBanner(w io.Writer, p term.Palette, version string) {
	fmt.Fprint(w, p.Magenta)
	fmt.Fprint(w, `                                   _
 _ __ __ ___      ___ __ ___  ___| |
| '__/ _`+"`"+` \ \ /\ / / '__/ _ \/ _ \ |
| | | (_| |\ V  V /| | |  __/  __/ |
|_|  \__,_| \_/\_/ |_|  \___|\___|_|
`)
	fmt.Fprint(w, p.NC)
	fmt.Fprintf(w, "  DNG → flat → LUT  v%s\n\n", version)
}
