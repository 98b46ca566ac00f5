package report

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// DisplayInfoMessage prints a styled informational message to the console.
func DisplayInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// DisplayFatalMessage prints a styled fatal error message to the console.
func DisplayFatalMessage(msg string) {
	ErrorStyleBG.Print("Fatal Error")
	ErrorColorFG.Println(" " + msg)
}

// WriteErrors writes the machine-readable display line of each error to w, one
// error per line, in the order the errors were recorded.
func WriteErrors(w io.Writer, errs []*CompileError) {
	for _, err := range errs {
		fmt.Fprintln(w, err.Error())
	}
}
