package msi

import (
	"regexp"
)

// Custom action source/target kinds, masked from the low 6 bits of the Type
// column. See https://learn.microsoft.com/en-us/windows/win32/msi/summary-list-of-all-custom-action-types
var customActionTypes = map[uint32]string{
	0x01: "DLL file stored in a Binary table stream.",
	0x02: "EXE file stored in a Binary table stream.",
	0x05: "JScript file stored in a Binary table stream.",
	0x06: "VBScript file stored in a Binary table stream.",
	0x11: "DLL file that is installed with a product.",
	0x12: "EXE file that is installed with a product.",
	0x13: "Displays a specified error message and returns failure, terminating the installation.",
	0x15: "JScript file that is installed with a product.",
	0x16: "VBScript file that is installed with a product.",
	0x22: "EXE file having a path referencing a directory.",
	0x23: "Directory set with formatted text.",
	0x25: "JScript text stored in this sequence table.",
	0x26: "VBScript text stored in this sequence table.",
	0x32: "EXE file having a path specified by a property value.",
	0x33: "Property set with formatted text.",
	0x35: "JScript text specified by a property value.",
	0x36: "VBScript text specified by a property value.",
}

const (
	actionJScriptText   = 0x25
	actionVBScriptText  = 0x26
	actionFormattedText = 0x33
)

var (
	formatMarkers  = regexp.MustCompile(`[\x01-\x05]`)
	formatEscapes  = regexp.MustCompile(`\[\\(.)\]`)
	scriptFileExts = map[uint32]string{actionJScriptText: "js", actionVBScriptText: "vbs"}
)

// carveFormatted strips the formatted-text framing from a type 0x33 custom
// action target. The payload starts just past the last control-character
// marker in \x01-\x05; when no marker exists there is nothing to carve.
// This offset rule is reverse-engineered from observed installer output and
// is best-effort, which is why it lives behind its own function.
func carveFormatted(text string) (string, bool) {
	marks := formatMarkers.FindAllStringIndex(text, -1)
	if len(marks) == 0 {
		return "", false
	}
	offset := marks[len(marks)-1][1]
	return formatEscapes.ReplaceAllString(text[offset:], "$1"), true
}
