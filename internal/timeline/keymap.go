package timeline

import (
	"strings"
	"unicode"
)

// KeyGroup is the logical class of a physical key.
type KeyGroup string

const (
	GroupLetter      KeyGroup = "letter"
	GroupDigit       KeyGroup = "digit"
	GroupModifier    KeyGroup = "modifier"
	GroupWhitespace  KeyGroup = "whitespace"
	GroupNavigation  KeyGroup = "navigation"
	GroupFunction    KeyGroup = "function"
	GroupPunctuation KeyGroup = "punctuation"
	GroupOther       KeyGroup = "other"
)

// CodeUnidentified is used for terminal keys with no physical code.
const CodeUnidentified = "Unidentified"

// KeyInfo is the normalized form of a physical key code.
type KeyInfo struct {
	Code    string
	Group   KeyGroup
	Display string // canonical name shown in the inspect table and status line
}

type keyEntry struct {
	group   KeyGroup
	display string
}

// keyTable covers every code that is not KeyX, DigitX or FX.
var keyTable = map[string]keyEntry{
	"ShiftLeft":    {GroupModifier, "Shift"},
	"ShiftRight":   {GroupModifier, "Shift"},
	"ControlLeft":  {GroupModifier, "Ctrl"},
	"ControlRight": {GroupModifier, "Ctrl"},
	"AltLeft":      {GroupModifier, "Alt"},
	"AltRight":     {GroupModifier, "Alt"},
	"MetaLeft":     {GroupModifier, "Meta"},
	"MetaRight":    {GroupModifier, "Meta"},
	"CapsLock":     {GroupModifier, "CapsLock"},

	"Space":     {GroupWhitespace, "Space"},
	"Enter":     {GroupWhitespace, "Enter"},
	"Tab":       {GroupWhitespace, "Tab"},
	"Backspace": {GroupWhitespace, "Backspace"},

	"ArrowUp":    {GroupNavigation, "Up"},
	"ArrowDown":  {GroupNavigation, "Down"},
	"ArrowLeft":  {GroupNavigation, "Left"},
	"ArrowRight": {GroupNavigation, "Right"},
	"Home":       {GroupNavigation, "Home"},
	"End":        {GroupNavigation, "End"},
	"PageUp":     {GroupNavigation, "PageUp"},
	"PageDown":   {GroupNavigation, "PageDown"},
	"Insert":     {GroupNavigation, "Insert"},
	"Delete":     {GroupNavigation, "Delete"},
	"Escape":     {GroupFunction, "Esc"},

	"Minus":        {GroupPunctuation, "-"},
	"Equal":        {GroupPunctuation, "="},
	"BracketLeft":  {GroupPunctuation, "["},
	"BracketRight": {GroupPunctuation, "]"},
	"Backslash":    {GroupPunctuation, "\\"},
	"Semicolon":    {GroupPunctuation, ";"},
	"Quote":        {GroupPunctuation, "'"},
	"Comma":        {GroupPunctuation, ","},
	"Period":       {GroupPunctuation, "."},
	"Slash":        {GroupPunctuation, "/"},
	"Backquote":    {GroupPunctuation, "`"},
}

// NormalizeKey classifies a physical key code. label is the logical key
// label reported with the press; it is used as the display label for
// letters, digits and unknown codes.
func NormalizeKey(code, label string) KeyInfo {
	if entry, ok := keyTable[code]; ok {
		return KeyInfo{Code: code, Group: entry.group, Display: entry.display}
	}

	switch {
	case isPrefixedCode(code, "Key", unicode.IsLetter):
		return KeyInfo{Code: code, Group: GroupLetter, Display: labelOr(label, strings.ToLower(code[3:]))}
	case isPrefixedCode(code, "Digit", unicode.IsDigit):
		return KeyInfo{Code: code, Group: GroupDigit, Display: labelOr(label, code[5:])}
	case isFunctionCode(code):
		return KeyInfo{Code: code, Group: GroupFunction, Display: code}
	}

	if label == " " {
		return KeyInfo{Code: code, Group: GroupWhitespace, Display: "Space"}
	}
	return KeyInfo{Code: code, Group: GroupOther, Display: labelOr(label, code)}
}

func labelOr(label, fallback string) string {
	if label == "" || label == " " {
		return fallback
	}
	return label
}

func isPrefixedCode(code, prefix string, accept func(rune) bool) bool {
	rest, ok := strings.CutPrefix(code, prefix)
	if !ok || len(rest) != 1 {
		return false
	}
	return accept(rune(rest[0]))
}

func isFunctionCode(code string) bool {
	rest, ok := strings.CutPrefix(code, "F")
	if !ok || rest == "" || len(rest) > 2 {
		return false
	}
	for _, r := range rest {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return rest != "0"
}

// terminalNames maps terminal key names to physical codes.
var terminalNames = map[string]string{
	" ":         "Space",
	"space":     "Space",
	"enter":     "Enter",
	"tab":       "Tab",
	"backspace": "Backspace",
	"esc":       "Escape",
	"up":        "ArrowUp",
	"down":      "ArrowDown",
	"left":      "ArrowLeft",
	"right":     "ArrowRight",
	"home":      "Home",
	"end":       "End",
	"pgup":      "PageUp",
	"pgdown":    "PageDown",
	"insert":    "Insert",
	"delete":    "Delete",
}

// punctuationCodes maps printed characters, shifted or not, to the US layout key.
var punctuationCodes = map[rune]string{
	'-': "Minus", '_': "Minus",
	'=': "Equal", '+': "Equal",
	'[': "BracketLeft", '{': "BracketLeft",
	']': "BracketRight", '}': "BracketRight",
	'\\': "Backslash", '|': "Backslash",
	';': "Semicolon", ':': "Semicolon",
	'\'': "Quote", '"': "Quote",
	',': "Comma", '<': "Comma",
	'.': "Period", '>': "Period",
	'/': "Slash", '?': "Slash",
	'`': "Backquote", '~': "Backquote",
	'!': "Digit1", '@': "Digit2", '#': "Digit3", '$': "Digit4", '%': "Digit5",
	'^': "Digit6", '&': "Digit7", '*': "Digit8", '(': "Digit9", ')': "Digit0",
}

// CodeFromTerminal maps a terminal key name such as "a", "A", "1", " " or
// "enter" to a physical code and a logical label.
func CodeFromTerminal(name string) (code, label string) {
	if code, ok := terminalNames[name]; ok {
		if code == "Space" {
			return code, " "
		}
		return code, name
	}

	runes := []rune(name)
	if len(runes) == 1 {
		r := runes[0]
		switch {
		case r <= unicode.MaxASCII && unicode.IsLetter(r):
			return "Key" + string(unicode.ToUpper(r)), name
		case r >= '0' && r <= '9':
			return "Digit" + name, name
		}
		if code, ok := punctuationCodes[r]; ok {
			return code, name
		}
	}

	if len(name) >= 2 && name[0] == 'f' && isFunctionCode("F"+name[1:]) {
		return "F" + name[1:], name
	}

	return CodeUnidentified, name
}
