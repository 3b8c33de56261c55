package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		code, label string
		want        KeyInfo
	}{
		{"KeyA", "a", KeyInfo{"KeyA", GroupLetter, "a"}},
		{"KeyA", "A", KeyInfo{"KeyA", GroupLetter, "A"}},
		{"KeyQ", "", KeyInfo{"KeyQ", GroupLetter, "q"}},
		{"Digit7", "7", KeyInfo{"Digit7", GroupDigit, "7"}},
		{"Space", " ", KeyInfo{"Space", GroupWhitespace, "Space"}},
		{"ShiftLeft", "Shift", KeyInfo{"ShiftLeft", GroupModifier, "Shift"}},
		{"ShiftRight", "", KeyInfo{"ShiftRight", GroupModifier, "Shift"}},
		{"ControlRight", "Control", KeyInfo{"ControlRight", GroupModifier, "Ctrl"}},
		{"ArrowLeft", "ArrowLeft", KeyInfo{"ArrowLeft", GroupNavigation, "Left"}},
		{"F5", "F5", KeyInfo{"F5", GroupFunction, "F5"}},
		{"F12", "", KeyInfo{"F12", GroupFunction, "F12"}},
		{"Comma", ",", KeyInfo{"Comma", GroupPunctuation, ","}},
		{"Unidentified", " ", KeyInfo{"Unidentified", GroupWhitespace, "Space"}},
		{"IntlRo", "ろ", KeyInfo{"IntlRo", GroupOther, "ろ"}},
		{"KeyAB", "", KeyInfo{"KeyAB", GroupOther, "KeyAB"}},
		{"F0", "", KeyInfo{"F0", GroupOther, "F0"}},
	}

	for _, tt := range tests {
		t.Run(tt.code+"/"+tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.code, tt.label))
		})
	}
}

func TestCodeFromTerminal(t *testing.T) {
	tests := []struct {
		name      string
		wantCode  string
		wantLabel string
	}{
		{"a", "KeyA", "a"},
		{"A", "KeyA", "A"},
		{"1", "Digit1", "1"},
		{" ", "Space", " "},
		{"space", "Space", " "},
		{"enter", "Enter", "enter"},
		{"up", "ArrowUp", "up"},
		{"!", "Digit1", "!"},
		{"?", "Slash", "?"},
		{"f3", "F3", "f3"},
		{"ctrl+a", CodeUnidentified, "ctrl+a"},
		{"é", CodeUnidentified, "é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, label := CodeFromTerminal(tt.name)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantLabel, label)
		})
	}
}
