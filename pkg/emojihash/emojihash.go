// Package emojihash renders a verification fingerprint as a short sequence
// of emoji that two parties can compare over an out-of-band channel to
// detect connection tampering.
package emojihash

import "strings"

// CodeLength is the number of emoji composing a verification code.
const CodeLength = 8

// alphabet holds 64 visually distinct emoji. Each byte of the fingerprint
// selects one entry by its 6 lowest bits.
var alphabet = []string{
	"🐶", "🐱", "🐭", "🐹", "🐰", "🦊", "🐻", "🐼",
	"🐨", "🐯", "🦁", "🐮", "🐷", "🐸", "🐵", "🐔",
	"🐧", "🐦", "🦆", "🦅", "🦉", "🐺", "🐗", "🐴",
	"🦄", "🐝", "🐛", "🦋", "🐌", "🐞", "🐜", "🐢",
	"🍏", "🍎", "🍐", "🍊", "🍋", "🍌", "🍉", "🍇",
	"🍓", "🍈", "🍒", "🍑", "🍍", "🥝", "🍅", "🥥",
	"⚽", "🏀", "🏈", "⚾", "🎾", "🏐", "🎱", "🏓",
	"🎸", "🎺", "🎻", "🥁", "🎹", "🎲", "🎯", "🎳",
}

// Render maps the first CodeLength bytes of the given fingerprint to its
// emoji code. A nil or empty fingerprint yields an empty string.
func Render(fingerprint []byte) string {
	if len(fingerprint) == 0 {
		return ""
	}
	n := CodeLength
	if len(fingerprint) < n {
		n = len(fingerprint)
	}
	var sb strings.Builder
	for _, b := range fingerprint[:n] {
		sb.WriteString(alphabet[int(b)&0x3f])
	}
	return sb.String()
}
