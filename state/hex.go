//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package state

import (
	"strings"

	"github.com/markkurossi/dlstat/env"
)

// Parse parses a state from its textual representation. The default
// form is hexadecimal with one digit per nibble cell or two digits per
// byte cell, cell 0 first. A "0b" prefix selects a binary form with
// CellBits digits per cell, most significant bit of each cell first,
// unless the input has the width of the hexadecimal form.
// Underscores and spaces are ignored in both forms.
func (l Layout) Parse(input string) (State, error) {
	str := strings.Map(func(r rune) rune {
		if r == '_' || r == ' ' {
			return -1
		}
		return r
	}, input)

	digits := l.CellBits / 4

	// Hex digits "0b" start a binary literal only if the input is not
	// a hex literal of the layout's width. The widths of the two
	// forms never coincide.
	if (strings.HasPrefix(str, "0b") || strings.HasPrefix(str, "0B")) &&
		len(str) != l.Cells*digits {
		return l.parseBinary(input, str[2:])
	}
	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		str = str[2:]
	}

	if len(str) != l.Cells*digits {
		return nil, env.ConfigErrorf("state %q: expected %d hex digits, got %d",
			input, l.Cells*digits, len(str))
	}
	result := l.New()
	for i := 0; i < len(str); i++ {
		v, ok := hexValue(str[i])
		if !ok {
			return nil, env.ConfigErrorf("state %q: invalid hex digit '%c'",
				input, str[i])
		}
		result[i/digits] = result[i/digits]<<4 | v
	}
	return result, nil
}

func (l Layout) parseBinary(input, str string) (State, error) {
	if len(str) != l.Bits() {
		return nil, env.ConfigErrorf("state %q: expected %d binary digits, got %d",
			input, l.Bits(), len(str))
	}
	result := l.New()
	for i := 0; i < len(str); i++ {
		var bit byte
		switch str[i] {
		case '0':
		case '1':
			bit = 1
		default:
			return nil, env.ConfigErrorf("state %q: invalid binary digit '%c'",
				input, str[i])
		}
		result[i/l.CellBits] = result[i/l.CellBits]<<1 | bit
	}
	return result, nil
}

func hexValue(ch byte) (byte, bool) {
	switch {
	case '0' <= ch && ch <= '9':
		return ch - '0', true
	case 'a' <= ch && ch <= 'f':
		return ch - 'a' + 10, true
	case 'A' <= ch && ch <= 'F':
		return ch - 'A' + 10, true
	default:
		return 0, false
	}
}

const hexDigits = "0123456789abcdef"

// Format formats the state in the hexadecimal form accepted by Parse.
func (l Layout) Format(s State) string {
	var sb strings.Builder
	m := l.CellMask()
	for _, c := range s {
		c &= m
		if l.CellBits == 8 {
			sb.WriteByte(hexDigits[c>>4])
		}
		sb.WriteByte(hexDigits[c&0xf])
	}
	return sb.String()
}
