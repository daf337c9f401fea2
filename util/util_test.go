package util

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestDigitClasses(t *testing.T) {
	testData := []struct {
		b     byte
		hex   bool
		octal bool
	}{
		{b: '0', hex: true, octal: true},
		{b: '7', hex: true, octal: true},
		{b: '9', hex: true},
		{b: 'a', hex: true},
		{b: 'F', hex: true},
		{b: 'g'},
	}
	for _, data := range testData {
		assert.Equal(t, data.hex, IsHexNumber(data.b), string(data.b))
		assert.Equal(t, data.octal, IsOctalNumber(data.b), string(data.b))
	}
}

func TestUnescape(t *testing.T) {
	testData := []struct {
		content string
		expect  string
	}{
		{content: `a\tb`, expect: "a\tb"},
		{content: `line\n`, expect: "line\n"},
		{content: `\"quoted\"`, expect: `"quoted"`},
		{content: `\q`, expect: "\x00"},
		{content: `plain`, expect: "plain"},
	}
	for _, data := range testData {
		assert.Equal(t, data.expect, Unescape([]byte(data.content)))
	}
	assert.Equal(t, 3, len(Unescape([]byte(`a\tb`))))
}
