package util

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsOctalNumber(b byte) bool {
	return b >= '0' && b <= '7'
}

func IsHexNumber(b byte) bool {
	return IsNumber(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func IsLetterOrUnderscore(b byte) bool {
	return IsLetter(b) || IsUnderScore(b)
}

func IsLetterOrUnderscoreOrNumber(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsNumber(b)
}

// EscapeChar maps the character following a backslash to the character it stands for.
// Unknown escapes degrade to the null character.
func EscapeChar(b byte) byte {
	switch b {
	case 'n':
		return '\n'
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case '\'':
		return '\''
	case '"':
		return '"'
	case '?':
		return '?'
	case '\\':
		return '\\'
	}
	return 0
}

// Unescape replaces every backslash pair in s with its single character value.
func Unescape(s []byte) string {
	ret := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			ret = append(ret, EscapeChar(s[i]))
			continue
		}
		ret = append(ret, s[i])
	}
	return string(ret)
}
