package extract

import (
	"strings"
	"unicode/utf8"
)

// plainText returns content as a string, validating it is UTF-8. Invalid
// sequences are replaced with the replacement character.
type plainText struct{}

func (plainText) Extract(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "�"), nil
	}
	return string(content), nil
}
