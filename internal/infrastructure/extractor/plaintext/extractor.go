package plaintext

import (
	"errors"
	"strings"
	"unicode/utf8"
)

var ErrBinaryContent = errors.New("content is not valid UTF-8 text")

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(data []byte) ([]string, error) {
	if !utf8.Valid(data) {
		return nil, ErrBinaryContent
	}

	text := strings.TrimPrefix(string(data), "\ufeff")
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return nil, nil
	}
	return []string{text}, nil
}
