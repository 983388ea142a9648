package transcoder

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/traditionalchinese"
)

// DefaultConsoleEncodings are tried in order on every ffmpeg output line.
var DefaultConsoleEncodings = []string{"utf-8", "cp950", "big5"}

// LineDecoder turns raw console bytes into text, or reports that it cannot.
type LineDecoder struct {
	Name   string
	Decode func(raw []byte) (string, bool)
}

// NewLineDecoders resolves encoding names (WHATWG labels, plus "cp950")
// into decoders.
func NewLineDecoders(names []string) ([]LineDecoder, error) {
	decoders := make([]LineDecoder, 0, len(names))
	for _, name := range names {
		d, err := newLineDecoder(name)
		if err != nil {
			return nil, err
		}
		decoders = append(decoders, d)
	}
	return decoders, nil
}

func newLineDecoder(name string) (LineDecoder, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	switch label {
	case "utf-8", "utf8":
		return LineDecoder{Name: "utf-8", Decode: decodeUTF8}, nil
	case "cp950":
		return textDecoder(label, traditionalchinese.Big5), nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return LineDecoder{}, fmt.Errorf("unknown console encoding %q: %w", name, err)
	}
	return textDecoder(label, enc), nil
}

func decodeUTF8(raw []byte) (string, bool) {
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// textDecoder treats any replacement character in the output as a failed
// decode; x/text substitutes U+FFFD for invalid input instead of erroring.
func textDecoder(name string, enc encoding.Encoding) LineDecoder {
	return LineDecoder{
		Name: name,
		Decode: func(raw []byte) (string, bool) {
			out, err := enc.NewDecoder().Bytes(raw)
			if err != nil || !utf8.Valid(out) {
				return "", false
			}
			s := string(out)
			if strings.ContainsRune(s, utf8.RuneError) {
				return "", false
			}
			return s, true
		},
	}
}

// DecodeLine returns the first successful decode of raw. ok is false when
// every decoder rejected the line; callers drop such lines.
func DecodeLine(raw []byte, decoders []LineDecoder) (text string, ok bool) {
	for _, d := range decoders {
		if s, ok := d.Decode(raw); ok {
			return s, true
		}
	}
	return "", false
}
