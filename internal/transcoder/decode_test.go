package transcoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

func TestDecodeLine(t *testing.T) {
	decoders, err := NewLineDecoders(DefaultConsoleEncodings)
	require.NoError(t, err)
	require.Len(t, decoders, 3)

	text, ok := DecodeLine([]byte("frame= 10 fps=2.0\r"), decoders)
	assert.True(t, ok)
	assert.Equal(t, "frame= 10 fps=2.0\r", text)

	text, ok = DecodeLine([]byte("輸出 完成\n"), decoders)
	assert.True(t, ok)
	assert.Equal(t, "輸出 完成\n", text)
}

func TestDecodeLineFallsBackToBig5(t *testing.T) {
	decoders, err := NewLineDecoders(DefaultConsoleEncodings)
	require.NoError(t, err)

	raw, err := traditionalchinese.Big5.NewEncoder().Bytes([]byte("找不到檔案\n"))
	require.NoError(t, err)

	text, ok := DecodeLine(raw, decoders)
	assert.True(t, ok)
	assert.Equal(t, "找不到檔案\n", text)
}

func TestDecodeLineGBKOnly(t *testing.T) {
	decoders, err := NewLineDecoders([]string{"utf-8", "gbk"})
	require.NoError(t, err)

	raw, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("错误\n"))
	require.NoError(t, err)

	text, ok := DecodeLine(raw, decoders)
	assert.True(t, ok)
	assert.Equal(t, "错误\n", text)
}

func TestDecodeLineDropsUndecodable(t *testing.T) {
	decoders, err := NewLineDecoders([]string{"utf-8", "cp950"})
	require.NoError(t, err)

	_, ok := DecodeLine([]byte{0xff, 0xff, 0xff, '\n'}, decoders)
	assert.False(t, ok)

	_, ok = DecodeLine([]byte("x"), nil)
	assert.False(t, ok)
}

func TestNewLineDecodersUnknownEncoding(t *testing.T) {
	_, err := NewLineDecoders([]string{"utf-8", "klingon"})
	assert.ErrorContains(t, err, "klingon")
}
