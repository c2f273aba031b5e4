package modbus

import (
	"encoding/hex"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type crcVector struct {
	Name string `yaml:"name"`
	Data string `yaml:"data"`
	CRC  uint16 `yaml:"crc"`
}

func loadVectors(t *testing.T) []crcVector {
	t.Helper()
	raw, err := os.ReadFile("testdata/crc_vectors.yaml")
	require.NoError(t, err)
	var doc struct {
		Vectors []crcVector `yaml:"vectors"`
	}
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	require.NotEmpty(t, doc.Vectors)
	return doc.Vectors
}

func TestCRC16Vectors(t *testing.T) {
	for _, v := range loadVectors(t) {
		t.Run(v.Name, func(t *testing.T) {
			data, err := hex.DecodeString(v.Data)
			require.NoError(t, err)
			assert.Equal(t, v.CRC, CRC16(data), "CRC16(%s)", v.Data)
			// 重复计算结果一致
			assert.Equal(t, CRC16(data), CRC16(data))
			// 按线上顺序拼出的帧能读回同一个值
			got, err := ExtractChecksum(BuildFrame(data))
			require.NoError(t, err)
			assert.Equal(t, v.CRC, got)
		})
	}
}

func TestCRC16Empty(t *testing.T) {
	assert.Equal(t, uint16(0xFFFF), CRC16(nil))
	assert.Equal(t, uint16(0xFFFF), CRC16([]byte{}))
}

func TestExtractChecksum(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    uint16
		wantErr bool
	}{
		{name: "低字节在前", raw: "010401e3", want: 0xE301},
		{name: "大写", raw: "010401E3", want: 0xE301},
		{name: "只有校验字节", raw: "ffff", want: 0xFFFF},
		{name: "太短", raw: "ff", wantErr: true},
		{name: "非十六进制", raw: "0104zz01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractChecksum(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFrame(t *testing.T) {
	b, err := ParseFrame("010401e3")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x04, 0x01, 0xE3}, b)

	for _, raw := range []string{"", "0", "01", "01040", "0104g1e3", " 10401e3", "+10401e3"} {
		_, err := ParseFrame(raw)
		assert.ErrorIs(t, err, ErrFormat, "raw=%q", raw)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "正确的帧", raw: "010401e3", want: true},
		{name: "大写正确的帧", raw: "01030000000AC5CD", want: true},
		{name: "混合大小写", raw: "01030000000aC5cd", want: true},
		{name: "校验字节顺序颠倒", raw: "0104e301", want: false},
		{name: "尾部翻转", raw: "0104eb0a", want: false},
		{name: "奇数长度", raw: "010401e", want: false},
		{name: "奇数长度带多余字符", raw: "010401e30", want: false},
		{name: "非十六进制字符", raw: "01x401e3", want: false},
		{name: "空字符串", raw: "", want: false},
		{name: "单字节", raw: "ff", want: false},
		{name: "只有校验字节且为FFFF", raw: "ffff", want: true},
		{name: "只有校验字节但非FFFF", raw: "0000", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Verify(tt.raw))
		})
	}
}

func TestVerifyStrictRejectsChecksumOnlyFrame(t *testing.T) {
	assert.False(t, VerifyStrict("ffff"))
	assert.True(t, VerifyStrict("010401e3"))
	assert.True(t, VerifyStrict("0A3F47"))
}

func TestCheckErrors(t *testing.T) {
	assert.True(t, errors.Is(Check("0104e301"), ErrChecksumMismatch))
	assert.True(t, errors.Is(Check("zz"), ErrFormat))
	assert.NoError(t, Check("010401e3"))
}

func TestBuildFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{0x01},
		{0x01, 0x04},
		{0x00, 0x00, 0x00},
		{0x11, 0x03, 0x00, 0x6B, 0x00, 0x03},
		{0xFF, 0xFE, 0xFD, 0xFC, 0xFB, 0xFA, 0xF9, 0xF8, 0xF7, 0xF6, 0xF5},
	}
	for _, p := range payloads {
		frame := BuildFrame(p)
		assert.True(t, Verify(frame), "frame=%s", frame)
		assert.True(t, VerifyStrict(frame), "frame=%s", frame)
		// 帧尾读出的校验值与数据区的 CRC 一致
		got, err := ExtractChecksum(frame)
		require.NoError(t, err)
		assert.Equal(t, CRC16(p), got, "frame=%s", frame)
	}
	assert.Equal(t, "010401E3", BuildFrame([]byte{0x01, 0x04}))

	// 所有单字节数据
	for i := 0; i < 256; i++ {
		assert.True(t, Verify(BuildFrame([]byte{byte(i)})))
	}
}

func TestAppendCRCDoesNotAlias(t *testing.T) {
	src := make([]byte, 2, 8)
	src[0], src[1] = 0x01, 0x04
	out := AppendCRC(src)
	assert.Equal(t, []byte{0x01, 0x04, 0x01, 0xE3}, out)
	assert.Len(t, src, 2)
}

func TestBuildRequest(t *testing.T) {
	got, err := BuildRequest(0x01, FuncReadHoldingRegisters, 0x0000, 10)
	require.NoError(t, err)
	assert.Equal(t, "01030000000AC5CD", got)

	got, err = BuildRequest(0x01, FuncWriteSingleRegister, 0x0001, 0x0003)
	require.NoError(t, err)
	assert.Equal(t, "010600010003980B", got)

	_, err = BuildRequest(0x01, 0x10, 0, 1)
	assert.Error(t, err)
	_, err = BuildRequest(0x01, FuncReadHoldingRegisters, 0, 0)
	assert.Error(t, err)
}

func TestDecodeRegisters(t *testing.T) {
	regs, err := DecodeRegisters("010304000A01025A60")
	require.NoError(t, err)
	assert.Equal(t, []uint16{0x000A, 0x0102}, regs)

	_, err = DecodeRegisters("010304000A01025A61")
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	// byteCount 大于实际数据
	_, err = DecodeRegisters(BuildFrame([]byte{0x01, 0x03, 0x08, 0x00, 0x01}))
	assert.ErrorIs(t, err, ErrFormat)
}
