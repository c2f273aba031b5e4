// Package modbus 实现上报帧的 CRC-16/MODBUS 完整性校验。
//
// 帧格式：十六进制字符串，数据字节在前，最后两个字节为校验值，低字节在前。
//
//	01 04 | 01 E3   ->  CRC16(01 04) = 0xE301
package modbus

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	crcInit = 0xFFFF
	crcPoly = 0xA001 // 0x8005 的位反转

	// ChecksumBytes 帧尾校验字节数
	ChecksumBytes = 2
	// MinFrameBytes 宽松模式下的最短帧（只有校验字节）
	MinFrameBytes = ChecksumBytes
	// MinStrictFrameBytes 严格模式下的最短帧（至少 1 个数据字节）
	MinStrictFrameBytes = ChecksumBytes + 1
)

var (
	// ErrFormat 帧不是合法的十六进制字符串或长度不足
	ErrFormat = errors.New("malformed frame")
	// ErrChecksumMismatch CRC校验失败
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// CRC16 计算 CRC-16/MODBUS（逐位算法，无查表）
func CRC16(data []byte) uint16 {
	crc := uint16(crcInit)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&0x0001 != 0 {
				crc = (crc >> 1) ^ crcPoly
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// ParseFrame 将十六进制帧解码为字节序列（含尾部校验字节）
func ParseFrame(raw string) ([]byte, error) {
	return parseFrame(raw, MinFrameBytes)
}

func parseFrame(raw string, minBytes int) ([]byte, error) {
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length %d", ErrFormat, len(raw))
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if len(b) < minBytes {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrFormat, len(b), minBytes)
	}
	return b, nil
}

// ExtractChecksum 读取帧尾 4 个十六进制字符中的校验值。
// 线上低字节在前：raw[len-4:len-2] 为低字节，raw[len-2:] 为高字节。
func ExtractChecksum(raw string) (uint16, error) {
	n := len(raw)
	if n < 2*ChecksumBytes {
		return 0, fmt.Errorf("%w: too short for checksum", ErrFormat)
	}
	lo, err := hex.DecodeString(raw[n-4 : n-2])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	hi, err := hex.DecodeString(raw[n-2:])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return uint16(lo[0]) | uint16(hi[0])<<8, nil
}

// Check 校验帧，返回具体错误（ErrFormat 或 ErrChecksumMismatch）
func Check(raw string) error {
	return check(raw, MinFrameBytes)
}

// CheckStrict 同 Check，但要求至少 1 个数据字节
func CheckStrict(raw string) error {
	return check(raw, MinStrictFrameBytes)
}

func check(raw string, minBytes int) error {
	b, err := parseFrame(raw, minBytes)
	if err != nil {
		return err
	}
	// 数据区为 raw[0:len-4]，只有校验字节时为空，CRC16(空) = 0xFFFF
	payload := b[:len(b)-ChecksumBytes]
	received, err := ExtractChecksum(raw)
	if err != nil {
		return err
	}
	if CRC16(payload) != received {
		return ErrChecksumMismatch
	}
	return nil
}

// Verify 对任意输入都不报错：格式错误与校验失败一律返回 false
func Verify(raw string) bool {
	return Check(raw) == nil
}

// VerifyStrict 严格模式的 Verify
func VerifyStrict(raw string) bool {
	return CheckStrict(raw) == nil
}

// AppendCRC 在数据后追加校验值（低字节在前）
func AppendCRC(payload []byte) []byte {
	crc := CRC16(payload)
	out := make([]byte, len(payload), len(payload)+ChecksumBytes)
	copy(out, payload)
	return append(out, byte(crc), byte(crc>>8))
}

// BuildFrame 生成带校验的十六进制帧（大写）
func BuildFrame(payload []byte) string {
	return strings.ToUpper(hex.EncodeToString(AppendCRC(payload)))
}

// 支持的功能码
const (
	FuncReadHoldingRegisters = 0x03
	FuncWriteSingleRegister  = 0x06
)

// BuildRequest 生成读保持寄存器(0x03)或写单个寄存器(0x06)请求帧。
// 0x03: addr=起始寄存器, value=寄存器数量；0x06: addr=寄存器地址, value=写入值。
func BuildRequest(slave, function byte, addr, value uint16) (string, error) {
	switch function {
	case FuncReadHoldingRegisters:
		if value == 0 {
			return "", errors.New("register count must be positive")
		}
	case FuncWriteSingleRegister:
	default:
		return "", fmt.Errorf("unsupported function code 0x%02X", function)
	}
	pdu := []byte{slave, function, byte(addr >> 8), byte(addr), byte(value >> 8), byte(value)}
	return BuildFrame(pdu), nil
}

// DecodeRegisters 解析 0x03 响应帧中的寄存器值（大端）。
// 响应格式: slave | function | byteCount | data... | crc
func DecodeRegisters(raw string) ([]uint16, error) {
	if err := CheckStrict(raw); err != nil {
		return nil, err
	}
	b, _ := hex.DecodeString(raw)
	if len(b) < 5 {
		return nil, fmt.Errorf("%w: response too short", ErrFormat)
	}
	count := int(b[2])
	if count%2 != 0 || len(b) < 3+count+ChecksumBytes {
		return nil, fmt.Errorf("%w: byte count %d does not match frame length", ErrFormat, count)
	}
	regs := make([]uint16, 0, count/2)
	for i := 0; i < count; i += 2 {
		regs = append(regs, uint16(b[3+i])<<8|uint16(b[4+i]))
	}
	return regs, nil
}
