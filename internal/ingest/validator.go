// Package ingest 实现写入请求的校验链：API Key -> Content-Type -> 请求体 -> 帧校验。
// 每一步独立、顺序固定，任一步失败即终止请求。
package ingest

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/taoyao-code/frame-ingest/internal/protocol/modbus"
)

// ContentTypeJSON 唯一接受的 Content-Type，按字符串完全匹配
const ContentTypeJSON = "application/json"

// Kind 校验失败类型
type Kind int

const (
	KindUnauthorized Kind = iota + 1
	KindInvalidContentType
	KindEmptyOrMissingBody
	KindMissingKey
	KindMalformedFrame
)

var kindNames = map[Kind]string{
	KindUnauthorized:       "unauthorized",
	KindInvalidContentType: "invalid_content_type",
	KindEmptyOrMissingBody: "empty_body",
	KindMissingKey:         "missing_key",
	KindMalformedFrame:     "malformed_frame",
}

// String 用作指标标签
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Status 对应的 HTTP 状态码
func (k Kind) Status() int {
	if k == KindUnauthorized {
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}

// ValidationError 校验失败，Message 直接返回给调用方
type ValidationError struct {
	Kind    Kind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// AsValidationError 从 err 中取出 ValidationError
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Messages 各类失败返回给客户端的文案。
// MissingKey 中的 %s 会替换为字段名。
type Messages struct {
	Unauthorized       string
	InvalidContentType string
	EmptyBody          string
	MissingKey         string
	MalformedFrame     string
}

// DefaultMessages 通用文案
var DefaultMessages = Messages{
	Unauthorized:       "Unauthorized. Invalid or missing API key.",
	InvalidContentType: "Invalid Content-Type. Expected application/json.",
	EmptyBody:          "Empty request body",
	MissingKey:         "Missing key: '%s'",
	MalformedFrame:     "Malformed Frame",
}

func (m Messages) withDefaults() Messages {
	if m.Unauthorized == "" {
		m.Unauthorized = DefaultMessages.Unauthorized
	}
	if m.InvalidContentType == "" {
		m.InvalidContentType = DefaultMessages.InvalidContentType
	}
	if m.EmptyBody == "" {
		m.EmptyBody = DefaultMessages.EmptyBody
	}
	if m.MissingKey == "" {
		m.MissingKey = DefaultMessages.MissingKey
	}
	if m.MalformedFrame == "" {
		m.MalformedFrame = DefaultMessages.MalformedFrame
	}
	return m
}

// Options 校验器配置
type Options struct {
	// APIKey 共享密钥
	APIKey string
	// APIKeyHeader 携带密钥的请求头，如 "Authorization" 或 "api-key"
	APIKeyHeader string
	// RequireContentType 是否要求 Content-Type: application/json
	RequireContentType bool
	// Field 请求体 JSON 中携带帧的字段名
	Field string
	// StrictFrameLength 拒绝没有数据字节的帧
	StrictFrameLength bool
	Messages          Messages
}

// Validator 可配置的请求校验器，两个接入面各持有一个实例
type Validator struct {
	opts   Options
	verify func(string) bool
}

// New 创建校验器
func New(opts Options) (*Validator, error) {
	if opts.APIKey == "" {
		return nil, errors.New("ingest: empty api key")
	}
	if opts.APIKeyHeader == "" {
		return nil, errors.New("ingest: empty api key header")
	}
	if opts.Field == "" {
		return nil, errors.New("ingest: empty field name")
	}
	opts.Messages = opts.Messages.withDefaults()
	v := &Validator{opts: opts, verify: modbus.Verify}
	if opts.StrictFrameLength {
		v.verify = modbus.VerifyStrict
	}
	return v, nil
}

// Field 帧字段名
func (v *Validator) Field() string { return v.opts.Field }

// APIKeyHeader 密钥请求头
func (v *Validator) APIKeyHeader() string { return v.opts.APIKeyHeader }

// RequiresContentType 是否启用 Content-Type 校验
func (v *Validator) RequiresContentType() bool { return v.opts.RequireContentType }

// CheckAPIKey 第 1 步：密钥缺失或不匹配
func (v *Validator) CheckAPIKey(h http.Header) error {
	got := h.Get(v.opts.APIKeyHeader)
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(v.opts.APIKey)) != 1 {
		return &ValidationError{Kind: KindUnauthorized, Message: v.opts.Messages.Unauthorized}
	}
	return nil
}

// CheckContentType 第 2 步：未启用时总是通过
func (v *Validator) CheckContentType(h http.Header) error {
	if !v.opts.RequireContentType {
		return nil
	}
	if h.Get("Content-Type") != ContentTypeJSON {
		return &ValidationError{Kind: KindInvalidContentType, Message: v.opts.Messages.InvalidContentType}
	}
	return nil
}

// Gate 读写共用的请求头校验（第 1、2 步）
func (v *Validator) Gate(h http.Header) error {
	if err := v.CheckAPIKey(h); err != nil {
		return err
	}
	return v.CheckContentType(h)
}

// DecodeFrame 第 3 步：请求体必须是非空 JSON 对象且包含帧字段。
// 字段值不是字符串时按帧格式错误处理。
func (v *Validator) DecodeFrame(body []byte) (string, error) {
	empty := &ValidationError{Kind: KindEmptyOrMissingBody, Message: v.opts.Messages.EmptyBody}
	if len(bytes.TrimSpace(body)) == 0 {
		return "", empty
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || len(obj) == 0 {
		return "", empty
	}
	raw, ok := obj[v.opts.Field]
	if !ok {
		msg := v.opts.Messages.MissingKey
		if strings.Contains(msg, "%s") {
			msg = fmt.Sprintf(msg, v.opts.Field)
		}
		return "", &ValidationError{Kind: KindMissingKey, Message: msg}
	}
	var frame string
	if err := json.Unmarshal(raw, &frame); err != nil {
		return "", &ValidationError{Kind: KindMalformedFrame, Message: v.opts.Messages.MalformedFrame}
	}
	return frame, nil
}

// CheckFrame 第 4 步：CRC 校验，所有内部错误统一为 MalformedFrame
func (v *Validator) CheckFrame(frame string) error {
	if !v.verify(frame) {
		return &ValidationError{Kind: KindMalformedFrame, Message: v.opts.Messages.MalformedFrame}
	}
	return nil
}

// ValidateBody 第 3、4 步
func (v *Validator) ValidateBody(body []byte) (string, error) {
	frame, err := v.DecodeFrame(body)
	if err != nil {
		return "", err
	}
	if err := v.CheckFrame(frame); err != nil {
		return "", err
	}
	return frame, nil
}

// Validate 完整校验链，成功时返回原样的帧字符串
func (v *Validator) Validate(h http.Header, body []byte) (string, error) {
	if err := v.Gate(h); err != nil {
		return "", err
	}
	return v.ValidateBody(body)
}
