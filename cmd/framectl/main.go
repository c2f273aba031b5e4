// framectl 是帧接入服务的命令行工具：计算/追加 CRC、构造 Modbus 请求、
// 本地校验帧，以及向运行中的服务发送帧。
package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/taoyao-code/frame-ingest/internal/protocol/modbus"
)

// exitError 非零退出码但不打印 error 前缀（例如校验失败）
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", int(e)) }
func (e exitError) ExitCode() int { return int(e) }

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

const usage = `framectl - Modbus RTU frame tool

Usage:
  framectl crc <hex>                      CRC-16/MODBUS of the given bytes
  framectl build <hex>                    append CRC (low byte first)
  framectl build --slave 1 --func 3 --addr 0 --value 10
                                          build a 0x03/0x06 request frame
  framectl verify [--strict] <frame>      check a hex frame
  framectl decode <frame>                 decode a 0x03 response into registers
  framectl send [flags] <frame>           POST a frame to a running server
`

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return exitError(2)
	}
	switch args[0] {
	case "crc":
		return runCRC(args[1:], out)
	case "build":
		return runBuild(args[1:], out)
	case "verify":
		return runVerify(args[1:], out)
	case "decode":
		return runDecode(args[1:], out)
	case "send":
		return runSend(args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func oneArg(fs *pflag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%s: expected exactly one %s", fs.Name(), what)
	}
	return fs.Arg(0), nil
}

func runCRC(args []string, out io.Writer) error {
	fs := newFlagSet("crc")
	if err := fs.Parse(args); err != nil {
		return err
	}
	raw, err := oneArg(fs, "hex string")
	if err != nil {
		return err
	}
	data, err := hex.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("crc: %w", err)
	}
	crc := modbus.CRC16(data)
	fmt.Fprintf(out, "0x%04X (wire: %02X %02X)\n", crc, byte(crc), byte(crc>>8))
	return nil
}

func runBuild(args []string, out io.Writer) error {
	fs := newFlagSet("build")
	slave := fs.Uint8("slave", 1, "slave address")
	function := fs.Uint8("func", 0, "function code: 3 (read holding registers) or 6 (write single register)")
	addr := fs.Uint16("addr", 0, "register address")
	value := fs.Uint16("value", 0, "register count (0x03) or value to write (0x06)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.Changed("func") {
		frame, err := modbus.BuildRequest(*slave, *function, *addr, *value)
		if err != nil {
			return fmt.Errorf("build: %w", err)
		}
		fmt.Fprintln(out, frame)
		return nil
	}

	raw, err := oneArg(fs, "hex payload")
	if err != nil {
		return err
	}
	payload, err := hex.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	fmt.Fprintln(out, modbus.BuildFrame(payload))
	return nil
}

func runVerify(args []string, out io.Writer) error {
	fs := newFlagSet("verify")
	strict := fs.Bool("strict", false, "reject frames without data bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	frame, err := oneArg(fs, "frame")
	if err != nil {
		return err
	}
	check := modbus.Check
	if *strict {
		check = modbus.CheckStrict
	}
	if err := check(frame); err != nil {
		fmt.Fprintf(out, "invalid: %v\n", err)
		return exitError(1)
	}
	fmt.Fprintln(out, "ok")
	return nil
}

func runDecode(args []string, out io.Writer) error {
	fs := newFlagSet("decode")
	if err := fs.Parse(args); err != nil {
		return err
	}
	frame, err := oneArg(fs, "frame")
	if err != nil {
		return err
	}
	regs, err := modbus.DecodeRegisters(frame)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	for i, r := range regs {
		fmt.Fprintf(out, "%d\t0x%04X\t%d\n", i, r, r)
	}
	return nil
}

// surfaceTarget 每个接入面的写入路径、密钥请求头与字段名
type surfaceTarget struct {
	path   string
	header string
	field  string
}

var targets = map[string]surfaceTarget{
	"frame":   {path: "/write", header: "Authorization", field: "frame"},
	"payload": {path: "/data", header: "api-key", field: "payload"},
}

func runSend(args []string, out io.Writer) error {
	fs := newFlagSet("send")
	baseURL := fs.String("url", "http://localhost:8080", "server base URL")
	surface := fs.String("surface", "payload", "target surface: frame or payload")
	apiKey := fs.String("api-key", os.Getenv("INGEST_AUTH_APIKEY"), "shared API key (default $INGEST_AUTH_APIKEY)")
	timeout := fs.Duration("timeout", 5*time.Second, "request timeout")
	verbose := fs.BoolP("verbose", "v", false, "log request details to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	frame, err := oneArg(fs, "frame")
	if err != nil {
		return err
	}
	target, ok := targets[*surface]
	if !ok {
		return fmt.Errorf("send: unknown surface %q", *surface)
	}

	log := zap.NewNop()
	if *verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			log = l
		}
	}
	defer func() { _ = log.Sync() }()

	body, err := json.Marshal(map[string]string{target.field: frame})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	url := strings.TrimRight(*baseURL, "/") + target.path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(target.header, *apiKey)

	log.Debug("sending frame", zap.String("url", url), zap.String("surface", *surface), zap.String("frame", frame))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("send: read response: %w", err)
	}
	log.Debug("response", zap.Int("status", resp.StatusCode))
	fmt.Fprintf(out, "%d %s\n", resp.StatusCode, strings.TrimSpace(string(respBody)))
	if resp.StatusCode >= http.StatusBadRequest {
		return exitError(1)
	}
	return nil
}
