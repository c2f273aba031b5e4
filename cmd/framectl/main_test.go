package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runOut(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := run(args, &buf)
	return buf.String(), err
}

func TestCRC(t *testing.T) {
	out, err := runOut(t, "crc", "0104")
	require.NoError(t, err)
	assert.Equal(t, "0xE301 (wire: 01 E3)\n", out)

	_, err = runOut(t, "crc", "zz")
	assert.Error(t, err)
	_, err = runOut(t, "crc")
	assert.Error(t, err)
}

func TestBuild(t *testing.T) {
	out, err := runOut(t, "build", "0104")
	require.NoError(t, err)
	assert.Equal(t, "010401E3\n", out)

	out, err = runOut(t, "build", "--slave", "1", "--func", "3", "--addr", "0", "--value", "10")
	require.NoError(t, err)
	assert.Equal(t, "01030000000AC5CD\n", out)

	out, err = runOut(t, "build", "--func", "6", "--addr", "1", "--value", "3")
	require.NoError(t, err)
	assert.Equal(t, "010600010003980B\n", out)

	_, err = runOut(t, "build", "--func", "16")
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name string
		args []string
		out  string
		ok   bool
	}{
		{"合法帧", []string{"verify", "010401e3"}, "ok\n", true},
		{"只有校验字节", []string{"verify", "ffff"}, "ok\n", true},
		{"严格模式拒绝只有校验字节", []string{"verify", "--strict", "ffff"}, "", false},
		{"CRC错误", []string{"verify", "0104eb0a"}, "", false},
		{"奇数长度", []string{"verify", "010"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runOut(t, tt.args...)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.out, out)
				return
			}
			var code exitError
			require.ErrorAs(t, err, &code)
			assert.Equal(t, 1, code.ExitCode())
			assert.Contains(t, out, "invalid:")
		})
	}
}

func TestDecode(t *testing.T) {
	out, err := runOut(t, "decode", "010304000A01025A60")
	require.NoError(t, err)
	assert.Equal(t, "0\t0x000A\t10\n1\t0x0102\t258\n", out)
}

func TestUnknownCommand(t *testing.T) {
	_, err := runOut(t, "bogus")
	assert.Error(t, err)

	out, err := runOut(t)
	assert.Error(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestSend(t *testing.T) {
	var gotPath, gotKey, gotAuth string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		// 每次请求重新解码，避免上一次的字段残留
		gotBody = nil
		_ = json.Unmarshal(raw, &gotBody)
		if gotKey == "" && gotAuth == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Unauthorized. Invalid or missing API key."}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	t.Run("负载接入面", func(t *testing.T) {
		out, err := runOut(t, "send", "--url", srv.URL, "--api-key", "ColdPlay2025", "010401e3")
		require.NoError(t, err)
		assert.Equal(t, "/data", gotPath)
		assert.Equal(t, "ColdPlay2025", gotKey)
		assert.Equal(t, map[string]string{"payload": "010401e3"}, gotBody)
		assert.Equal(t, "200 {\"status\":\"success\"}\n", out)
	})

	t.Run("帧接入面", func(t *testing.T) {
		_, err := runOut(t, "send", "--url", srv.URL+"/", "--surface", "frame", "--api-key", "ColdPlay2025", "010401e3")
		require.NoError(t, err)
		assert.Equal(t, "/write", gotPath)
		assert.Equal(t, "ColdPlay2025", gotAuth)
		assert.Equal(t, map[string]string{"frame": "010401e3"}, gotBody)
	})

	t.Run("未认证返回非零", func(t *testing.T) {
		t.Setenv("INGEST_AUTH_APIKEY", "")
		out, err := runOut(t, "send", "--url", srv.URL, "--api-key", "", "010401e3")
		var code exitError
		require.ErrorAs(t, err, &code)
		assert.Contains(t, out, "401")
	})

	t.Run("未知接入面", func(t *testing.T) {
		_, err := runOut(t, "send", "--surface", "x", "010401e3")
		assert.Error(t, err)
	})
}
