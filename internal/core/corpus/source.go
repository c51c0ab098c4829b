package corpus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"meal-planner/internal/pkg/common"
)

// Source 語料來源，回傳的串流由呼叫端關閉
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}

// HTTPOptions HTTP 來源設定
type HTTPOptions struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// HTTPSource 以 HTTP 串流下載語料
type HTTPSource struct {
	url    string
	client *resty.Client
}

// NewHTTPSource 創建 HTTP 語料來源
func NewHTTPSource(url string, opts HTTPOptions) *HTTPSource {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		retryClient.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = opts.RetryWaitMax
	}
	retryClient.Logger = retryLogger{}

	client := resty.NewWithClient(retryClient.StandardClient()).
		SetHeader("Accept", "text/csv, text/plain")
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	return &HTTPSource{url: url, client: client}
}

// Name 來源名稱
func (s *HTTPSource) Name() string {
	return s.url
}

// Open 發送請求並回傳未解析的回應主體
func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(s.url)
	if err != nil {
		return nil, common.Wrap(common.ErrCorpusFetch, err)
	}

	body := resp.RawBody()
	if resp.StatusCode() != http.StatusOK {
		if body != nil {
			body.Close()
		}
		return nil, common.Wrap(common.ErrCorpusFetch, fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}
	if body == nil {
		return nil, common.Wrap(common.ErrCorpusFetch, fmt.Errorf("empty response body"))
	}
	return body, nil
}

// FileSource 從本機檔案讀取語料
type FileSource struct {
	Path string
}

// Name 來源名稱
func (s FileSource) Name() string {
	return s.Path
}

// Open 開啟檔案
func (s FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, common.Wrap(common.ErrCorpusFetch, err)
	}
	return f, nil
}

// StaticSource 記憶體內的語料
type StaticSource []byte

// Name 來源名稱
func (s StaticSource) Name() string {
	return "static"
}

// Open 回傳記憶體讀取器
func (s StaticSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s)), nil
}

// retryLogger 將重試記錄轉給 zap
type retryLogger struct{}

func (retryLogger) Error(msg string, keysAndValues ...interface{}) {
	common.LogError(msg, kvFields(keysAndValues)...)
}

func (retryLogger) Info(msg string, keysAndValues ...interface{}) {
	common.LogDebug(msg, kvFields(keysAndValues)...)
}

func (retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	common.LogDebug(msg, kvFields(keysAndValues)...)
}

func (retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	common.LogWarn(msg, kvFields(keysAndValues)...)
}

func kvFields(kv []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		fields = append(fields, zap.Any(key, kv[i+1]))
	}
	return fields
}
