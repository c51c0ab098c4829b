package corpus

import (
	"context"
	"errors"
	"io"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/pkg/common"
)

const (
	// DefaultMaxRecords 預設最大筆數
	DefaultMaxRecords = 10000

	readChunkSize = 64 * 1024
	yieldEvery    = 5
)

// Options 解析選項
type Options struct {
	MaxRecords int
}

// ParseStats 解析統計
type ParseStats struct {
	Lines   int  `json:"lines"`
	Records int  `json:"records"`
	Blank   int  `json:"blank"`
	Short   int  `json:"short"`
	Invalid int  `json:"invalid"`
	Capped  bool `json:"capped"`
}

// Skipped 被略過的行數
func (s ParseStats) Skipped() int {
	return s.Blank + s.Short + s.Invalid
}

// RowSink 接收一行欄位，回傳 false 代表該行無效
type RowSink func(header, fields []string) bool

// Row 以表頭為鍵的一行資料
type Row map[string]string

// Parser 增量式 CSV 解析器
type Parser struct {
	opts    Options
	sink    RowSink
	dec     *StreamDecoder
	partial string
	header  []string
	stats   ParseStats
	done    bool
}

// NewParser 創建新的解析器
func NewParser(opts Options, sink RowSink) *Parser {
	return &Parser{
		opts: opts,
		sink: sink,
		dec:  NewStreamDecoder(),
	}
}

// Feed 輸入一個位元組區塊
func (p *Parser) Feed(chunk []byte) error {
	if p.done {
		return nil
	}
	text, err := p.dec.Decode(chunk)
	if err != nil {
		return err
	}
	p.consume(text, false)
	return nil
}

// Finish 結束輸入並處理剩餘資料
func (p *Parser) Finish() (ParseStats, error) {
	if !p.done {
		text, err := p.dec.Flush()
		if err != nil {
			return p.stats, err
		}
		p.consume(text, true)
	}
	p.partial = ""
	return p.stats, nil
}

// Done 是否已達上限
func (p *Parser) Done() bool {
	return p.done
}

// Stats 目前的統計
func (p *Parser) Stats() ParseStats {
	return p.stats
}

func (p *Parser) consume(text string, final bool) {
	data := p.partial + text
	for {
		i := strings.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		p.handleLine(data[:i])
		data = data[i+1:]
		if p.done {
			p.partial = ""
			return
		}
	}

	if final && data != "" {
		p.handleLine(data)
		data = ""
	}
	p.partial = data
}

func (p *Parser) handleLine(line string) {
	line = strings.TrimSuffix(line, "\r")
	p.stats.Lines++

	if strings.TrimSpace(line) == "" {
		p.stats.Blank++
		return
	}

	if p.header == nil {
		p.header = splitLine(line)
		return
	}

	fields := splitLine(line)
	if len(fields) < len(p.header) {
		p.stats.Short++
		common.LogDebug("略過欄位不足的行",
			zap.Int("line", p.stats.Lines),
			zap.Int("fields", len(fields)),
			zap.Int("expected", len(p.header)),
		)
		return
	}

	if p.sink != nil && !p.sink(p.header, fields) {
		p.stats.Invalid++
		return
	}

	p.stats.Records++
	if p.opts.MaxRecords > 0 && p.stats.Records >= p.opts.MaxRecords {
		p.stats.Capped = true
		p.done = true
	}
}

// recordCollector 將欄位轉為 Record
type recordCollector struct {
	cols    columnIndex
	records []Record
}

func (c *recordCollector) sink(header, fields []string) bool {
	if c.cols == nil {
		c.cols = indexHeader(header)
	}
	rec := newRecord(c.cols, fields)
	if !rec.Valid() {
		return false
	}
	c.records = append(c.records, rec)
	return true
}

// ParseString 解析完整文字
func ParseString(text string, opts Options) ([]Record, ParseStats) {
	c := &recordCollector{}
	p := NewParser(opts, c.sink)
	_ = p.Feed([]byte(text))
	stats, _ := p.Finish()
	return c.records, stats
}

// ParseRows 解析為以表頭為鍵的通用資料列
func ParseRows(text string, opts Options) ([]Row, ParseStats) {
	var rows []Row
	p := NewParser(opts, func(header, fields []string) bool {
		row := make(Row, len(header))
		for i, h := range header {
			row[h] = fields[i]
		}
		rows = append(rows, row)
		return true
	})
	_ = p.Feed([]byte(text))
	stats, _ := p.Finish()
	return rows, stats
}

// ParseReader 以串流方式解析，每個區塊之間檢查 ctx
func ParseReader(ctx context.Context, r io.Reader, opts Options) ([]Record, ParseStats, error) {
	start := time.Now()
	c := &recordCollector{}
	p := NewParser(opts, c.sink)

	buf := make([]byte, readChunkSize)
	chunks := 0
	for !p.Done() {
		if err := ctx.Err(); err != nil {
			return c.records, p.Stats(), err
		}

		n, err := r.Read(buf)
		if n > 0 {
			if ferr := p.Feed(buf[:n]); ferr != nil {
				return c.records, p.Stats(), ferr
			}
			chunks++
			if chunks%yieldEvery == 0 {
				runtime.Gosched()
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return c.records, p.Stats(), err
		}
	}

	stats, err := p.Finish()
	if err != nil {
		return c.records, stats, err
	}

	common.LogDuration("語料解析完成", start,
		zap.Int("lines", stats.Lines),
		zap.Int("records", stats.Records),
		zap.Int("skipped", stats.Skipped()),
		zap.Bool("capped", stats.Capped),
	)
	return c.records, stats, nil
}
