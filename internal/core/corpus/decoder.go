package corpus

import (
	"errors"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// StreamDecoder 有狀態的 UTF-8 解碼器
// 跨區塊保留不完整的多位元組序列，並移除開頭的 BOM
type StreamDecoder struct {
	t       transform.Transformer
	pending []byte
	buf     []byte
}

// NewStreamDecoder 創建新的解碼器
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{
		t:   unicode.UTF8BOM.NewDecoder(),
		buf: make([]byte, 4096),
	}
}

// Decode 解碼一個區塊，末尾不完整的序列留待下一次
func (d *StreamDecoder) Decode(chunk []byte) (string, error) {
	src := make([]byte, 0, len(d.pending)+len(chunk))
	src = append(src, d.pending...)
	src = append(src, chunk...)
	d.pending = nil
	return d.transform(src, false)
}

// Flush 結束串流，殘留的不完整序列以替代字元輸出
func (d *StreamDecoder) Flush() (string, error) {
	src := d.pending
	d.pending = nil
	out, err := d.transform(src, true)
	d.t.Reset()
	return out, err
}

func (d *StreamDecoder) transform(src []byte, atEOF bool) (string, error) {
	out := make([]byte, 0, len(src))
	for {
		nDst, nSrc, err := d.t.Transform(d.buf, src, atEOF)
		out = append(out, d.buf[:nDst]...)
		src = src[nSrc:]

		switch {
		case err == nil:
			return string(out), nil
		case errors.Is(err, transform.ErrShortDst):
			// 輸出緩衝不足，擴大後繼續
			if nDst == 0 && nSrc == 0 {
				d.buf = make([]byte, len(d.buf)*2)
			}
		case errors.Is(err, transform.ErrShortSrc):
			d.pending = append([]byte(nil), src...)
			return string(out), nil
		default:
			return string(out), err
		}
	}
}
