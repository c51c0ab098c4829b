package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// ErrTrailingJSON 解析後仍有多餘資料
var ErrTrailingJSON = errors.New("unexpected trailing JSON data")

// DecodeJSON 解析單一 JSON 文件
func DecodeJSON[T any](r io.Reader) (T, error) {
	return decode[T](json.NewDecoder(r))
}

// DecodeJSONStrict 同 DecodeJSON，但拒絕未知欄位
func DecodeJSONStrict[T any](r io.Reader) (T, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return decode[T](dec)
}

// ParseJSONBytes 解析 JSON 位元組
func ParseJSONBytes[T any](data []byte) (T, error) {
	return DecodeJSON[T](bytes.NewReader(data))
}

func decode[T any](dec *json.Decoder) (T, error) {
	var v T
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	if dec.More() {
		return v, ErrTrailingJSON
	}
	return v, nil
}

// ToJSON 編碼為精簡 JSON，不跳脫 URL 中的 & < >
func ToJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
