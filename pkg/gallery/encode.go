package gallery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf16"
	"unicode/utf8"
)

// MarshalIndex 输出两空格缩进、非 ASCII 字符转义为 \uXXXX 的 JSON，末尾不带换行
func MarshalIndex(idx *Index) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(idx); err != nil {
		return nil, fmt.Errorf("序列化索引失败: %w", err)
	}
	return escapeNonASCII(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// escapeNonASCII 把合法 JSON 中的非 ASCII 字符与 DEL 改写为 \u 转义。
// JSON 的结构字符全部是 ASCII，因此只会改动字符串内部。
func escapeNonASCII(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		data = data[size:]
		switch {
		case r == 0x7f:
			out = fmt.Appendf(out, `\u%04x`, r)
		case r < utf8.RuneSelf:
			out = append(out, byte(r))
		case r > 0xffff:
			r1, r2 := utf16.EncodeRune(r)
			out = fmt.Appendf(out, `\u%04x\u%04x`, r1, r2)
		default:
			out = fmt.Appendf(out, `\u%04x`, r)
		}
	}
	return out
}

// WriteIndex 先写临时文件再重命名，读者不会看到写了一半的索引
func WriteIndex(path string, idx *Index) error {
	data, err := MarshalIndex(idx)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: 无法创建目录 %s: %v", ErrDestinationWrite, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.json")
	if err != nil {
		return fmt.Errorf("%w: 无法创建临时索引文件: %v", ErrDestinationWrite, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: 写入索引失败: %v", ErrDestinationWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: 关闭索引文件失败: %v", ErrDestinationWrite, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("%w: 设置索引文件权限失败: %v", ErrDestinationWrite, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: 无法替换 %s: %v", ErrDestinationWrite, path, err)
	}
	return nil
}

// ReadIndex 读取已写出的 index.json
func ReadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("解析索引 %s 失败: %w", path, err)
	}
	return &idx, nil
}

// IndexPath 返回 outRoot 下 index.json 的位置
func IndexPath(outRoot string) string {
	return filepath.Join(outRoot, dataDirName, indexFileName)
}
