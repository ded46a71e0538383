package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteDebugJSON 将排版结果（行、片段、坐标与样式）写为缩进 JSON，便于调试或可视化。
func WriteDebugJSON(w io.Writer, res *Result) error {
	if res == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}

// SaveDebugJSON writes the debug dump of res to path.
func SaveDebugJSON(res *Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建调试文件 %s 失败: %w", path, err)
	}
	if err := WriteDebugJSON(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
