package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Load 返回内置字体的字节数据。weight 为空或无法识别时回退到常规字重，
// 保证任何 AI 给出的 typography.weight 都能渲染出字形。
func Load(weight string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(weight)) {
	case "", "regular", "normal", "book":
		return goregular.TTF, nil
	case "bold", "extrabold", "black", "heavy":
		return gobold.TTF, nil
	case "medium", "semibold", "demibold":
		return gomedium.TTF, nil
	case "italic", "oblique":
		return goitalic.TTF, nil
	case "mono", "monospace":
		return gomono.TTF, nil
	default:
		return goregular.TTF, nil
	}
}

// MustLoad 在字体缺失时 panic，仅供初始化路径使用。
func MustLoad(weight string) []byte {
	data, err := Load(weight)
	if err != nil {
		panic(fmt.Sprintf("加载内置字体 %s 失败: %v", weight, err))
	}
	return data
}
