// Package embedded 提供内置数据文件的统一访问接口
//
// 默认目录、示例关卡随二进制一起嵌入（data/ 前缀）。
// 其它路径按普通文件路径从操作系统文件系统读取，
// 因此加载函数既可以读内置数据，也可以读用户提供的关卡文件。
//
// 调用 Init() 可以用外部目录替换内置的 data/（调试数值时使用）。
package embedded

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

//go:embed data
var builtinFS embed.FS

var (
	mu     sync.RWMutex
	dataFS fs.FS = builtinFS
)

// Init 替换 data/ 前缀对应的文件系统
// 传入的 FS 根目录必须包含 data/ 目录（如 os.DirFS(".")）
func Init(data fs.FS) {
	mu.Lock()
	defer mu.Unlock()
	if data == nil {
		dataFS = builtinFS
		return
	}
	dataFS = data
}

func currentFS() fs.FS {
	mu.RLock()
	defer mu.RUnlock()
	return dataFS
}

// normalize 标准化路径分隔符并移除 "./" 前缀
func normalize(path string) string {
	path = filepath.ToSlash(path)
	return strings.TrimPrefix(path, "./")
}

// IsEmbeddedPath 路径是否指向内置数据
func IsEmbeddedPath(path string) bool {
	return strings.HasPrefix(normalize(path), "data/")
}

// ReadFile 读取文件内容
// "data/" 开头的路径从内置数据读取，其余路径从磁盘读取
func ReadFile(path string) ([]byte, error) {
	if IsEmbeddedPath(path) {
		data, err := fs.ReadFile(currentFS(), normalize(path))
		if err != nil {
			return nil, fmt.Errorf("read embedded %s: %w", path, err)
		}
		return data, nil
	}
	return os.ReadFile(path)
}

// Exists 检查文件是否存在
func Exists(path string) bool {
	if IsEmbeddedPath(path) {
		_, err := fs.Stat(currentFS(), normalize(path))
		return err == nil
	}
	_, err := os.Stat(path)
	return err == nil
}

// Glob 匹配文件
// "data/" 开头的模式在内置数据中匹配，其余在磁盘上匹配
func Glob(pattern string) ([]string, error) {
	if IsEmbeddedPath(pattern) {
		return fs.Glob(currentFS(), normalize(pattern))
	}
	return filepath.Glob(pattern)
}
