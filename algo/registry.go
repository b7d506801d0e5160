package algo

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/trainkit/core"
)

// 使用配置驱动时，需在 main 或入口处 import _ "github.com/rushteam/trainkit/algo/builders"
// 以触发内置算法（lr、centroid 等）的 init 注册。

var (
	defaultAlgorithms   = make(map[string]*Algorithm)
	defaultAlgorithmsMu sync.RWMutex
)

// Register 注册一个算法插件，供配置驱动与查询层按名称查找。
// 建议在各插件包的 init 中调用。
func Register(a *Algorithm) {
	if a == nil || a.name == "" || a.factory == nil || a.loader == nil {
		return
	}
	defaultAlgorithmsMu.Lock()
	defer defaultAlgorithmsMu.Unlock()
	defaultAlgorithms[a.name] = a
}

// Get 按名称查找已注册的算法插件；未注册时返回包含已支持列表的错误。
func Get(name string) (*Algorithm, error) {
	defaultAlgorithmsMu.RLock()
	a, ok := defaultAlgorithms[name]
	defaultAlgorithmsMu.RUnlock()
	if !ok {
		return nil, core.NewDomainError(core.ModuleAlgo, core.ErrorCodeNotFound,
			fmt.Sprintf("algo: unknown algorithm %q (supported: %v)", name, Supported()))
	}
	return a, nil
}

// Supported 返回当前已注册的算法名称列表（排序），用于错误提示与校验。
func Supported() []string {
	defaultAlgorithmsMu.RLock()
	defer defaultAlgorithmsMu.RUnlock()
	names := make([]string, 0, len(defaultAlgorithms))
	for name := range defaultAlgorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
