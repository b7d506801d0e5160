package core

import "context"

// ModelStore 是模型存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 遵循依赖倒置原则：领域层定义接口，基础设施层实现接口
//   - 核心只约定目录/版本协议，不约定具体存储介质
//
// 路径约定：
//   - 路径是 "/" 分隔的层级命名空间（逻辑路径，与操作系统无关）
//   - 版本目录形如 <root>/_<n>，候选子目录形如 <root>/_<n>/<index>
//
// 实现：
//   - store.MemoryStore：内存实现，测试/原型用
//   - store.DiskStore：本地磁盘实现，单机部署用
//   - store.RedisStore：Redis 实现，多 worker 共享模型用
type ModelStore interface {
	// Name 返回存储后端名称（用于日志/监控）
	Name() string

	// Put 在路径写入一个数据块（整体覆盖写）
	Put(ctx context.Context, path string, data []byte) error

	// Get 读取路径上的数据块；不存在时返回 ErrStoreNotFound
	Get(ctx context.Context, path string) ([]byte, error)

	// List 列出路径的直接子项名称（不含路径前缀，顺序不保证）。
	// 路径不存在时返回空列表而非错误（首次训练前的版本探测依赖此约定）。
	List(ctx context.Context, path string) ([]string, error)

	// Delete 删除路径及其全部子项
	Delete(ctx context.Context, path string) error

	// Close 关闭连接/释放资源
	Close() error
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示路径不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: path not found")

	// ErrStoreNotSupported 表示操作不支持
	ErrStoreNotSupported = NewDomainError(ModuleStore, ErrorCodeNotSupported, "store: operation not supported")
)

// IsStoreNotFound 检查错误是否为存储路径不存在
func IsStoreNotFound(err error) bool {
	if err == nil {
		return false
	}
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
