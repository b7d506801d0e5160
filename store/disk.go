package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rushteam/trainkit/core"
)

// DiskStore 是本地磁盘实现的 ModelStore。
// 逻辑路径（"/" 分隔）映射到 base 目录下的文件系统路径，
// 版本目录协议直接落为真实目录结构。
type DiskStore struct {
	base string
}

// NewDiskStore 创建一个以 base 为根目录的磁盘存储。
func NewDiskStore(base string) *DiskStore {
	return &DiskStore{base: base}
}

func (d *DiskStore) Name() string { return "disk" }

func (d *DiskStore) resolve(path string) string {
	return filepath.Join(d.base, filepath.FromSlash(path))
}

func (d *DiskStore) Put(ctx context.Context, path string, data []byte) error {
	full := d.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func (d *DiskStore) Get(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(d.resolve(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.ErrStoreNotFound
		}
		return nil, err
	}
	return data, nil
}

func (d *DiskStore) List(ctx context.Context, path string) ([]string, error) {
	entries, err := os.ReadDir(d.resolve(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (d *DiskStore) Delete(ctx context.Context, path string) error {
	return os.RemoveAll(d.resolve(path))
}

func (d *DiskStore) Close() error { return nil }

var _ core.ModelStore = (*DiskStore)(nil)
