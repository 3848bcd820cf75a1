package storage

import (
	"context"
	"fmt"
	"metagen/internal/config"
	"strings"
)

const (
	// TypeNone 表示关闭导出存储。
	TypeNone = "none"
	// TypeLocal 表示本地文件系统存储。
	TypeLocal = "local"
	// TypeS3 表示 Amazon S3 或兼容的存储后端。
	TypeS3 = "s3"
	// TypeOSS 表示阿里云 OSS 存储。
	TypeOSS = "oss"
	// TypeCOS 表示腾讯云 COS 存储。
	TypeCOS = "cos"
	// TypeR2 表示 Cloudflare R2 存储。
	TypeR2 = "r2"
)

// SaveOptions 控制存储后端如何持久化文件。
//
// 对象键为 <category>/<yyyy>/<mm>/<dd>/<base>.<ext>。BaseName 为空时使用时间戳，
// ContentType 为空时根据扩展名推断。
type SaveOptions struct {
	Category     string
	Extension    string
	BaseName     string
	ContentType  string
	SkipIfExists bool
}

// Storage 持久化导出文件并返回对象键（本地存储为相对路径）。
type Storage interface {
	Save(ctx context.Context, data []byte, opts SaveOptions) (string, error)
}

// LocalBaseDirProvider 由可以直接从本地目录读取文件的存储驱动实现。
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// NewStorage 根据配置实例化存储后端。TypeNone 返回 nil, nil。
func NewStorage(cfg config.Config) (Storage, error) {
	typeName := strings.ToLower(strings.TrimSpace(cfg.StorageType))
	switch typeName {
	case TypeNone:
		return nil, nil
	case "", TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir)
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeOSS:
		return NewOSSStorage(cfg)
	case TypeCOS:
		return NewCOSStorage(cfg)
	case TypeR2:
		return NewR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}
