// Package objstore 封装 MinIO 对象存储客户端
//
// 客户端按数据库中的 S3 配置按需构建（配置由管理员在线维护，
// 不走进程配置），兼容 AWS S3 与任何 S3 协议端点。
package objstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"admin-panel/internal/shared/model"
)

// Client MinIO 客户端封装
type Client struct {
	mc  *minio.Client
	cfg *model.S3Config
}

// FileInfo 文件/文件夹条目
type FileInfo struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag"`
	IsFolder     bool      `json:"is_folder"`
	URL          string    `json:"url,omitempty"`
}

// ListResult 目录列表结果
type ListResult struct {
	Files       []FileInfo `json:"files"`
	Folders     []FileInfo `json:"folders"`
	CurrentPath string     `json:"current_path"`
	TotalCount  int        `json:"total_count"`
}

// NewClient 根据 S3 配置创建客户端
func NewClient(cfg *model.S3Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("s3 config is required")
	}
	if !cfg.Complete() {
		return nil, fmt.Errorf("s3 config is incomplete: access key, secret key, region and bucket are required")
	}

	endpoint, secure, err := resolveEndpoint(cfg)
	if err != nil {
		return nil, err
	}

	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: secure,
		Region: cfg.RegionName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &Client{mc: mc, cfg: cfg}, nil
}

// resolveEndpoint 解析端点：空配置走 AWS 默认端点，否则解析自定义 URL
func resolveEndpoint(cfg *model.S3Config) (string, bool, error) {
	if cfg.EndpointURL == "" {
		return fmt.Sprintf("s3.%s.amazonaws.com", cfg.RegionName), true, nil
	}
	u, err := url.Parse(cfg.EndpointURL)
	if err != nil || u.Host == "" {
		return "", false, fmt.Errorf("invalid endpoint url: %s", cfg.EndpointURL)
	}
	return u.Host, u.Scheme != "http", nil
}

// TestConnection 测试连接：探测 bucket 是否存在且凭据有效
func (c *Client) TestConnection(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.cfg.BucketName)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist or is not accessible", c.cfg.BucketName)
	}
	return nil
}

// List 列出指定前缀下的文件和文件夹（单层，'/' 作为分隔符）
func (c *Client) List(ctx context.Context, prefix string, max int) (*ListResult, error) {
	if max <= 0 {
		max = 100
	}

	result := &ListResult{
		Files:       []FileInfo{},
		Folders:     []FileInfo{},
		CurrentPath: prefix,
	}

	opts := minio.ListObjectsOptions{
		Prefix:  prefix,
		MaxKeys: max,
	}
	for obj := range c.mc.ListObjects(ctx, c.cfg.BucketName, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			// 非递归列举下以 '/' 结尾的条目是公共前缀（文件夹）
			name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
			if name == "" {
				continue
			}
			result.Folders = append(result.Folders, FileInfo{
				Key:      obj.Key,
				Name:     name,
				IsFolder: true,
			})
			continue
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if name == "" {
			continue
		}
		url, err := c.FileURL(ctx, obj.Key)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, FileInfo{
			Key:          obj.Key,
			Name:         name,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ETag:         obj.ETag,
			URL:          url,
		})
		if len(result.Files)+len(result.Folders) >= max {
			break
		}
	}

	result.TotalCount = len(result.Files) + len(result.Folders)
	return result, nil
}

// FileURL 生成文件访问 URL
// 配置了 bucket_url 时直接拼接自定义域名，否则生成 1 小时有效的预签名 URL
func (c *Client) FileURL(ctx context.Context, key string) (string, error) {
	if c.cfg.BucketURL != "" {
		return strings.TrimSuffix(c.cfg.BucketURL, "/") + "/" + key, nil
	}
	u, err := c.mc.PresignedGetObject(ctx, c.cfg.BucketName, key, time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

// Upload 上传对象
func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := c.mc.PutObject(ctx, c.cfg.BucketName, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

// Delete 删除对象
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.mc.RemoveObject(ctx, c.cfg.BucketName, key, minio.RemoveObjectOptions{})
}

// ObjectKey 拼接上传目标 key，避免双斜杠
func ObjectKey(path, filename string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return filename
	}
	return path + "/" + filename
}
