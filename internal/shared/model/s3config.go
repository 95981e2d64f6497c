package model

import "time"

// S3Config 对象存储配置
//
// 存储在数据库中（单行，最新一条生效），由管理员通过 API 维护。
// EndpointURL 为空时使用 AWS 默认端点；BucketURL 配置后文件 URL
// 直接拼接自定义域名，否则生成预签名 URL。
type S3Config struct {
	ID              int64     `json:"id" db:"id"`
	Enabled         bool      `json:"enabled" db:"enabled"`
	EndpointURL     string    `json:"endpoint_url,omitempty" db:"endpoint_url"`
	AccessKeyID     string    `json:"access_key_id" db:"access_key_id"`
	SecretAccessKey string    `json:"secret_access_key" db:"secret_access_key"`
	RegionName      string    `json:"region_name" db:"region_name"`
	BucketName      string    `json:"bucket_name" db:"bucket_name"`
	Folder          string    `json:"folder,omitempty" db:"folder"`
	BucketURL       string    `json:"bucket_url,omitempty" db:"bucket_url"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Complete 必填字段是否齐全（连接测试与文件操作的前置条件）
func (c *S3Config) Complete() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != "" &&
		c.RegionName != "" && c.BucketName != ""
}
