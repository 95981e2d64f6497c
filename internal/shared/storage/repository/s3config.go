package repository

import (
	"context"
	"database/sql"
	"time"

	"admin-panel/internal/shared/model"
)

const s3Columns = `id, enabled, COALESCE(endpoint_url, ''), access_key_id, secret_access_key,
	region_name, bucket_name, COALESCE(folder, ''), COALESCE(bucket_url, ''),
	created_at, updated_at`

func scanS3Config(row interface{ Scan(...interface{}) error }) (*model.S3Config, error) {
	c := &model.S3Config{}
	err := row.Scan(&c.ID, &c.Enabled, &c.EndpointURL, &c.AccessKeyID, &c.SecretAccessKey,
		&c.RegionName, &c.BucketName, &c.Folder, &c.BucketURL,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetS3Config 返回最新一条 S3 配置（不过滤启用状态），没有配置返回 (nil, nil)
func (s *Store) GetS3Config(ctx context.Context) (*model.S3Config, error) {
	cfg, err := scanS3Config(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+s3Columns+` FROM s3_config ORDER BY id DESC LIMIT 1`)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return cfg, err
}

// GetEnabledS3Config 返回启用状态的最新 S3 配置，文件操作的前置条件
func (s *Store) GetEnabledS3Config(ctx context.Context) (*model.S3Config, error) {
	cfg, err := scanS3Config(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+s3Columns+` FROM s3_config WHERE enabled = `+
			s.dialect.BooleanLiteral(true)+` ORDER BY id DESC LIMIT 1`)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return cfg, err
}

// SaveS3Config 保存 S3 配置：已有配置则覆盖更新，否则插入新行
func (s *Store) SaveS3Config(ctx context.Context, cfg *model.S3Config) error {
	existing, err := s.GetS3Config(ctx)
	if err != nil {
		return err
	}

	if existing != nil {
		_, err := s.db.ExecContext(ctx,
			s.rebind(`UPDATE s3_config
			 SET enabled = $1, endpoint_url = $2, access_key_id = $3, secret_access_key = $4,
			     region_name = $5, bucket_name = $6, folder = $7, bucket_url = $8,
			     updated_at = `+s.now()+`
			 WHERE id = $9`),
			cfg.Enabled, nullIfEmpty(cfg.EndpointURL), cfg.AccessKeyID, cfg.SecretAccessKey,
			cfg.RegionName, cfg.BucketName, nullIfEmpty(cfg.Folder), nullIfEmpty(cfg.BucketURL),
			existing.ID,
		)
		if err != nil {
			return err
		}
		cfg.ID = existing.ID
		return nil
	}

	now := time.Now()
	id, err := s.insertReturningID(ctx,
		`INSERT INTO s3_config (enabled, endpoint_url, access_key_id, secret_access_key,
		                        region_name, bucket_name, folder, bucket_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		cfg.Enabled, nullIfEmpty(cfg.EndpointURL), cfg.AccessKeyID, cfg.SecretAccessKey,
		cfg.RegionName, cfg.BucketName, nullIfEmpty(cfg.Folder), nullIfEmpty(cfg.BucketURL),
		now, now,
	)
	if err != nil {
		return err
	}
	cfg.ID = id
	return nil
}
