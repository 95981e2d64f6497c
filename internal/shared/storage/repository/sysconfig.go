package repository

import (
	"context"
	"database/sql"
	"time"

	"admin-panel/internal/shared/model"
)

const sysConfigColumns = `id, config_key, config_value, config_type,
	COALESCE(description, ''), created_at, updated_at`

func scanSystemConfig(row interface{ Scan(...interface{}) error }) (*model.SystemConfig, error) {
	c := &model.SystemConfig{}
	var value sql.NullString
	err := row.Scan(&c.ID, &c.Key, &value, &c.Type, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if value.Valid {
		c.Value = &value.String
	}
	return c, nil
}

// ListSystemConfigs 列出所有系统配置，按键名排序
func (s *Store) ListSystemConfigs(ctx context.Context) ([]*model.SystemConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+sysConfigColumns+` FROM system_config ORDER BY config_key`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*model.SystemConfig
	for rows.Next() {
		c, err := scanSystemConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// GetSystemConfig 通过键查找配置，不存在返回 (nil, nil)
func (s *Store) GetSystemConfig(ctx context.Context, key string) (*model.SystemConfig, error) {
	cfg, err := scanSystemConfig(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+sysConfigColumns+` FROM system_config WHERE config_key = $1`), key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return cfg, err
}

// SetSystemConfig 写入配置（UPSERT），返回写入后的配置
// description 为空时保留已有描述
func (s *Store) SetSystemConfig(ctx context.Context, key string, value *string, typ model.ConfigType, description string) (*model.SystemConfig, error) {
	if typ == "" {
		typ = model.ConfigTypeString
	}
	if description == "" {
		if existing, err := s.GetSystemConfig(ctx, key); err != nil {
			return nil, err
		} else if existing != nil {
			description = existing.Description
		}
	}

	var val interface{}
	if value != nil {
		val = *value
	}

	now := time.Now()
	query := `INSERT INTO system_config (config_key, config_value, config_type, description, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6) ` +
		s.dialect.UpsertConflict("config_key", []string{
			"config_value = EXCLUDED.config_value",
			"config_type = EXCLUDED.config_type",
			"description = EXCLUDED.description",
			"updated_at = EXCLUDED.updated_at",
		})
	_, err := s.db.ExecContext(ctx, s.rebind(query),
		key, val, typ, nullIfEmpty(description), now, now)
	if err != nil {
		return nil, err
	}
	return s.GetSystemConfig(ctx, key)
}

// DeleteSystemConfig 删除配置项
// 保护键校验由上层处理，本层只负责删除
func (s *Store) DeleteSystemConfig(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM system_config WHERE config_key = $1`), key)
	if err != nil {
		return err
	}
	return requireRows(res)
}
