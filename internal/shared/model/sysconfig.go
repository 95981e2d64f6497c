package model

import "time"

// ConfigType 系统配置值类型
type ConfigType string

const (
	ConfigTypeString  ConfigType = "string"
	ConfigTypeNumber  ConfigType = "number"
	ConfigTypeBoolean ConfigType = "boolean"
	ConfigTypeJSON    ConfigType = "json"
)

// IsValid 配置类型是否合法
func (t ConfigType) IsValid() bool {
	switch t {
	case ConfigTypeString, ConfigTypeNumber, ConfigTypeBoolean, ConfigTypeJSON:
		return true
	}
	return false
}

// 常用系统配置键
const (
	ConfigKeySystemName        = "system_name"
	ConfigKeySystemLogo        = "system_logo"
	ConfigKeySystemLogoURL     = "system_logo_url"
	ConfigKeySystemDescription = "system_description"
	ConfigKeySystemVersion     = "system_version"
	ConfigKeySystemCopyright   = "system_copyright"
)

// ProtectedConfigKeys 不允许删除的系统关键配置
var ProtectedConfigKeys = map[string]bool{
	ConfigKeySystemName:    true,
	ConfigKeySystemLogo:    true,
	ConfigKeySystemVersion: true,
}

// SystemConfig 系统配置项（键值对）
type SystemConfig struct {
	ID          int64      `json:"id" db:"id"`
	Key         string     `json:"config_key" db:"config_key"`
	Value       *string    `json:"config_value" db:"config_value"`
	Type        ConfigType `json:"config_type" db:"config_type"`
	Description string     `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// ValueOr 返回配置值，NULL 时返回默认值
func (c *SystemConfig) ValueOr(def string) string {
	if c == nil || c.Value == nil {
		return def
	}
	return *c.Value
}
