// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（密钥、密码）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Driver  string `yaml:"driver"` // sqlite | postgres
	Path    string `yaml:"path"`   // sqlite 数据库文件路径
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	User    string `yaml:"user"`
	Name    string `yaml:"name"`
	SSLMode string `yaml:"sslmode"`
}

// AuthConfig 认证配置
// 密钥只从环境变量读取，YAML 里只放非敏感的时长参数
type AuthConfig struct {
	TokenTTL      time.Duration `yaml:"token_ttl"`
	RefreshMaxAge time.Duration `yaml:"refresh_max_age"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env            Environment
	APIPort        string
	DatabaseDriver string
	DatabaseURL    string // postgres 连接串或 sqlite 文件路径
	JWTSecret      string
	TokenTTL       time.Duration
	RefreshMaxAge  time.Duration
	AdminUsername  string
	AdminPassword  string
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 构建最终配置
func Load() *Config {
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	env := parseEnv(getEnv("APP_ENV", "dev"))
	yamlCfg := loadYAMLConfig(env)

	driver := detectDatabaseDriver(yamlCfg.Database.Driver)
	dbPassword := getEnv("DB_PASSWORD", "")

	cfg := &Config{
		Env:            env,
		APIPort:        getEnv("API_PORT", yamlCfg.Server.Port),
		DatabaseDriver: driver,
		JWTSecret:      getEnv("JWT_SECRET", ""),
		TokenTTL:       yamlCfg.Auth.TokenTTL,
		RefreshMaxAge:  yamlCfg.Auth.RefreshMaxAge,
		AdminUsername:  getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", ""),
	}

	if driver == "postgres" {
		cfg.DatabaseURL = buildDatabaseURL(yamlCfg.Database, dbPassword)
	} else {
		cfg.DatabaseURL = getEnv("SQLITE_PATH", yamlCfg.Database.Path)
	}

	cfg.validate()
	return cfg
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	cfg := &YAMLConfig{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Driver: "sqlite", Path: "data/admin.db", Host: "localhost", Port: 5432, User: "admin", Name: "admin_panel", SSLMode: "disable"},
		Auth:     AuthConfig{TokenTTL: 24 * time.Hour, RefreshMaxAge: 7 * 24 * time.Hour},
	}

	mergeYAMLFile(cfg, "common.yaml")
	mergeYAMLFile(cfg, fmt.Sprintf("%s.yaml", env))
	return cfg
}

// mergeYAMLFile 按候选目录查找并合并一个配置文件，文件损坏时记录并跳过
func mergeYAMLFile(cfg *YAMLConfig, filename string) {
	for _, base := range configPaths {
		path := filepath.Join(base, filename)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Printf("[config] parse %s error: %v", path, err)
		}
		return
	}
}

// detectDatabaseDriver 规范化数据库驱动名，默认 sqlite
func detectDatabaseDriver(driver string) string {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql":
		return "postgres"
	default:
		return "sqlite"
	}
}

// buildDatabaseURL 构建 PostgreSQL 连接字符串
func buildDatabaseURL(db DatabaseConfig, password string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		db.User, password, db.Host, db.Port, db.Name, db.SSLMode)
}

// validate 填充缺失的默认值
func (c *Config) validate() {
	if c.APIPort == "" {
		c.APIPort = "8080"
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
	if c.RefreshMaxAge <= 0 {
		c.RefreshMaxAge = 7 * 24 * time.Hour
	}
	if c.DatabaseDriver == "sqlite" && c.DatabaseURL == "" {
		c.DatabaseURL = "data/admin.db"
	}
}

func parseEnv(env string) Environment {
	switch strings.ToLower(env) {
	case "test":
		return EnvTest
	case "prod", "production":
		return EnvProduction
	default:
		return EnvDevelopment
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏密码）
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Driver: %s, DB: %s, Port: %s}",
		c.Env, c.DatabaseDriver, maskPassword(c.DatabaseURL), c.APIPort)
}

// maskPassword 隐藏连接串中的密码
func maskPassword(url string) string {
	re := regexp.MustCompile(`(://[^:]+:)([^@]+)(@)`)
	return re.ReplaceAllString(url, "${1}***${3}")
}
