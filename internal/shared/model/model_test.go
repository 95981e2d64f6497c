package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJSONNeverExposesHash(t *testing.T) {
	u := &User{
		ID:           1,
		Username:     "admin",
		PasswordHash: "$argon2id$v=19$m=65536,t=2,p=1$c2FsdA$aGFzaA",
		Name:         "系统管理员",
		Role:         UserRoleAdmin,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "argon2id")
	assert.NotContains(t, string(data), "password")
	assert.Contains(t, string(data), `"username":"admin"`)
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: UserRoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: UserRoleUser}).IsAdmin())
	assert.False(t, (&User{Role: "editor"}).IsAdmin())
}

func TestConfigTypeValidity(t *testing.T) {
	for _, typ := range []ConfigType{ConfigTypeString, ConfigTypeNumber, ConfigTypeBoolean, ConfigTypeJSON} {
		assert.True(t, typ.IsValid(), string(typ))
	}
	assert.False(t, ConfigType("blob").IsValid())
	assert.False(t, ConfigType("").IsValid())
}

func TestSystemConfigValueOr(t *testing.T) {
	v := "Admin System"
	c := &SystemConfig{Key: ConfigKeySystemName, Value: &v, Type: ConfigTypeString}
	assert.Equal(t, "Admin System", c.ValueOr("fallback"))

	c.Value = nil
	assert.Equal(t, "fallback", c.ValueOr("fallback"))

	var nilCfg *SystemConfig
	assert.Equal(t, "fallback", nilCfg.ValueOr("fallback"))
}

func TestMenuNodeJSON(t *testing.T) {
	parent := int64(1)
	node := &MenuNode{
		Menu: Menu{ID: 2, ParentID: &parent, Title: "用户管理", Path: "/users", SortOrder: 1},
	}
	data, err := json.Marshal(node)
	require.NoError(t, err)
	// children 字段始终出现（空树序列化为 null，前端按数组处理）
	assert.True(t, strings.Contains(string(data), `"children"`))
	assert.Contains(t, string(data), `"parent_id":1`)
}
