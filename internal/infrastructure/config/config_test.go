package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp 切换到空目录，避免读到仓库里的config/config.yaml
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	chdirTemp(t)
	t.Setenv("BOOKSHELF_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, DriverMongoDB, cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Database.ConnectRetries)
	assert.Equal(t, 5*time.Second, cfg.Database.RetryDelay)
	assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenExpire)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
}

func TestLoadEnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("BOOKSHELF_CONFIG", "")
	t.Setenv("BOOKSHELF_SERVER_PORT", "8088")
	t.Setenv("BOOKSHELF_DATABASE_DRIVER", "sqlite")
	t.Setenv("BOOKSHELF_DATABASE_PATH", ":memory:")
	t.Setenv("BOOKSHELF_REDIS_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, ":memory:", cfg.Database.DSN())
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
database:
  driver: postgres
  host: db
  port: 5432
  user: app
  password: pw
  dbname: books
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "host=db user=app password=pw dbname=books port=5432 sslmode=disable TimeZone=UTC", cfg.Database.DSN())
	// 未出现在文件中的key仍使用默认值
	assert.Equal(t, "bookshelf", cfg.JWT.Issuer)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load("/definitely/not/here.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdirTemp(t)
	t.Setenv("BOOKSHELF_CONFIG", "")

	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"no retries", func(c *Config) { c.Database.ConnectRetries = 0 }},
		{"default secret in release", func(c *Config) { c.Server.Mode = "release" }},
		{"bad rate limit", func(c *Config) { c.RateLimit.RPS = 0 }},
		{"bad sample ratio", func(c *Config) { c.Tracing.SampleRatio = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *base
			tt.mutate(&c)
			assert.Error(t, validate(&c))
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	d := DatabaseConfig{
		Driver: DriverMySQL, User: "root", Password: "pw", Host: "127.0.0.1", Port: 3306,
		DBName: "bookstore", Charset: "utf8mb4", Loc: "Asia/Shanghai",
	}
	assert.Equal(t, "root:pw@tcp(127.0.0.1:3306)/bookstore?charset=utf8mb4&parseTime=true&loc=Asia%2FShanghai", d.DSN())
}
