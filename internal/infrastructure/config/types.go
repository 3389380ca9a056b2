package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AdminToken     string   `mapstructure:"admin_token"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type RateLimitConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	Requests   int  `mapstructure:"requests"`
	WindowSecs int  `mapstructure:"window_secs"`
}

func (r *RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSecs) * time.Second
}

type ArtifactConfig struct {
	Dir string `mapstructure:"dir"`
}

type FleetConfig struct {
	OfflineAfterSecs int `mapstructure:"offline_after_secs"`
	StatusTTLSecs    int `mapstructure:"status_ttl_secs"`
}

// OfflineAfter is the staleness threshold for the derived offline status.
func (f *FleetConfig) OfflineAfter() time.Duration {
	return time.Duration(f.OfflineAfterSecs) * time.Second
}

// StatusTTL bounds how long self-reported agent statuses live in the cache.
func (f *FleetConfig) StatusTTL() time.Duration {
	return time.Duration(f.StatusTTLSecs) * time.Second
}
