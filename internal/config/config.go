package config

import (
	"time"
)

// Config 应用配置结构体 [这里的字段和配置文件中一级字段保持一致，否则会没有值]
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`     // 注册中心服务器配置
	Database DatabaseConfig `yaml:"database" mapstructure:"database"` // 数据库配置
	Log      LogConfig      `yaml:"log" mapstructure:"log"`           // 日志配置
	Security SecurityConfig `yaml:"security" mapstructure:"security"` // 安全配置
	Machine  MachineConfig  `yaml:"machine" mapstructure:"machine"`   // 签章机器端配置
	App      AppConfig      `yaml:"app" mapstructure:"app"`           // 应用配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host           string        `yaml:"host" mapstructure:"host"`                         // 服务器主机地址
	Port           int           `yaml:"port" mapstructure:"port"`                         // 服务器端口
	Mode           string        `yaml:"mode" mapstructure:"mode"`                         // 运行模式: debug, release, test
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`         // 读取超时时间
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`       // 写入超时时间
	IdleTimeout    time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`         // 空闲超时时间
	MaxHeaderBytes int           `yaml:"max_header_bytes" mapstructure:"max_header_bytes"` // 最大请求头字节数
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	MySQL MySQLConfig `yaml:"mysql" mapstructure:"mysql"` // MySQL配置
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"` // Redis配置
}

// MySQLConfig MySQL数据库配置
type MySQLConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`                             // 数据库主机
	Port            int           `yaml:"port" mapstructure:"port"`                             // 数据库端口
	Username        string        `yaml:"username" mapstructure:"username"`                     // 用户名
	Password        string        `yaml:"password" mapstructure:"password"`                     // 密码
	Database        string        `yaml:"database" mapstructure:"database"`                     // 数据库名
	Charset         string        `yaml:"charset" mapstructure:"charset"`                       // 字符集
	ParseTime       bool          `yaml:"parse_time" mapstructure:"parse_time"`                 // 是否解析时间
	Loc             string        `yaml:"loc" mapstructure:"loc"`                               // 时区
	MaxIdleConns    int           `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`         // 最大空闲连接数
	MaxOpenConns    int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`         // 最大打开连接数
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`   // 连接最大生存时间
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" mapstructure:"conn_max_idle_time"` // 连接最大空闲时间
	LogLevel        string        `yaml:"log_level" mapstructure:"log_level"`                   // 日志级别
}

// RedisConfig Redis配置
// Redis 用于凭证认证缓存，registry 可以在没有 Redis 的情况下降级运行(仅查库)
type RedisConfig struct {
	Enabled       bool          `yaml:"enabled" mapstructure:"enabled"`               // 是否启用Redis凭证缓存
	Host          string        `yaml:"host" mapstructure:"host"`                     // Redis主机
	Port          int           `yaml:"port" mapstructure:"port"`                     // Redis端口
	Password      string        `yaml:"password" mapstructure:"password"`             // Redis密码
	Database      int           `yaml:"database" mapstructure:"database"`             // Redis数据库索引
	PoolSize      int           `yaml:"pool_size" mapstructure:"pool_size"`           // 连接池大小
	MinIdleConns  int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"` // 最小空闲连接数
	DialTimeout   time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`     // 连接超时
	ReadTimeout   time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`     // 读取超时
	WriteTimeout  time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`   // 写入超时
	PoolTimeout   time.Duration `yaml:"pool_timeout" mapstructure:"pool_timeout"`     // 连接池超时
	IdleTimeout   time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`     // 空闲超时
	CredentialTTL time.Duration `yaml:"credential_ttl" mapstructure:"credential_ttl"` // 凭证缓存过期时间
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`             // 日志级别
	Format     string `yaml:"format" mapstructure:"format"`           // 日志格式: json, text
	Output     string `yaml:"output" mapstructure:"output"`           // 输出方式: stdout, stderr, file
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`     // 日志文件路径
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // 单个日志文件最大大小(MB)
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // 保留的日志文件数量
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // 日志文件保留天数
	Compress   bool   `yaml:"compress" mapstructure:"compress"`       // 是否压缩日志文件
	Caller     bool   `yaml:"caller" mapstructure:"caller"`           // 是否显示调用者信息
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"` // 日志中间件配置
}

// LoggingConfig 日志中间件配置
type LoggingConfig struct {
	EnableRequestLog bool     `yaml:"enable_request_log" mapstructure:"enable_request_log"` // 是否启用请求日志
	SkipPaths        []string `yaml:"skip_paths" mapstructure:"skip_paths"`                 // 跳过日志记录的路径
}

// MachineConfig 签章机器端配置
// 机器端通过 registry 的 HTTP 接口轮询任务，通过本机自动化 sidecar 驱动浏览器和USB签章设备
type MachineConfig struct {
	ServerURL    string            `yaml:"server_url" mapstructure:"server_url"`       // registry 服务地址
	Credential   string            `yaml:"credential" mapstructure:"credential"`       // 公司认证凭证(Bearer)
	PollInterval time.Duration     `yaml:"poll_interval" mapstructure:"poll_interval"` // 任务轮询间隔
	Operators    map[string]string `yaml:"operators" mapstructure:"operators"`         // 操作员证书名 -> USB PIN 映射
	Sidecar      SidecarConfig     `yaml:"sidecar" mapstructure:"sidecar"`             // 自动化 sidecar 配置
}

// SidecarConfig 自动化 sidecar 配置
// sidecar 是独立进程，负责浏览器导航/证书选择/桌面PIN输入，本体只通过HTTP调用它
type SidecarConfig struct {
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`         // sidecar 服务地址
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`           // 单次调用超时
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"` // 有界重试最大次数
	RetryDelay  time.Duration `yaml:"retry_delay" mapstructure:"retry_delay"`   // 重试间隔
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`               // 应用名称
	Version     string `yaml:"version" mapstructure:"version"`         // 应用版本
	Environment string `yaml:"environment" mapstructure:"environment"` // 运行环境
	Debug       bool   `yaml:"debug" mapstructure:"debug"`             // 是否开启调试模式
}
