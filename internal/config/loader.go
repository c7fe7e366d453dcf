package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置文件
// configPath: 配置文件路径，如果为空则使用默认路径
// env: 环境标识，支持 development, test, production
func LoadConfig(configPath, env string) (*Config, error) {
	// 设置默认环境
	if env == "" {
		env = getEnvFromEnvironment()
	}

	// 创建viper实例
	v := viper.New()

	// 设置配置文件类型
	v.SetConfigType("yaml")

	// 设置配置文件路径
	if configPath == "" {
		configPath = getDefaultConfigPath()
	}

	// 根据环境选择配置文件
	configFile := getConfigFileName(configPath, env)
	v.SetConfigFile(configFile)

	// 设置环境变量前缀
	v.SetEnvPrefix("SIGNHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 绑定环境变量
	bindEnvironmentVariables(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	// 解析配置到结构体
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 验证配置
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 设置全局配置
	GlobalConfig = &config

	return &config, nil
}

// getEnvFromEnvironment 从环境变量获取环境标识
func getEnvFromEnvironment() string {
	env := os.Getenv("SIGNHUB_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	if env == "" {
		env = "development" // 默认开发环境
	}
	return env
}

// getDefaultConfigPath 获取默认配置文件路径
func getDefaultConfigPath() string {
	// 尝试从环境变量获取配置路径
	if configPath := os.Getenv("SIGNHUB_CONFIG_PATH"); configPath != "" {
		return configPath
	}

	// 使用默认路径
	return "configs"
}

// getConfigFileName 根据环境获取配置文件名
func getConfigFileName(configPath, env string) string {
	var configFile string

	switch env {
	case "production", "prod":
		configFile = filepath.Join(configPath, "config.prod.yaml")
	case "test", "testing":
		configFile = filepath.Join(configPath, "config.test.yaml")
	default:
		configFile = filepath.Join(configPath, "config.yaml")
	}

	// 检查文件是否存在，如果不存在则使用默认配置文件
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		defaultConfig := filepath.Join(configPath, "config.yaml")
		if _, err := os.Stat(defaultConfig); err == nil {
			return defaultConfig
		}
	}

	return configFile
}

// bindEnvironmentVariables 绑定环境变量
func bindEnvironmentVariables(v *viper.Viper) {
	// 数据库配置
	v.BindEnv("database.mysql.host", "SIGNHUB_MYSQL_HOST")
	v.BindEnv("database.mysql.port", "SIGNHUB_MYSQL_PORT")
	v.BindEnv("database.mysql.username", "SIGNHUB_MYSQL_USERNAME")
	v.BindEnv("database.mysql.password", "SIGNHUB_MYSQL_PASSWORD")
	v.BindEnv("database.mysql.database", "SIGNHUB_MYSQL_DATABASE")

	v.BindEnv("database.redis.host", "SIGNHUB_REDIS_HOST")
	v.BindEnv("database.redis.port", "SIGNHUB_REDIS_PORT")
	v.BindEnv("database.redis.password", "SIGNHUB_REDIS_PASSWORD")
	v.BindEnv("database.redis.database", "SIGNHUB_REDIS_DATABASE")

	// 服务器配置
	v.BindEnv("server.host", "SIGNHUB_SERVER_HOST")
	v.BindEnv("server.port", "SIGNHUB_SERVER_PORT")
	v.BindEnv("server.mode", "SIGNHUB_SERVER_MODE")

	// 机器端配置
	v.BindEnv("machine.server_url", "SIGNHUB_MACHINE_SERVER_URL")
	v.BindEnv("machine.credential", "SIGNHUB_MACHINE_CREDENTIAL")
	v.BindEnv("machine.sidecar.base_url", "SIGNHUB_MACHINE_SIDECAR_BASE_URL")

	// 应用配置
	v.BindEnv("app.environment", "SIGNHUB_APP_ENVIRONMENT")
	v.BindEnv("app.debug", "SIGNHUB_APP_DEBUG")
}

// validateConfig 验证配置
func validateConfig(config *Config) error {
	// 验证服务器配置
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Server.Mode != "debug" && config.Server.Mode != "release" && config.Server.Mode != "test" {
		return fmt.Errorf("invalid server mode: %s", config.Server.Mode)
	}

	// 验证数据库配置
	if config.Database.MySQL.Host == "" {
		return fmt.Errorf("mysql host is required")
	}

	if config.Database.MySQL.Database == "" {
		return fmt.Errorf("mysql database name is required")
	}

	if config.Database.Redis.Enabled && config.Database.Redis.Host == "" {
		return fmt.Errorf("redis host is required when redis is enabled")
	}

	// 验证日志配置
	validLogLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	if !contains(validLogLevels, config.Log.Level) {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, config.Log.Format) {
		return fmt.Errorf("invalid log format: %s", config.Log.Format)
	}

	validLogOutputs := []string{"stdout", "stderr", "file"}
	if !contains(validLogOutputs, config.Log.Output) {
		return fmt.Errorf("invalid log output: %s", config.Log.Output)
	}

	// 如果日志输出到文件，验证文件路径
	if config.Log.Output == "file" && config.Log.FilePath == "" {
		return fmt.Errorf("log file path is required when output is file")
	}

	return nil
}

// ValidateMachineConfig 验证机器端配置
// registry 不需要 machine 段，所以机器端入口单独调用本函数
func ValidateMachineConfig(config *Config) error {
	if config.Machine.ServerURL == "" {
		return fmt.Errorf("machine server_url is required")
	}
	if config.Machine.Credential == "" {
		return fmt.Errorf("machine credential is required")
	}
	if config.Machine.PollInterval <= 0 {
		return fmt.Errorf("machine poll_interval must be positive")
	}
	if config.Machine.Sidecar.BaseURL == "" {
		return fmt.Errorf("machine sidecar base_url is required")
	}
	if config.Machine.Sidecar.MaxAttempts <= 0 {
		return fmt.Errorf("machine sidecar max_attempts must be positive")
	}
	return nil
}

// contains 检查切片是否包含指定元素
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	return GlobalConfig
}

// MustLoadConfig 加载配置，如果失败则panic
func MustLoadConfig(configPath, env string) *Config {
	config, err := LoadConfig(configPath, env)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	return config
}
