package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "GALLERY"

// GalleryConfig 描述一次图库构建所需的全部参数。
type GalleryConfig struct {
	Root        string `mapstructure:"root" yaml:"root" json:"root"`
	Out         string `mapstructure:"out" yaml:"out" json:"out"`
	SkipCopy    bool   `mapstructure:"skipCopy" yaml:"skipCopy" json:"skipCopy"`
	OnWalkError string `mapstructure:"onWalkError" yaml:"onWalkError" json:"onWalkError"`
	SortKey     string `mapstructure:"sortKey" yaml:"sortKey" json:"sortKey"`
	VerifyHash  bool   `mapstructure:"verifyHash" yaml:"verifyHash" json:"verifyHash"`
}

type Config struct {
	Server struct {
		Port    string        `mapstructure:"port" yaml:"port" json:"port"`
		Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	} `mapstructure:"server" yaml:"server" json:"server"`

	Logger struct {
		Level  string `mapstructure:"level" yaml:"level" json:"level"`
		Format string `mapstructure:"format" yaml:"format" json:"format"`
		Path   string `mapstructure:"path" yaml:"path" json:"path"`
	} `mapstructure:"logger" yaml:"logger" json:"logger"`

	Gallery GalleryConfig `mapstructure:"gallery" yaml:"gallery" json:"gallery"`
}

// C 是启动阶段加载的全局配置。服务运行期间可能被替换，并发访问需通过 Get/Set。
var C *Config

var mu sync.RWMutex

// Get 返回当前全局配置
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return C
}

// Set 整体替换全局配置，已取得的旧配置不受影响
func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	C = cfg
}

// LoadConfig 加载配置并写入全局变量 C
func LoadConfig(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	Set(cfg)
	return nil
}

// Load 按 .env -> config.yaml -> 环境变量 的顺序读取配置。
// config.yaml 不存在时使用默认值。
func Load(path string) (*Config, error) {
	_ = godotenv.Load(filepath.Join(path, ".env"))

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return &cfg, nil
}

// Default 返回全部默认值组成的配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// 默认值全部是基础类型，不会解析失败
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.timeout", 30*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.path", "./logs")

	v.SetDefault("gallery.root", "./library")
	v.SetDefault("gallery.out", "./disease_gallery_static")
	v.SetDefault("gallery.skipCopy", false)
	v.SetDefault("gallery.onWalkError", "abort")
	v.SetDefault("gallery.sortKey", "gbk")
	v.SetDefault("gallery.verifyHash", false)
}

// Save 将配置序列化为 YAML 写入 path
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("序列化配置为YAML失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件 %s 失败: %w", path, err)
	}
	return nil
}

// ExpandPath 展开 ~ 并返回绝对路径
func ExpandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("无法获取用户主目录: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("无法获取绝对路径 '%s': %w", p, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}
