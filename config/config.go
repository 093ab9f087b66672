// Package config 基于 viper 加载配置：默认值 < 配置文件 < 环境变量 < 命令行参数。
// 指定了配置文件时会监听文件变更并回调 OnChange 注册的函数。
package config

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config 配置管理器
type Config[T any] struct {
	v        *viper.Viper
	value    *T
	mu       sync.RWMutex
	watchers []func(old, new T)
	errs     []error
	hotLoad  bool
}

// Option 配置选项
type Option[T any] func(*Config[T])

// WithDefaults 设置默认值
func WithDefaults[T any](defaults map[string]any) Option[T] {
	return func(c *Config[T]) {
		for k, v := range defaults {
			c.v.SetDefault(k, v)
		}
	}
}

// WithEnv 按前缀自动绑定环境变量，key 中的 "." 和 "-" 替换为 "_"
func WithEnv[T any](prefix string) Option[T] {
	return func(c *Config[T]) {
		c.v.SetEnvPrefix(prefix)
		c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		c.v.AutomaticEnv()
	}
}

// WithEnvBinding 把 key 绑定到指定的环境变量名（不受前缀影响）
func WithEnvBinding[T any](key string, envVars ...string) Option[T] {
	return func(c *Config[T]) {
		if strings.TrimSpace(key) == "" {
			c.errs = append(c.errs, errors.New("config: empty key for env binding"))
			return
		}
		args := append([]string{key}, envVars...)
		if err := c.v.BindEnv(args...); err != nil {
			c.errs = append(c.errs, err)
		}
	}
}

// WithFlag 把 key 绑定到命令行参数，仅在参数被显式设置时覆盖其他来源
func WithFlag[T any](key string, flag *pflag.Flag) Option[T] {
	return func(c *Config[T]) {
		if flag == nil {
			return
		}
		if err := c.v.BindPFlag(key, flag); err != nil {
			c.errs = append(c.errs, err)
		}
	}
}

// WithWatch 控制指定配置文件时是否监听变更（默认开启）。一次性运行的命令行工具应关闭
func WithWatch[T any](enabled bool) Option[T] {
	return func(c *Config[T]) {
		c.hotLoad = enabled
	}
}

// Load 加载配置。path 为空时只使用默认值、环境变量和命令行参数，且不监听变更
func Load[T any](path string, opts ...Option[T]) (*Config[T], error) {
	v := viper.New()
	c := &Config[T]{v: v, hotLoad: true}

	for _, opt := range opts {
		opt(c)
	}
	if err := errors.Join(c.errs...); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var val T
	if err := v.Unmarshal(&val); err != nil {
		return nil, err
	}
	c.value = &val

	if path != "" && c.hotLoad {
		c.watch()
	}
	return c, nil
}

// Get 获取当前配置（并发安全，返回深拷贝）
func (c *Config[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return deepCopy(*c.value)
}

// OnChange 注册配置变更回调
func (c *Config[T]) OnChange(callback func(old, new T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.watchers = append(c.watchers, callback)
}

// Changed 比较两个值是否不同
func Changed[T any](old, new T) bool {
	return !reflect.DeepEqual(old, new)
}

// deepCopy 通过 JSON 序列化实现深拷贝
func deepCopy[T any](src T) T {
	var dst T
	data, _ := json.Marshal(src)
	_ = json.Unmarshal(data, &dst)
	return dst
}

func (c *Config[T]) watch() {
	var (
		debounceTimer *time.Timer
		debounceMu    sync.Mutex
	)

	c.v.OnConfigChange(func(_ fsnotify.Event) {
		debounceMu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
			c.handleConfigChange()
		})
		debounceMu.Unlock()
	})

	c.v.WatchConfig()
}

func (c *Config[T]) handleConfigChange() {
	oldConfig := c.Get()

	newConfig, watchers, ok := c.reloadConfig()
	if !ok {
		return
	}

	if reflect.DeepEqual(oldConfig, newConfig) {
		return
	}

	for _, cb := range watchers {
		func() {
			defer func() { _ = recover() }()
			cb(oldConfig, newConfig)
		}()
	}
}

// reloadConfig 重新加载配置，返回新配置、回调列表和是否成功
func (c *Config[T]) reloadConfig() (T, []func(old, new T), bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if err := c.v.ReadInConfig(); err != nil {
		return zero, nil, false
	}

	var val T
	if err := c.v.Unmarshal(&val); err != nil {
		return zero, nil, false
	}
	c.value = &val

	watchers := make([]func(old, new T), len(c.watchers))
	copy(watchers, c.watchers)

	return deepCopy(val), watchers, true
}
