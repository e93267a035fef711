package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/microdi/logger"
	"github.com/kbukum/microdi/validation"
)

// injectionKey is the config section holding injection bindings.
const injectionKey = "injection"

// FileSystem abstracts the file operations of the loader.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem on the OS.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds the config and env files of an application.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths in opts, searching for the
// missing ones in ConfigSearchPaths and EnvSearchPaths order.
func (cr *Resolver) ResolveFiles(appName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = cr.first(ConfigSearchPaths(appName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = cr.first(EnvSearchPaths(appName))
	}
	return resolved
}

func (cr *Resolver) first(paths []string) string {
	for _, path := range paths {
		if cr.FileSystem.Exists(path) {
			return path
		}
	}
	return ""
}

// ConfigSearchPaths lists the config file candidates for appName, most
// specific first.
func ConfigSearchPaths(appName string) []string {
	var paths []string
	if appName != "" {
		paths = append(paths,
			appName+".yml",
			filepath.Join("config", appName+".yml"),
		)
	}
	return append(paths,
		"microdi.yml",
		"config.yml",
		filepath.Join("config", "config.yml"),
	)
}

// EnvSearchPaths lists the .env file candidates for appName, most specific
// first.
func EnvSearchPaths(appName string) []string {
	var paths []string
	if appName != "" {
		paths = append(paths, ".env."+appName)
	}
	paths = append(paths, ".env")
	if appName != "" {
		paths = append(paths, filepath.Join("config", ".env."+appName))
	}
	return append(paths, filepath.Join("config", ".env"))
}

// EnvPrefix returns the environment variable prefix for appName:
// "billing-api" reads BILLING_API_LOGGING_LEVEL for logging.level.
func EnvPrefix(appName string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, appName)
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads the configuration of appName into cfg, a pointer to a
// struct with mapstructure tags. Sources in increasing precedence: the
// config file, the .env file, then the process environment under
// EnvPrefix(appName).
//
// The injection section, if present, is decoded and validated on its own so
// malformed bindings fail here rather than at the first injected call.
func LoadConfig(appName string, cfg interface{}, opts ...LoaderOption) error {
	v, err := newViper(appName, reflect.TypeOf(cfg), opts)
	if err != nil {
		return err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for %s: %w", appName, err)
	}
	if _, err := decodeInjection(v); err != nil {
		return err
	}
	return nil
}

// LoadInjection loads only the injection section of appName's configuration.
// A missing section yields an empty InjectionConfig.
func LoadInjection(appName string, opts ...LoaderOption) (InjectionConfig, error) {
	v, err := newViper(appName, nil, opts)
	if err != nil {
		return InjectionConfig{}, err
	}
	return decodeInjection(v)
}

func newViper(appName string, target reflect.Type, opts []LoaderOption) (*viper.Viper, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}
	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(appName, lc)
	log := logger.Get("config")

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", files.ConfigFile, err)
		}
		log.Debug("config file loaded", logger.Fields("file", files.ConfigFile))
	}

	// godotenv never overrides variables already set in the process.
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load .env file", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
		}
	}

	if prefix := EnvPrefix(appName); prefix != "" {
		v.SetEnvPrefix(prefix)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only covers keys viper already knows; bind the target's
	// keys so values set only in the environment reach Unmarshal.
	for _, key := range structKeys(target, "") {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return v, nil
}

func decodeInjection(v *viper.Viper) (InjectionConfig, error) {
	var ic InjectionConfig
	if !v.IsSet(injectionKey) {
		return ic, nil
	}
	if err := v.UnmarshalKey(injectionKey, &ic); err != nil {
		return InjectionConfig{}, fmt.Errorf("failed to decode %s: %w", injectionKey, err)
	}
	if err := validation.Validate(ic); err != nil {
		return InjectionConfig{}, fmt.Errorf("config.%s: %w", injectionKey, err)
	}
	return ic, nil
}

// structKeys returns the dotted mapstructure keys of the scalar fields of t.
// Embedded structs tagged ",squash" share their parent's prefix; slices of
// structs are left to the config file.
func structKeys(t reflect.Type, prefix string) []string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		if opts == "squash" {
			keys = append(keys, structKeys(f.Type, prefix)...)
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		switch {
		case ft.Kind() == reflect.Struct:
			keys = append(keys, structKeys(ft, key)...)
		case ft.Kind() == reflect.Slice && ft.Elem().Kind() == reflect.Struct:
		default:
			keys = append(keys, key)
		}
	}
	return keys
}
