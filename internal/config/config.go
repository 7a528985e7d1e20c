package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	defaultTargetName      = "capturedVideo.mp4"
	defaultSampleInterval  = 500 * time.Millisecond
	defaultPreviewInterval = time.Second
	defaultBackDevice      = "/dev/video0"
	defaultAudioDevice     = "default"
	defaultFFmpegPath      = "ffmpeg"
	defaultAppDirName      = "camrec"
)

// fileConfig mirrors the optional YAML file pointed to by CAMREC_CONFIG
type fileConfig struct {
	StorageRoot     string `yaml:"storage_root"`
	SampleInterval  string `yaml:"sample_interval"`
	PreviewInterval string `yaml:"preview_interval"`
	BackDevice      string `yaml:"back_device"`
	AudioDevice     string `yaml:"audio_device"`
	FFmpegPath      string `yaml:"ffmpeg_path"`
	MockSensor      *bool  `yaml:"mock_sensor"`
}

// AppConfig holds application configuration
type AppConfig struct {
	logger          *zap.Logger
	storageRoot     string
	targetPath      string
	sampleInterval  time.Duration
	previewInterval time.Duration
	backDevice      string
	audioDevice     string
	ffmpegPath      string
	mockSensor      bool
}

// NewAppConfig builds the configuration from defaults, the optional YAML file
// named by CAMREC_CONFIG, then CAMREC_* environment variables (highest priority).
// The target path is computed once here and never changes afterwards.
func NewAppConfig(logger *zap.Logger) (*AppConfig, error) {
	fc := fileConfig{}
	if path := os.Getenv("CAMREC_CONFIG"); path != "" {
		loaded, err := loadFile(expandPath(path))
		if err != nil {
			return nil, err
		}
		fc = *loaded
	}

	overrideString(&fc.StorageRoot, "CAMREC_STORAGE_ROOT")
	overrideString(&fc.SampleInterval, "CAMREC_SAMPLE_INTERVAL")
	overrideString(&fc.PreviewInterval, "CAMREC_PREVIEW_INTERVAL")
	overrideString(&fc.BackDevice, "CAMREC_BACK_DEVICE")
	overrideString(&fc.AudioDevice, "CAMREC_AUDIO_DEVICE")
	overrideString(&fc.FFmpegPath, "CAMREC_FFMPEG")
	if v := os.Getenv("CAMREC_MOCK_SENSOR"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid CAMREC_MOCK_SENSOR %q: %w", v, err)
		}
		fc.MockSensor = &b
	}

	cfg := &AppConfig{
		logger:          logger,
		storageRoot:     fc.StorageRoot,
		sampleInterval:  defaultSampleInterval,
		previewInterval: defaultPreviewInterval,
		backDevice:      orDefault(fc.BackDevice, defaultBackDevice),
		audioDevice:     orDefault(fc.AudioDevice, defaultAudioDevice),
		ffmpegPath:      orDefault(fc.FFmpegPath, defaultFFmpegPath),
	}
	if fc.MockSensor != nil {
		cfg.mockSensor = *fc.MockSensor
	}

	if cfg.storageRoot == "" {
		cfg.storageRoot = defaultStorageRoot()
	}
	cfg.storageRoot = expandPath(cfg.storageRoot)

	var err error
	if cfg.sampleInterval, err = parseInterval("sample interval", fc.SampleInterval, defaultSampleInterval); err != nil {
		return nil, err
	}
	if cfg.previewInterval, err = parseInterval("preview interval", fc.PreviewInterval, defaultPreviewInterval); err != nil {
		return nil, err
	}

	cfg.targetPath = filepath.Join(cfg.storageRoot, defaultTargetName)

	logger.Info("Configuration loaded",
		zap.String("storageRoot", cfg.storageRoot),
		zap.String("targetPath", cfg.targetPath),
		zap.Duration("sampleInterval", cfg.sampleInterval),
		zap.Duration("previewInterval", cfg.previewInterval),
		zap.String("backDevice", cfg.backDevice),
		zap.String("audioDevice", cfg.audioDevice),
		zap.Bool("mockSensor", cfg.mockSensor))

	return cfg, nil
}

func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

func parseInterval(name, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", name, raw)
	}
	return d, nil
}

// defaultStorageRoot is the per-user application data directory
func defaultStorageRoot() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, defaultAppDirName)
	}
	return filepath.Join("~", ".local", "share", defaultAppDirName)
}

// expandPath expands environment variables and a leading ~
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

func overrideString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// GetStorageRoot returns the directory that receives the finished recording
func (c *AppConfig) GetStorageRoot() string {
	return c.storageRoot
}

// GetTargetPath returns the fixed path every recording is moved to
func (c *AppConfig) GetTargetPath() string {
	return c.targetPath
}

// GetSampleInterval returns the orientation sampling interval
func (c *AppConfig) GetSampleInterval() time.Duration {
	return c.sampleInterval
}

// GetPreviewInterval returns how often a preview frame is grabbed
func (c *AppConfig) GetPreviewInterval() time.Duration {
	return c.previewInterval
}

// GetBackDevice returns the device node treated as the back camera
func (c *AppConfig) GetBackDevice() string {
	return c.backDevice
}

// GetAudioDevice returns the ALSA capture device
func (c *AppConfig) GetAudioDevice() string {
	return c.audioDevice
}

// GetFFmpegPath returns the ffmpeg binary
func (c *AppConfig) GetFFmpegPath() string {
	return c.ffmpegPath
}

// UseMockSensor reports whether the synthetic orientation source is used
func (c *AppConfig) UseMockSensor() bool {
	return c.mockSensor
}
