package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Backends  BackendsConfig  `mapstructure:"backends" validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StorageConfig locates the on-disk directories the gateway owns.
// Retention of 0 keeps task records and artifacts for the process lifetime;
// any positive duration enables the background sweep of terminal tasks.
type StorageConfig struct {
	UploadDir string        `mapstructure:"upload_dir" validate:"required"`
	OutputDir string        `mapstructure:"output_dir" validate:"required"`
	StaticDir string        `mapstructure:"static_dir"`
	Retention time.Duration `mapstructure:"retention" validate:"min=0"`
}

// SchedulerConfig controls the work queue and the post-task cleanup hook.
type SchedulerConfig struct {
	QueueCapacity  int           `mapstructure:"queue_capacity" validate:"required,gt=0"`
	CleanupEnabled bool          `mapstructure:"cleanup_enabled"`
	CleanupCommand string        `mapstructure:"cleanup_command"`
	CleanupTimeout time.Duration `mapstructure:"cleanup_timeout" validate:"gt=0"`
}

// BackendsConfig holds one backend endpoint per generation module.
type BackendsConfig struct {
	VoiceDesign BackendConfig `mapstructure:"voice_design" validate:"required"`
	TTS         BackendConfig `mapstructure:"tts" validate:"required"`
	EnvAudio    BackendConfig `mapstructure:"env_audio" validate:"required"`
}

// BackendConfig describes how to reach one inference backend. Fields maps
// payload field names onto the names the deployed backend expects; fields
// without an entry keep their payload names on the wire.
type BackendConfig struct {
	URL            string            `mapstructure:"url" validate:"required,url"`
	RequestTimeout time.Duration     `mapstructure:"request_timeout" validate:"gt=0"`
	ConnectTimeout time.Duration     `mapstructure:"connect_timeout" validate:"gt=0"`
	Fields         map[string]string `mapstructure:"fields"`
}

// FieldName resolves the outbound name for a payload field.
func (b BackendConfig) FieldName(name string) string {
	if mapped, ok := b.Fields[name]; ok && mapped != "" {
		return mapped
	}
	return name
}
