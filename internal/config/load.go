package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultCleanupCommand is the post-task accelerator reclaim invocation.
// It is best effort: hosts without python3 or torch lose nothing but the
// reclaim itself.
const DefaultCleanupCommand = `python3 -c 'import torch; torch.cuda.empty_cache(); print("cuda cache cleared")'`

// Load configuration from environment variables and optionally a config file.
// Precedence, lowest to highest: built-in defaults, config.yaml in the working
// directory, environment variables with the GENGATE_ prefix (dots replaced by
// underscores, e.g. GENGATE_SERVER_PORT). Returns a populated Config struct or
// an error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file; absence is not an error.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Configure environment variables
	v.SetEnvPrefix("GENGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind critical environment variables
	bindEnvs := []struct {
		key    string
		envVar string
	}{
		{"server.port", "GENGATE_SERVER_PORT"},
		{"server.log_level", "GENGATE_SERVER_LOG_LEVEL"},
		{"storage.upload_dir", "GENGATE_STORAGE_UPLOAD_DIR"},
		{"storage.output_dir", "GENGATE_STORAGE_OUTPUT_DIR"},
		{"backends.voice_design.url", "GENGATE_BACKENDS_VOICE_DESIGN_URL"},
		{"backends.tts.url", "GENGATE_BACKENDS_TTS_URL"},
		{"backends.env_audio.url", "GENGATE_BACKENDS_ENV_AUDIO_URL"},
	}

	for _, env := range bindEnvs {
		if err := v.BindEnv(env.key, env.envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", env.envVar, err)
		}
	}

	// Unmarshal and validate
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the full default key set. Every key the gateway
// understands appears here so that environment overrides resolve during
// Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("storage.upload_dir", "./uploads")
	v.SetDefault("storage.output_dir", "./outputs")
	v.SetDefault("storage.static_dir", "./static")
	v.SetDefault("storage.retention", "0")

	v.SetDefault("scheduler.queue_capacity", 256)
	v.SetDefault("scheduler.cleanup_enabled", true)
	v.SetDefault("scheduler.cleanup_command", DefaultCleanupCommand)
	v.SetDefault("scheduler.cleanup_timeout", "10s")

	v.SetDefault("backends.voice_design.url", "http://127.0.0.1:9101/infer")
	v.SetDefault("backends.voice_design.request_timeout", "900s")
	v.SetDefault("backends.voice_design.connect_timeout", "20s")
	for _, f := range []string{"text", "instruct", "language"} {
		v.SetDefault("backends.voice_design.fields."+f, f)
	}

	v.SetDefault("backends.tts.url", "http://127.0.0.1:9102/infer")
	v.SetDefault("backends.tts.request_timeout", "1800s")
	v.SetDefault("backends.tts.connect_timeout", "30s")
	for _, f := range []string{
		"text_input", "reference_audio",
		"emotion_happy", "emotion_angry", "emotion_sad", "emotion_fear",
		"emotion_disgust", "emotion_melancholy", "emotion_surprise", "emotion_calm",
		"use_random",
	} {
		v.SetDefault("backends.tts.fields."+f, f)
	}

	v.SetDefault("backends.env_audio.url", "http://127.0.0.1:9103/infer")
	v.SetDefault("backends.env_audio.request_timeout", "1800s")
	v.SetDefault("backends.env_audio.connect_timeout", "30s")
	for _, f := range []string{
		"video", "prompt", "negative_prompt", "audio_mix_mode",
		"ambient_volume", "bgm_volume", "num_steps", "cfg_strength",
	} {
		v.SetDefault("backends.env_audio.fields."+f, f)
	}
}
