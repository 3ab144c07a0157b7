package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/facecam/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigNew(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.ServerURL, convey.ShouldEqual, "http://localhost:5000")
			convey.So(cfg.ProcessFramePath, convey.ShouldEqual, "/api/process-frame")
			convey.So(cfg.FacesPath, convey.ShouldEqual, "/api/faces")
			convey.So(cfg.UploadPath, convey.ShouldEqual, "/api/upload-face")
			convey.So(cfg.DeletePath, convey.ShouldEqual, "/api/delete-face")
			convey.So(cfg.Interval(), convey.ShouldEqual, 500*time.Millisecond)
			convey.So(cfg.RefreshHz, convey.ShouldEqual, 60)
			convey.So(cfg.JPEGQuality, convey.ShouldEqual, 80)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, time.Duration(0))
			convey.So(cfg.MirrorMode, convey.ShouldEqual, config.MirrorReflect)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ServerURL, convey.ShouldEqual, "http://localhost:5000")
				convey.So(cfg.IntervalMS, convey.ShouldEqual, 500)
				convey.So(cfg.Locale, convey.ShouldEqual, "en")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("FACECAM_SERVER_URL", "http://recognizer:8000")
			_ = os.Setenv("FACECAM_INTERVAL_MS", "250")
			_ = os.Setenv("FACECAM_LOCALE", "pt")
			_ = os.Setenv("FACECAM_MIRROR_MODE", "pass_through")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ServerURL, convey.ShouldEqual, "http://recognizer:8000")
				convey.So(cfg.IntervalMS, convey.ShouldEqual, 250)
				convey.So(cfg.Locale, convey.ShouldEqual, "pt")
				convey.So(cfg.MirrorMode, convey.ShouldEqual, config.MirrorPassThrough)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
server_url: "http://10.0.0.5:5000"
camera_url: "http://cam.local/video"
jpeg_quality: 70
label_format: name_only
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("FACECAM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ServerURL, convey.ShouldEqual, "http://10.0.0.5:5000")
				convey.So(cfg.CameraURL, convey.ShouldEqual, "http://cam.local/video")
				convey.So(cfg.JPEGQuality, convey.ShouldEqual, 70)
				convey.So(cfg.LabelFormat, convey.ShouldEqual, config.LabelNameOnly)
				convey.So(cfg.FacesPath, convey.ShouldEqual, "/api/faces")
			})
		})

		convey.Convey("When both file and environment variables are set", func() {
			tmpFile := createTempConfigFile(`
jpeg_quality: 70
interval_ms: 1000
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("FACECAM_JPEG_QUALITY", "75")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, config.WithFile(tmpFile))

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.JPEGQuality, convey.ShouldEqual, 75)
				convey.So(cfg.IntervalMS, convey.ShouldEqual, 1000)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			cfg, err := config.Load(ctx, config.WithFile(tmpFile))

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			cfg, err := config.Load(ctx, config.WithFile("/non/existent/file.yaml"))

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("FACECAM_INTERVAL_MS", "soon")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidate(t *testing.T) {
	convey.Convey("Given config validation", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
			substr string
		}{
			{"relative server url", func(c *config.Config) { c.ServerURL = "/api" }, "server_url"},
			{"empty server url", func(c *config.Config) { c.ServerURL = "" }, "server_url"},
			{"zero width", func(c *config.Config) { c.CameraWidth = 0 }, "camera_width"},
			{"negative interval", func(c *config.Config) { c.IntervalMS = -1 }, "interval_ms"},
			{"zero refresh", func(c *config.Config) { c.RefreshHz = 0 }, "refresh_hz"},
			{"quality too high", func(c *config.Config) { c.JPEGQuality = 101 }, "jpeg_quality"},
			{"quality zero", func(c *config.Config) { c.JPEGQuality = 0 }, "jpeg_quality"},
			{"negative timeout", func(c *config.Config) { c.RequestTimeoutMS = -5 }, "request_timeout_ms"},
			{"unknown locale", func(c *config.Config) { c.Locale = "fr" }, "locale"},
			{"unknown label format", func(c *config.Config) { c.LabelFormat = "fancy" }, "label_format"},
			{"unknown mirror mode", func(c *config.Config) { c.MirrorMode = "flip" }, "mirror_mode"},
		}

		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()

				convey.Convey("Then it should be rejected as invalid", func() {
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
					convey.So(err.Error(), convey.ShouldContainSubstring, tc.substr)
				})
			})
		}

		convey.Convey("When a request timeout is set", func() {
			cfg := config.New()
			cfg.RequestTimeoutMS = 1500

			convey.Convey("Then it is converted to a duration", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
				convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 1500*time.Millisecond)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"FACECAM_CONFIG",
		"FACECAM_SERVER_URL",
		"FACECAM_INTERVAL_MS",
		"FACECAM_LOCALE",
		"FACECAM_MIRROR_MODE",
		"FACECAM_JPEG_QUALITY",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "facecam-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
