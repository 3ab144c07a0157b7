package main

import (
	"errors"
	"fmt"

	"github.com/okian/facecam/internal/adapters/camera"
	"github.com/okian/facecam/internal/adapters/remote"
	"github.com/okian/facecam/internal/app"
	"github.com/okian/facecam/internal/config"
	"github.com/okian/facecam/internal/overlay"
	"github.com/okian/facecam/pkg/logger"
)

var errNoCamera = errors.New("no camera configured: set camera_url or camera_file")

func newRemote(cfg *config.Config) (*remote.Client, error) {
	return remote.New(cfg.ServerURL,
		remote.WithPaths(remote.Paths{
			ProcessFrame: cfg.ProcessFramePath,
			Faces:        cfg.FacesPath,
			Upload:       cfg.UploadPath,
			Delete:       cfg.DeletePath,
		}),
		remote.WithTimeout(cfg.RequestTimeout()),
		remote.WithLogger(logger.Named("remote")),
	)
}

func newSource(cfg *config.Config) (camera.Source, error) {
	opts := []camera.Option{camera.WithLogger(logger.Named("camera"))}
	switch {
	case cfg.CameraURL != "":
		return camera.NewHTTPSource(cfg.CameraURL, opts...), nil
	case cfg.CameraFile != "":
		return camera.NewStillSource(cfg.CameraFile, opts...), nil
	default:
		return nil, errNoCamera
	}
}

func newStyle(cfg *config.Config) (overlay.Style, error) {
	style := overlay.DefaultStyle()

	warning, err := overlay.ParseHexColor(cfg.ColorWarning)
	if err != nil {
		return style, fmt.Errorf("color_warning: %w", err)
	}
	success, err := overlay.ParseHexColor(cfg.ColorSuccess)
	if err != nil {
		return style, fmt.Errorf("color_success: %w", err)
	}
	style.Colors = overlay.ColorScheme{Warning: warning, Success: success}
	style.Label = overlay.LabelFormat(cfg.LabelFormat)
	style.Mirror = overlay.MirrorMode(cfg.MirrorMode)
	return style, nil
}

// newSession wires a session from cfg. source may be nil for commands that
// only touch the registry. extra options are applied last.
func newSession(cfg *config.Config, source camera.Source, extra ...app.Option) (*app.Session, error) {
	client, err := newRemote(cfg)
	if err != nil {
		return nil, err
	}
	style, err := newStyle(cfg)
	if err != nil {
		return nil, err
	}
	// Validate has already restricted cfg.Locale to a known code.
	locale, _ := app.LocaleFor(cfg.Locale)

	opts := []app.Option{
		app.WithLocale(locale),
		app.WithStyle(style),
		app.WithConstraints(camera.Constraints{Width: cfg.CameraWidth, Height: cfg.CameraHeight}),
		app.WithInterval(cfg.Interval()),
		app.WithRefreshRate(cfg.RefreshHz),
		app.WithJPEGQuality(cfg.JPEGQuality),
		app.WithLogger(logger.Named("session")),
	}
	return app.New(source, client, client, append(opts, extra...)...), nil
}
