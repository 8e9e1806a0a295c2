package main

import (
	"runtime"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gobuffalo/envy"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/vkngwrapper/triangle/bootstrap"
	"github.com/vkngwrapper/triangle/sdlwindow"
	"github.com/vkngwrapper/triangle/vulkan"
)

// Settings are read from the environment or a .env file.
type Settings struct {
	Width      int
	Height     int
	Validation bool
	// AbortOnError turns driver error diagnostics into bootstrap failures.
	AbortOnError bool
	// AnyAdapter accepts discrete GPUs and prefers them.
	AnyAdapter bool
	LogLevel   log.Level
}

func loadSettings() (Settings, error) {
	var settings Settings
	var err error

	if settings.Width, err = strconv.Atoi(envy.Get("TRIANGLE_WIDTH", "1920")); err != nil {
		return settings, errors.Wrap(err, "TRIANGLE_WIDTH")
	}
	if settings.Height, err = strconv.Atoi(envy.Get("TRIANGLE_HEIGHT", "1080")); err != nil {
		return settings, errors.Wrap(err, "TRIANGLE_HEIGHT")
	}
	if settings.Validation, err = strconv.ParseBool(envy.Get("TRIANGLE_VALIDATION", "true")); err != nil {
		return settings, errors.Wrap(err, "TRIANGLE_VALIDATION")
	}
	if settings.AbortOnError, err = strconv.ParseBool(envy.Get("TRIANGLE_ABORT_ON_ERROR", "false")); err != nil {
		return settings, errors.Wrap(err, "TRIANGLE_ABORT_ON_ERROR")
	}
	if settings.AnyAdapter, err = strconv.ParseBool(envy.Get("TRIANGLE_ANY_ADAPTER", "false")); err != nil {
		return settings, errors.Wrap(err, "TRIANGLE_ANY_ADAPTER")
	}
	if settings.LogLevel, err = log.ParseLevel(envy.Get("TRIANGLE_LOG_LEVEL", "info")); err != nil {
		return settings, errors.Wrap(err, "TRIANGLE_LOG_LEVEL")
	}

	return settings, nil
}

func (s Settings) bootstrapConfig() bootstrap.Config {
	config := bootstrap.DefaultConfig()
	config.Validation = s.Validation
	if s.AbortOnError {
		config.Diagnostics.Actions[bootstrap.SeverityError] = bootstrap.ActionAbort
	}
	if s.AnyAdapter {
		config.AdapterPolicy = bootstrap.PreferDiscrete()
	}
	config.Logger = log.StandardLogger()
	return config
}

func run(settings Settings) error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return errors.Wrap(err, "init sdl")
	}
	defer sdl.Quit()

	window, err := sdlwindow.New("Triangle", settings.Width, settings.Height)
	if err != nil {
		return err
	}
	defer window.Destroy()

	loader, err := vulkan.NewLoader(sdl.VulkanGetVkGetInstanceProcAddr())
	if err != nil {
		return err
	}

	// The window exists, so its surface can be bound right away.
	ctx, err := bootstrap.Bootstrap(loader, window, settings.bootstrapConfig())
	if err != nil {
		return err
	}
	defer ctx.Close()

	for {
		switch e := sdl.WaitEvent().(type) {
		case *sdl.QuitEvent:
			log.Info("close requested")
			return nil
		case *sdl.WindowEvent:
			if e.Event != sdl.WINDOWEVENT_RESIZED && e.Event != sdl.WINDOWEVENT_RESTORED {
				continue
			}
			if window.Minimized() {
				continue
			}
			if err := ctx.Rebuild(window.DrawableSize()); err != nil {
				return err
			}
		}
	}
}

func main() {
	runtime.LockOSThread()

	settings, err := loadSettings()
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
	log.SetLevel(settings.LogLevel)

	if err := run(settings); err != nil {
		log.Fatalf("%+v\n", err)
	}
}
