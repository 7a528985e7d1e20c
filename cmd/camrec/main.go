package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/genricoloni/camrec/internal/camera"
	"github.com/genricoloni/camrec/internal/config"
	"github.com/genricoloni/camrec/internal/domain"
	"github.com/genricoloni/camrec/internal/finalizer"
	"github.com/genricoloni/camrec/internal/permission"
	"github.com/genricoloni/camrec/internal/processor"
	"github.com/genricoloni/camrec/internal/screen"
	"github.com/genricoloni/camrec/internal/sensor"
	"github.com/genricoloni/camrec/internal/ui"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// AppOptions is the dependency graph of the application
var AppOptions = fx.Options(
	// Provide dependencies
	fx.Provide(
		newLogger,
		fx.Annotate(config.NewAppConfig, fx.As(new(domain.Config))),
		sensor.NewSource,
		sensor.NewHub,
		fx.Annotate(camera.NewSysfsLister, fx.As(new(domain.DeviceLister))),
		fx.Annotate(camera.NewFFmpegOpener, fx.As(new(domain.CameraOpener))),
		fx.Annotate(camera.NewFFmpegGrabber, fx.As(new(domain.FrameGrabber))),
		fx.Annotate(permission.NewDeviceStore, fx.As(new(domain.PermissionStore))),
		fx.Annotate(finalizer.NewMover, fx.As(new(domain.Finalizer))),
		screen.NewController,
		processor.NewPreviewRenderer,
		newProgram,
	),

	// Lifecycle hooks
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(
		// Logger configuration
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		AppOptions,
	)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the application
	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for interrupt signal or the UI to exit
	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	// Stop the application gracefully
	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// logPath returns where logs go; the terminal belongs to the UI
func logPath() string {
	if p := os.Getenv("CAMREC_LOG_FILE"); p != "" {
		return p
	}
	return filepath.Join(os.TempDir(), "camrec.log")
}

// newLogger creates a new zap logger instance writing to the log file
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{logPath()}
	cfg.ErrorOutputPaths = []string{logPath()}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// newProgram builds the terminal program around the screen controller
func newProgram(logger *zap.Logger, cfg domain.Config, ctrl *screen.Controller, renderer *processor.PreviewRenderer) *tea.Program {
	model := ui.NewModel(logger, cfg, ctrl, renderer)
	return tea.NewProgram(model, tea.WithAltScreen())
}

// registerHooks sets up application lifecycle hooks
func registerHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	logger *zap.Logger,
	hub *sensor.Hub,
	ctrl *screen.Controller,
	program *tea.Program,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Camrec started")

			// The sampling loop outlives the start context
			if err := hub.Start(context.Background()); err != nil {
				return err
			}
			if err := ctrl.Mount(ctx); err != nil {
				return err
			}

			go func() {
				if _, err := program.Run(); err != nil {
					logger.Error("UI exited with error", zap.Error(err))
				}
				if err := shutdowner.Shutdown(); err != nil {
					logger.Warn("Failed to request shutdown", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			program.Quit()
			program.Wait()
			ctrl.Unmount()
			return hub.Stop(ctx)
		},
	})
}
