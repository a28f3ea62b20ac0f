// Package cli provides the command-line interface for windowsync.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/faiface/beep/speaker"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/iburimskiy/window-sync/internal/broadcast"
	"github.com/iburimskiy/window-sync/internal/chime"
	"github.com/iburimskiy/window-sync/internal/config"
	"github.com/iburimskiy/window-sync/internal/game"
	"github.com/iburimskiy/window-sync/internal/geometry"
	"github.com/iburimskiy/window-sync/internal/logging"
	"github.com/iburimskiy/window-sync/internal/marker"
	"github.com/iburimskiy/window-sync/internal/store"
)

// NewRootCmd creates the root command. Flags are bound onto v so they
// override the config file and environment.
func NewRootCmd(v *viper.Viper, version string) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "windowsync",
		Short: "Animated marker that reacts to other windowsync windows next to it",
		Long: `windowsync opens a window with a glowing marker. Every running instance
publishes its window position on a shared store; when another instance sits
next to this one the marker is drawn toward the shared edge.

Click anywhere to recenter the marker. Esc or Q quits.`,
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configFile)
			if err == nil {
				err = Run(cmd.Context(), cfg)
			}
			if err != nil {
				reportError(v, err)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (json, yaml or toml)")
	flags.String("store", "", "shared store database file")
	flags.String("log-level", "", "trace, debug, info, warn or error")
	flags.String("log-format", "", "console or json")
	flags.Bool("overlay", false, "show the debug overlay")
	flags.Bool("chime", false, "play a tone when the marker flashes")

	bind := map[string]string{
		"store.path":  "store",
		"logLevel":    "log-level",
		"logFormat":   "log-format",
		"ui.overlay":  "overlay",
		"audio.chime": "chime",
	}
	for key, flag := range bind {
		// Lookup never fails for flags registered above.
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	return cmd
}

// Run opens the shared store and runs the window until it is closed.
func Run(ctx context.Context, cfg *config.Config) error {
	id := geometry.NewInstanceID()
	ctx = logging.WithContext(ctx, logging.NewFromConfigValues(cfg.LogLevel, cfg.LogFormat))
	ctx = logging.WithInstanceID(ctx, id)
	log := logging.FromContext(ctx)

	c, err := marker.ParseColor(cfg.Marker.Color)
	if err != nil {
		return err
	}

	st, err := store.OpenSQLite(ctx, cfg.Store.Path, store.WithPollInterval(cfg.Store.PollInterval))
	if err != nil {
		return fmt.Errorf("open shared store: %w", err)
	}
	defer st.Close()

	window := game.HostWindow{}
	ch := broadcast.New(id, st, window, broadcast.Options{
		Key:      cfg.Broadcast.Key,
		Interval: cfg.Broadcast.Interval,
	})

	anim := marker.NewAnimator(cfg.Window.Width, cfg.Window.Height, cfg.Marker.Radius, c, marker.DefaultMotion())
	g := game.New(anim, ch, window, game.Options{
		Overlay: cfg.UI.Overlay,
		Chime:   newFlasher(ctx, cfg.Audio.Chime),
	})

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return keepRunning(ctx, "broadcast", broadcastRetry, ch.Run) })

	log.Info().Str("store", cfg.Store.Path).Msg("window starting")
	runErr := ebiten.RunGame(g)

	cancel()
	if err := eg.Wait(); err != nil {
		log.Warn().Err(err).Msg("broadcast stopped with error")
	}
	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		return fmt.Errorf("run game: %w", runErr)
	}
	log.Info().Msg("window closed")
	return nil
}

const broadcastRetry = time.Second

// keepRunning calls run until ctx is done. An error is logged when it
// happens and run is restarted after retry, so the window keeps
// broadcasting for its whole lifetime.
func keepRunning(ctx context.Context, name string, retry time.Duration, run func(context.Context) error) error {
	log := logging.FromContext(ctx)
	for {
		err := run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			log.Error().Err(err).Str("loop", name).Dur("retry", retry).Msg("loop stopped, restarting")
		} else {
			log.Warn().Str("loop", name).Dur("retry", retry).Msg("loop returned early, restarting")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retry):
		}
	}
}

// newFlasher initialises the speaker when the chime is enabled. Audio
// failures only disable the chime.
func newFlasher(ctx context.Context, enabled bool) game.Flasher {
	if !enabled {
		return nil
	}
	sr := chime.SampleRate
	if err := speaker.Init(sr, sr.N(time.Second/20)); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Msg("audio unavailable, chime disabled")
		return nil
	}
	return chime.New(sr, speaker.Play)
}

func reportError(v *viper.Viper, err error) {
	if !v.GetBool("ui.errorDialog") {
		return
	}
	_ = zenity.Error(err.Error(), zenity.Title("Window Sync"))
}
