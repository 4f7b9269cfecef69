package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/latte-escape/internal/core"
	"github.com/vovakirdan/latte-escape/internal/platform/tui"
	"github.com/vovakirdan/latte-escape/internal/registry"
	"github.com/vovakirdan/latte-escape/internal/storage"
)

const defaultRoom = "garden"

var playCmd = &cobra.Command{
	Use:   "play [room]",
	Short: "Play a room",
	Long: `Enter the given room (garden when omitted). Walking onto an exit
moves you to the next room; room state is saved when you leave.

Controls:
  Arrows/WASD - Walk
  E/Space     - Flip the switch you stand on
  P           - Pause
  Esc         - Back to the room picker
  Ctrl+S      - Screenshot to ~/.latte/screenshots
  Q/Ctrl+C    - Quit

Examples:
  latte play
  latte play maze
  latte play office --slot second-run
  latte play --config ./motion.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a room interactively",
	Long:  `Start the room picker. Tab opens the saves screen.`,
	Run: func(cmd *cobra.Command, args []string) {
		play("")
	},
}

func runPlay(cmd *cobra.Command, args []string) {
	roomID := defaultRoom
	if len(args) > 0 {
		roomID = args[0]
	}

	if !registry.Exists(roomID) {
		fmt.Fprintf(os.Stderr, "Error: unknown room %q\n", roomID)
		fmt.Fprintln(os.Stderr, "Run 'latte rooms' to see available rooms.")
		os.Exit(1)
	}
	play(roomID)
}

// play runs the terminal UI, starting in roomID or in the picker when it is
// empty.
func play(roomID string) {
	logger, closer := newLogger("latte", true)
	defer closer.Close()

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open saves database: %v\n", err)
		logger.Warn("playing without saves", "err", err)
		store = nil
	}

	opts := tui.Options{
		Runtime: core.RuntimeConfig{
			ScreenW:  width,
			ScreenH:  height,
			TickRate: flagFPS,
		},
		Motion: motionCfg,
		Store:  store,
		Logger: logger,
		Slot:   flagSlot,
	}

	runErr := tui.Run(opts, roomID)

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		logger.Error("play failed", "err", runErr)
		closer.Close()
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}
