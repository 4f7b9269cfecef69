// latte is a tile-world room explorer for the terminal.
//
// Usage:
//
//	latte rooms              - List available rooms
//	latte play [room]        - Play a room (default: garden)
//	latte menu               - Pick a room interactively
//	latte inspect <room>     - Print a room's classified grid
//	latte serve              - Start SSH server for remote play
//	latte saves              - Show or clear save slots
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 60)
//	--db <path>         - Set database path (default: ~/.latte/saves.db)
//	--config <path>     - Motion config YAML
//	--rooms <dir>       - Extra room files, overriding built-in rooms by ID
//	--log-file <path>   - Log file (rotated)
//	--log-level <lvl>   - debug, info, warn or error
//	--slot <name>       - Save slot
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/latte-escape/internal/config"
	"github.com/vovakirdan/latte-escape/internal/registry"
	"github.com/vovakirdan/latte-escape/internal/rooms"
	_ "github.com/vovakirdan/latte-escape/internal/rooms/builtin" // registers the built-in rooms
	"github.com/vovakirdan/latte-escape/internal/session"
)

var (
	// Global flags
	flagFPS      int
	flagDBPath   string
	flagConfig   string
	flagRoomsDir string
	flagLogFile  string
	flagLogLevel string
	flagSlot     string

	// Set up by setup before any command runs.
	motionCfg config.MotionConfig
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "latte",
	Short: "Latte Escape - walk tile rooms in your terminal",
	Long: `Latte Escape is a terminal tile-world explorer: walk a character
through rooms, flip switches to open gates and find the way out.

Available commands:
  rooms    - Show all available rooms
  play     - Play a room directly
  menu     - Interactive room picker
  inspect  - Print a room's grid, gates and fog
  serve    - Start SSH server for remote play
  saves    - Show or clear save slots

Examples:
  latte rooms
  latte play office
  latte inspect maze --at 8,1
  latte serve --ssh :2222
  latte saves --clear`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.latte/saves.db", "Path to saves database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom motion config YAML")
	rootCmd.PersistentFlags().StringVar(&flagRoomsDir, "rooms", "", "Directory of extra room files")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Log file (default ~/.latte/logs/latte.log while playing)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagSlot, "slot", session.DefaultSlot, "Save slot")

	rootCmd.AddCommand(roomsCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(savesCmd)
}

// setup loads the motion config and any extra rooms.
func setup(_ *cobra.Command, _ []string) error {
	if flagFPS <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", flagFPS)
	}
	if _, err := log.ParseLevel(flagLogLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}

	cfg, err := config.LoadMotion(flagConfig)
	if err != nil {
		return err
	}
	motionCfg = cfg

	if flagRoomsDir != "" {
		if err := loadRoomsDir(flagRoomsDir); err != nil {
			return err
		}
	}
	return nil
}

// loadRoomsDir registers every room file under dir. Files that fail to
// parse are reported and skipped.
func loadRoomsDir(dir string) error {
	defs, skipped, err := rooms.NewLoader(dir).LoadAll()
	if err != nil {
		return err
	}
	for _, e := range skipped {
		fmt.Fprintf(os.Stderr, "Warning: skipping room file: %v\n", e)
	}
	for _, def := range defs {
		if err := registry.Replace(def.ID, registry.Static(def)); err != nil {
			return err
		}
	}
	return nil
}
