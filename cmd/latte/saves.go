package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/latte-escape/internal/storage"
)

var (
	flagClear    bool
	flagClearAll bool
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "Show or clear save slots",
	Long: `List every save slot with the room it was left in, or clear one.

Examples:
  latte saves
  latte saves --clear                # clear the default slot
  latte saves --clear --slot alice
  latte saves --clear --all`,
	Args: cobra.NoArgs,
	Run:  runSaves,
}

func init() {
	savesCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete the slot given by --slot")
	savesCmd.Flags().BoolVar(&flagClearAll, "all", false, "With --clear, delete every slot")
}

func runSaves(cmd *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening saves database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagClear {
		slot := flagSlot
		if flagClearAll {
			slot = ""
		}
		if err := store.ClearSaves(slot); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing saves: %v\n", err)
			os.Exit(1)
		}
		if slot == "" {
			fmt.Println("Cleared all save slots.")
		} else {
			fmt.Printf("Cleared slot %q.\n", slot)
		}
		return
	}

	saves, err := store.ListSaves()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving saves: %v\n", err)
		os.Exit(1)
	}

	if len(saves) == 0 {
		fmt.Println("No saves recorded yet.")
		fmt.Println()
		fmt.Println("Leave a room with 'latte play' to create one.")
		return
	}

	maxSlotLen := 4 // "Slot" header
	for _, s := range saves {
		if len(s.Slot) > maxSlotLen {
			maxSlotLen = len(s.Slot)
		}
	}

	fmt.Printf("  %-*s  %-10s  %-18s  %-6s  %-8s  %s\n", maxSlotLen, "Slot", "Room", "Position", "Facing", "Travel", "Saved")
	fmt.Printf("  %-*s  %-10s  %-18s  %-6s  %-8s  %s\n", maxSlotLen, "----", "----", "--------", "------", "------", "-----")
	for _, s := range saves {
		pos := fmt.Sprintf("%.1f, %.1f", s.X, s.Y)
		fmt.Printf("  %-*s  %-10s  %-18s  %-6s  %-8.1f  %s\n",
			maxSlotLen, s.Slot, s.RoomID, pos, s.Facing, s.Travel, s.UpdatedAt.Format("2006-01-02 15:04"))
	}
}
