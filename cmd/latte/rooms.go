package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/latte-escape/internal/registry"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List all available rooms",
	Long:  `Shows every room registered: the built-in ones plus any loaded with --rooms.`,
	Run:   runRooms,
}

func runRooms(cmd *cobra.Command, args []string) {
	list := registry.List()

	if len(list) == 0 {
		fmt.Println("No rooms available.")
		return
	}

	fmt.Println("Available rooms:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, r := range list {
		if len(r.ID) > maxIDLen {
			maxIDLen = len(r.ID)
		}
	}

	fmt.Printf("  %-*s  %-4s  %s\n", maxIDLen, "ID", "Fog", "Name")
	fmt.Printf("  %-*s  %-4s  %s\n", maxIDLen, "--", "---", "----")
	for _, r := range list {
		fog := ""
		if r.Fog {
			fog = "yes"
		}
		fmt.Printf("  %-*s  %-4s  %s\n", maxIDLen, r.ID, fog, r.Name)
	}

	fmt.Println()
	fmt.Println("Run 'latte play <id>' to play a room.")
}
