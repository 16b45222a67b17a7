package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/horde/internal/persistence/savefile"
	"github.com/vovakirdan/horde/internal/storage"
)

var savesCmd = &cobra.Command{
	Use:   "saves",
	Short: "Manage save slots",
	Long: `List, inspect, export and import saves. Slots live in the database;
.hsav files are portable copies.

Examples:
  horde saves
  horde saves inspect swarm-20250101-120000
  horde saves inspect ./swarm.hsav
  horde saves export swarm-20250101-120000 ./swarm.hsav
  horde saves import ./swarm.hsav mysave
  horde saves delete mysave`,
	Args: cobra.NoArgs,
	Run:  runSavesList,
}

var savesInspectCmd = &cobra.Command{
	Use:   "inspect <slot|file.hsav>",
	Short: "Print the contents of a save",
	Args:  cobra.ExactArgs(1),
	Run:   runSavesInspect,
}

var savesDeleteCmd = &cobra.Command{
	Use:   "delete <slot>",
	Short: "Delete a save slot",
	Args:  cobra.ExactArgs(1),
	Run:   runSavesDelete,
}

var savesExportCmd = &cobra.Command{
	Use:   "export <slot> <file.hsav>",
	Short: "Write a save slot to a file",
	Args:  cobra.ExactArgs(2),
	Run:   runSavesExport,
}

var savesImportCmd = &cobra.Command{
	Use:   "import <file.hsav> [slot]",
	Short: "Store a save file as a slot",
	Args:  cobra.RangeArgs(1, 2),
	Run:   runSavesImport,
}

func init() {
	savesCmd.AddCommand(savesInspectCmd)
	savesCmd.AddCommand(savesDeleteCmd)
	savesCmd.AddCommand(savesExportCmd)
	savesCmd.AddCommand(savesImportCmd)
}

func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fail(fmt.Errorf("opening database: %w", err))
	}
	return store
}

func runSavesList(_ *cobra.Command, _ []string) {
	store := openStore()
	defer store.Close()

	slots, err := store.ListSaves()
	if err != nil {
		fail(err)
	}

	fmt.Println("Save slots")
	fmt.Println()
	if len(slots) == 0 {
		fmt.Println("No saves yet.")
		fmt.Println()
		fmt.Println("Press ctrl+s in 'horde view' or pass --save to 'horde run'.")
		return
	}

	maxName := 4 // "Name" header
	for _, s := range slots {
		maxName = max(maxName, len(s.Name))
	}
	fmt.Printf("  %-*s  %-8s  %-8s  %s\n", maxName, "Name", "Scenario", "Time", "Saved")
	fmt.Printf("  %-*s  %-8s  %-8s  %s\n", maxName, "----", "--------", "----", "-----")
	for _, s := range slots {
		secs := int(s.Elapsed)
		fmt.Printf("  %-*s  %-8s  %-8s  %s\n", maxName, s.Name, s.Scenario,
			fmt.Sprintf("%d:%02d", secs/60, secs%60), s.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func runSavesInspect(_ *cobra.Command, args []string) {
	var (
		header any
		body   any
	)
	if strings.HasSuffix(args[0], savefile.Ext) {
		h, snap, err := savefile.Read(args[0])
		if err != nil {
			fail(err)
		}
		header, body = h, snap
	} else {
		store := openStore()
		defer store.Close()
		slot, snap, err := store.GetSave(args[0])
		if err != nil {
			fail(err)
		}
		header, body = slot, snap
	}

	out, err := json.MarshalIndent(map[string]any{"header": header, "snapshot": body}, "", "  ")
	if err != nil {
		fail(err)
	}
	fmt.Println(string(out))
}

func runSavesDelete(_ *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()
	if err := store.DeleteSave(args[0]); err != nil {
		fail(err)
	}
	fmt.Printf("Deleted %s\n", args[0])
}

func runSavesExport(_ *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()

	slot, snap, err := store.GetSave(args[0])
	if err != nil {
		fail(err)
	}
	h := savefile.NewHeader(slot.Scenario, snap)
	h.SaveID = slot.SaveID
	if err := savefile.Write(args[1], h, snap); err != nil {
		fail(err)
	}
	fmt.Printf("Exported %s to %s\n", args[0], args[1])
}

func runSavesImport(_ *cobra.Command, args []string) {
	h, snap, err := savefile.Read(args[0])
	if err != nil {
		fail(err)
	}
	name := strings.TrimSuffix(filepath.Base(args[0]), savefile.Ext)
	if len(args) > 1 {
		name = args[1]
	}

	store := openStore()
	defer store.Close()
	if _, err := store.PutSave(name, h.Scenario, snap); err != nil {
		fail(err)
	}
	fmt.Printf("Imported %s as %s\n", args[0], name)
	fmt.Printf("Resume with: horde view --load %s\n", name)
}
