package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/horde/internal/params"
	"github.com/vovakirdan/horde/internal/runner"
	"github.com/vovakirdan/horde/internal/sim"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}

func TestSaveSlotRoundTrip(t *testing.T) {
	store := openTestStore(t)

	snap := sim.SaveSnapshot{
		PlayerHP:       42,
		PlayerX:        100,
		PlayerY:        200,
		PlayerMaxHP:    150,
		ElapsedSeconds: 61.5,
		WeaponSlots: []params.WeaponSlot{
			{KindID: 0, Level: 3, CooldownTimer: 0.4},
			{KindID: 5, Level: 1},
		},
	}
	id, err := store.PutSave("quick", "swarm", snap)
	if err != nil {
		t.Fatalf("PutSave() failed: %v", err)
	}
	if id == "" {
		t.Error("PutSave() returned an empty save id")
	}

	slot, got, err := store.GetSave("quick")
	if err != nil {
		t.Fatalf("GetSave() failed: %v", err)
	}
	if slot.SaveID != id || slot.Scenario != "swarm" || slot.Elapsed != 61.5 {
		t.Errorf("slot metadata = %+v", slot)
	}
	if got.PlayerHP != 42 || got.PlayerMaxHP != 150 || got.PlayerY != 200 {
		t.Errorf("decoded snapshot = %+v", got)
	}
	if len(got.WeaponSlots) != 2 || got.WeaponSlots[0].Level != 3 || got.WeaponSlots[1].KindID != 5 {
		t.Errorf("decoded slots = %+v", got.WeaponSlots)
	}
	if got.WeaponSlots[0].CooldownTimer != 0 {
		t.Errorf("cooldown was persisted: %v", got.WeaponSlots[0].CooldownTimer)
	}
}

func TestSaveSlotOverwrite(t *testing.T) {
	store := openTestStore(t)

	first, _ := store.PutSave("slot1", "swarm", sim.SaveSnapshot{PlayerHP: 10})
	second, err := store.PutSave("slot1", "arena", sim.SaveSnapshot{PlayerHP: 90})
	if err != nil {
		t.Fatalf("PutSave() overwrite failed: %v", err)
	}
	if first == second {
		t.Error("overwrite should issue a new save id")
	}

	slots, err := store.ListSaves()
	if err != nil {
		t.Fatalf("ListSaves() failed: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot after overwrite, got %d", len(slots))
	}
	_, snap, _ := store.GetSave("slot1")
	if snap.PlayerHP != 90 || slots[0].Scenario != "arena" {
		t.Errorf("overwrite not applied: hp=%v scenario=%s", snap.PlayerHP, slots[0].Scenario)
	}
}

func TestSaveSlotMissing(t *testing.T) {
	store := openTestStore(t)

	if _, _, err := store.GetSave("nope"); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("GetSave() error = %v, expected ErrSlotNotFound", err)
	}
	if err := store.DeleteSave("nope"); !errors.Is(err, ErrSlotNotFound) {
		t.Errorf("DeleteSave() error = %v, expected ErrSlotNotFound", err)
	}

	store.PutSave("a", "swarm", sim.SaveSnapshot{})
	if err := store.DeleteSave("a"); err != nil {
		t.Fatalf("DeleteSave() failed: %v", err)
	}
	if slots, _ := store.ListSaves(); len(slots) != 0 {
		t.Errorf("expected no slots after delete, got %d", len(slots))
	}
}

func TestRunsTopAndStats(t *testing.T) {
	store := openTestStore(t)

	for i, score := range []int{300, 100, 500} {
		_, err := store.SaveRun(RunRecord{
			Scenario:  "swarm",
			Frames:    uint64(1000 * (i + 1)),
			Score:     score,
			MaxMs:     float64(i + 2),
			EndReason: "player_dead",
		})
		if err != nil {
			t.Fatalf("SaveRun() failed: %v", err)
		}
	}
	store.SaveRun(RunRecord{Scenario: "arena", Score: 50, EndReason: "limit"})

	top, err := store.TopRuns("swarm", 2)
	if err != nil {
		t.Fatalf("TopRuns() failed: %v", err)
	}
	if len(top) != 2 || top[0].Score != 500 || top[1].Score != 300 {
		t.Errorf("TopRuns() = %+v", top)
	}
	if top[0].RunID == "" {
		t.Error("SaveRun() should generate a run id")
	}

	stats, err := store.AllScenarioStats()
	if err != nil {
		t.Fatalf("AllScenarioStats() failed: %v", err)
	}
	sw := stats["swarm"]
	if sw == nil || sw.Runs != 3 || sw.BestScore != 500 || sw.MaxFrames != 3000 || sw.WorstMs != 4 {
		t.Errorf("swarm stats = %+v", sw)
	}
	if sw != nil && sw.AvgScore != 300 {
		t.Errorf("swarm avg = %v, expected 300", sw.AvgScore)
	}

	if err := store.ClearRuns("swarm"); err != nil {
		t.Fatalf("ClearRuns() failed: %v", err)
	}
	recent, _ := store.RecentRuns(10)
	if len(recent) != 1 || recent[0].Scenario != "arena" {
		t.Errorf("clearing swarm touched other scenarios: %+v", recent)
	}
}

func TestRecordRun(t *testing.T) {
	store := openTestStore(t)

	err := store.RecordRun(runner.RunStats{
		RunID:     "run-1",
		Scenario:  "boss",
		Seed:      7,
		Frames:    3600,
		Kills:     12,
		Score:     900,
		AvgMs:     1.5,
		EndReason: runner.EndCompleted,
	})
	if err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}

	r, err := store.RunByID("run-1")
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if r == nil {
		t.Fatal("RunByID() found nothing")
	}
	if r.Seed != 7 || r.Frames != 3600 || r.Kills != 12 || r.EndReason != string(runner.EndCompleted) {
		t.Errorf("recorded run = %+v", r)
	}

	missing, err := store.RunByID("nope")
	if err != nil || missing != nil {
		t.Errorf("RunByID(nope) = %v, %v; expected nil, nil", missing, err)
	}
}
