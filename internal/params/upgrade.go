package params

import "fmt"

// UpgradeFallback is shown when the weapon table has no row for a kind.
const UpgradeFallback = "Upgrade weapon"

// UpgradeDescription returns the level-up card lines describing what
// taking weapon kind from currentLevel to currentLevel+1 changes.
// currentLevel 0 means the weapon is not owned yet.
func UpgradeDescription(t *Tables, kind uint8, currentLevel uint32) []string {
	w, ok := t.Weapon(kind)
	if !ok {
		return []string{UpgradeFallback}
	}
	next := currentLevel + 1

	at := func(lv uint32) WeaponSlot {
		return WeaponSlot{KindID: kind, Level: max(lv, 1)}
	}
	lines := []string{
		fmt.Sprintf("DMG: %d -> %d", at(currentLevel).EffectiveDamage(w), at(next).EffectiveDamage(w)),
		fmt.Sprintf("CD:  %.1fs -> %.1fs", at(currentLevel).EffectiveCooldown(w), at(next).EffectiveCooldown(w)),
	}

	switch w.Pattern {
	case PatternAimed:
		now, nxt := w.BulletCount(max(currentLevel, 1)), w.BulletCount(next)
		if nxt > now {
			lines = append(lines, fmt.Sprintf("Shots: %d -> %d (+)", now, nxt))
		} else {
			lines = append(lines, fmt.Sprintf("Shots: %d", now))
		}
	case PatternFixedUp:
		lines = append(lines, "Throws upward")
	case PatternRadial:
		now, nxt := radialDirs(currentLevel), radialDirs(next)
		if nxt > now {
			lines = append(lines, fmt.Sprintf("Dirs: %d -> %d (+)", now, nxt))
		} else {
			lines = append(lines, fmt.Sprintf("%d-way fire", now))
		}
	case PatternWhip:
		lines = append(lines,
			fmt.Sprintf("Range: %dpx -> %dpx", uint32(w.WhipRange(max(currentLevel, 1))), uint32(w.WhipRange(next))),
			"Fan sweep (108°)",
		)
	case PatternPiercing:
		lines = append(lines, "Piercing shot")
	case PatternChain:
		lines = append(lines, fmt.Sprintf("Chain: %d -> %d targets", w.ChainCountFor(max(currentLevel, 1)), w.ChainCountFor(next)))
	case PatternAura:
		lines = append(lines, fmt.Sprintf("Radius: %dpx -> %dpx", uint32(w.AuraRadius(max(currentLevel, 1))), uint32(w.AuraRadius(next))))
	}
	return lines
}

// radialDirs mirrors the card text: levels up to 3 fire 4 ways.
func radialDirs(level uint32) int {
	if level <= 3 {
		return 4
	}
	return 8
}
