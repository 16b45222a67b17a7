package params

// Loadout limits.
const (
	MaxWeaponLevel = 8
	MaxWeaponSlots = 6
)

// WeaponSlot is one equipped weapon. The slot list belongs to the rule
// authority; only CooldownTimer is advanced by the simulation.
type WeaponSlot struct {
	KindID        uint8   `json:"kind_id" msgpack:"kind_id"`
	Level         uint32  `json:"level" msgpack:"level"`
	CooldownTimer float32 `json:"-" msgpack:"-"`
}

// NewWeaponSlot returns a level 1 slot ready to fire.
func NewWeaponSlot(kind uint8) WeaponSlot {
	return WeaponSlot{KindID: kind, Level: 1}
}

// EffectiveCooldown shortens the base cooldown by 7% per level above 1,
// floored at half the base.
func (s WeaponSlot) EffectiveCooldown(w WeaponParams) float32 {
	base := w.Cooldown
	cd := base * (1 - (float32(s.Level)-1)*0.07)
	return max(cd, base*0.5)
}

// EffectiveDamage adds max(base/4, 1) per level above 1.
func (s WeaponSlot) EffectiveDamage(w WeaponParams) int32 {
	base := w.Damage
	return base + (int32(s.Level)-1)*max(base/4, 1)
}

// BulletCount returns the volley size for this slot's level.
func (s WeaponSlot) BulletCount(w WeaponParams) int {
	return w.BulletCount(s.Level)
}
