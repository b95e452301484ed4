package tile

// Индексы тайлов игрового и фронтального слоев.
// Значения совпадают с форматом карт и не должны меняться.
const (
	Air          = 0
	Solid        = 1
	Death        = 2
	NoHook       = 3
	NoLaser      = 4
	ThroughCut   = 5
	Through      = 6
	Jump         = 7
	Freeze       = 9
	TeleInEvil   = 10
	Unfreeze     = 11
	DFreeze      = 12
	DUnfreeze    = 13
	TeleInWeapon = 14
	TeleInHook   = 15
	WallJump     = 16
	EHookEnable  = 17
	EHookDisable = 18
	HitEnable    = 19
	HitDisable   = 20
	SoloEnable   = 21
	SoloDisable  = 22
)

// Типы переключателей делят пространство номеров с игровыми тайлами
const (
	SwitchTimedOpen  = 22
	SwitchTimedClose = 23
	SwitchOpen       = 24
	SwitchClose      = 25
)

const (
	TeleIn              = 26
	TeleOut             = 27
	Boost               = 28
	TeleCheck           = 29
	TeleCheckOut        = 30
	TeleCheckIn         = 31
	RefillJumps         = 32
	Start               = 33
	Finish              = 34
	TimeCheckpointFirst = 35
	TimeCheckpointLast  = 59
	Stop                = 60
	StopS               = 61
	StopA               = 62
	TeleCheckInEvil     = 63
	CP                  = 64
	CPF                 = 65
	ThroughAll          = 66
	ThroughDir          = 67
	Tune                = 68
	OldLaser            = 71
	NPC                 = 72
	EHook               = 73
	NoHit               = 74
	NPH                 = 75
	UnlockTeam          = 76
	AddTime             = 79
)

const (
	NPCDisable            = 88
	UnlimitedJumpsDisable = 89
	JetpackDisable        = 90
	NPHDisable            = 91
	SubtractTime          = 95
	TeleGunEnable         = 96
	TeleGunDisable        = 97
	AllowTeleGun          = 98
	AllowBlueTeleGun      = 99
	NPCEnable             = 104
	UnlimitedJumpsEnable  = 105
	JetpackEnable         = 106
	NPHEnable             = 107
	TeleGrenadeEnable     = 112
	TeleGrenadeDisable    = 113
	TeleLaserEnable       = 128
	TeleLaserDisable      = 129
	LFreeze               = 144
	LUnfreeze             = 145
)

// EntityOffset: смещение индексов слоя сущностей относительно тайлов
const EntityOffset = 255 - 16*4

// Флаги тайла
const (
	FlagXFlip  = 1
	FlagYFlip  = 2
	FlagOpaque = 4
	FlagRotate = 8
)

// Повороты, закодированные комбинацией флагов
const (
	Rotation0   = 0
	Rotation90  = FlagRotate
	Rotation180 = FlagXFlip | FlagYFlip
	Rotation270 = FlagXFlip | FlagYFlip | FlagRotate
)

// RotationMask оставляет только биты, влияющие на ориентацию
const RotationMask = FlagXFlip | FlagYFlip | FlagRotate

// LayerID идентифицирует физический слой карты
type LayerID int

const (
	LayerGame LayerID = iota
	LayerFront
	LayerTele
	LayerSpeedup
	LayerSwitch
	LayerTune
)

// String возвращает имя слоя для логов
func (l LayerID) String() string {
	switch l {
	case LayerGame:
		return "Game"
	case LayerFront:
		return "Front"
	case LayerTele:
		return "Tele"
	case LayerSpeedup:
		return "Speedup"
	case LayerSwitch:
		return "Switch"
	case LayerTune:
		return "Tune"
	default:
		return "Unknown"
	}
}

// IsBlockingRange проверяет, что индекс попадает в диапазон SOLID..NOLASER
func IsBlockingRange(index int) bool {
	return index >= Solid && index <= NoLaser
}

// IsAllowedSwitchType проверяет тип тайла переключателя при загрузке карты.
// Типы выше NPHEnable не фильтруются.
func IsAllowedSwitchType(t int) bool {
	if t > NPHEnable {
		return true
	}
	return (t >= Jump && t <= SubtractTime) || t == AllowTeleGun || t == AllowBlueTeleGun
}

// IsExisting проверяет, что индекс относится к "активным" тайлам,
// которые игровая логика должна обработать при пересечении клетки.
func IsExisting(index int) bool {
	return (index >= Freeze && index <= TeleLaserDisable) || (index >= LFreeze && index <= LUnfreeze)
}

// IsTimeCheckpoint возвращает номер чекпоинта времени или -1
func IsTimeCheckpoint(index int) int {
	if index >= TimeCheckpointFirst && index <= TimeCheckpointLast {
		return index - TimeCheckpointFirst
	}
	return -1
}
