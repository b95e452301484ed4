package tile

// Tile: запись игрового или фронтального слоя
type Tile struct {
	Index    uint8 `json:"i"`
	Flags    uint8 `json:"f,omitempty"`
	Skip     uint8 `json:"s,omitempty"`
	Reserved uint8 `json:"r,omitempty"`
}

// TeleTile: запись слоя телепортов
type TeleTile struct {
	Number uint8 `json:"n"`
	Type   uint8 `json:"t"`
}

// SpeedupTile: запись слоя ускорителей
type SpeedupTile struct {
	Force    uint8 `json:"f"`
	MaxSpeed uint8 `json:"m,omitempty"`
	Type     uint8 `json:"t"`
	Angle    int16 `json:"a"`
}

// SwitchTile: запись слоя переключателей
type SwitchTile struct {
	Number uint8 `json:"n"`
	Type   uint8 `json:"t"`
	Flags  uint8 `json:"f,omitempty"`
	Delay  uint8 `json:"d,omitempty"`
}

// TuneTile: запись слоя зон настроек
type TuneTile struct {
	Number uint8 `json:"n"`
	Type   uint8 `json:"t"`
}

// DoorTile: производная запись двери. Создается движком из слоя переключателей
// и меняется во время игры через SetDCollisionAt.
type DoorTile struct {
	Index  uint8
	Flags  uint8
	Number int32
}
