package collision

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/annel0/mmo-collision/internal/tile"
	"github.com/klauspost/compress/zstd"
)

// AntibotData: упрощенная сетка для внешнего античита.
// В Tiles остаются только индексы SOLID..NOLASER игрового слоя.
type AntibotData struct {
	Width  int
	Height int
	Tiles  []byte
}

// FillAntibot строит сетку для античита
func (c *Collision) FillAntibot() AntibotData {
	data := AntibotData{
		Width:  c.width,
		Height: c.height,
		Tiles:  make([]byte, len(c.tiles)),
	}
	for i, t := range c.tiles {
		if tile.IsBlockingRange(int(t.Index)) {
			data.Tiles[i] = t.Index
		}
	}
	return data
}

// ExportAntibot записывает сетку античита в w: ширина и высота (uint32 LE),
// затем тайлы построчно. Поток сжат zstd.
func (c *Collision) ExportAntibot(w io.Writer) error {
	data := c.FillAntibot()

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("ошибка создания zstd writer: %w", err)
	}

	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(data.Width))
	binary.LittleEndian.PutUint32(header[4:8], uint32(data.Height))
	if _, err := enc.Write(header[:]); err != nil {
		enc.Close()
		return fmt.Errorf("ошибка записи заголовка: %w", err)
	}
	if _, err := enc.Write(data.Tiles); err != nil {
		enc.Close()
		return fmt.Errorf("ошибка записи тайлов: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("ошибка завершения zstd потока: %w", err)
	}
	return nil
}

// ReadAntibot читает сетку, записанную ExportAntibot
func ReadAntibot(r io.Reader) (AntibotData, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return AntibotData{}, fmt.Errorf("ошибка создания zstd reader: %w", err)
	}
	defer dec.Close()

	var header [8]byte
	if _, err := io.ReadFull(dec, header[:]); err != nil {
		return AntibotData{}, fmt.Errorf("ошибка чтения заголовка: %w", err)
	}
	data := AntibotData{
		Width:  int(binary.LittleEndian.Uint32(header[0:4])),
		Height: int(binary.LittleEndian.Uint32(header[4:8])),
	}
	data.Tiles = make([]byte, data.Width*data.Height)
	if _, err := io.ReadFull(dec, data.Tiles); err != nil {
		return AntibotData{}, fmt.Errorf("ошибка чтения тайлов: %w", err)
	}
	return data, nil
}
