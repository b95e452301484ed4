package mapdata

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

func initCodec() {
	encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if codecErr != nil {
		return
	}
	decoder, codecErr = zstd.NewReader(nil)
}

// Encode сериализует карту в JSON и сжимает zstd
func Encode(m *Map) ([]byte, error) {
	codecOnce.Do(initCodec)
	if codecErr != nil {
		return nil, fmt.Errorf("ошибка инициализации zstd: %w", codecErr)
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации карты %s: %w", m.Name, err)
	}
	return encoder.EncodeAll(raw, nil), nil
}

// Decode распаковывает и десериализует карту, затем проверяет ее
func Decode(data []byte) (*Map, error) {
	codecOnce.Do(initCodec)
	if codecErr != nil {
		return nil, fmt.Errorf("ошибка инициализации zstd: %w", codecErr)
	}

	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки карты: %w", err)
	}

	var m Map
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("ошибка десериализации карты: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}
