// Package storage хранит разобранные карты в BadgerDB, чтобы отладочный
// сервер и генератор карт не разбирали файлы карт повторно.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/annel0/mmo-collision/internal/mapdata"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
)

// ErrMapNotFound возвращается, если карты с таким именем нет в хранилище
var ErrMapNotFound = errors.New("карта не найдена")

const (
	mapPrefix  = "map:"
	metaPrefix = "meta:"
)

// MapRecord: сведения о сохраненной карте
type MapRecord struct {
	Name       string    `json:"name"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Generation string    `json:"generation"` // Меняется при каждой перезаписи карты
	Size       int       `json:"size"`       // Размер сжатых данных в байтах
	SavedAt    time.Time `json:"saved_at"`
}

// MapStore представляет собой хранилище карт
type MapStore struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// NewMapStore открывает хранилище в каталоге dataPath/maps.
// Пустой dataPath открывает хранилище в памяти.
func NewMapStore(dataPath string) (*MapStore, error) {
	var opts badger.Options
	dbPath := ""
	if dataPath == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		dbPath = filepath.Join(dataPath, "maps")
		opts = badger.DefaultOptions(dbPath)
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &MapStore{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
	}, nil
}

// Close закрывает хранилище
func (s *MapStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isReady {
		return nil
	}

	s.isReady = false
	return s.db.Close()
}

// Save сохраняет карту под ее именем, заменяя прежнюю версию
func (s *MapStore) Save(m *mapdata.Map) (*MapRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}
	if m.Name == "" {
		return nil, fmt.Errorf("у карты нет имени")
	}

	data, err := mapdata.Encode(m)
	if err != nil {
		return nil, err
	}

	record := &MapRecord{
		Name:       m.Name,
		Width:      m.Width,
		Height:     m.Height,
		Generation: uuid.New().String(),
		Size:       len(data),
		SavedAt:    time.Now().UTC(),
	}
	meta, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации записи: %w", err)
	}

	// Данные и запись пишутся в одной транзакции
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(mapPrefix+m.Name), data); err != nil {
			return err
		}
		return txn.Set([]byte(metaPrefix+m.Name), meta)
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	return record, nil
}

// Load загружает карту по имени
func (s *MapStore) Load(name string) (*mapdata.Map, error) {
	data, err := s.get(mapPrefix + name)
	if err != nil {
		return nil, err
	}

	m, err := mapdata.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("карта %q повреждена: %w", name, err)
	}
	return m, nil
}

// Record возвращает сведения о сохраненной карте
func (s *MapStore) Record(name string) (*MapRecord, error) {
	data, err := s.get(metaPrefix + name)
	if err != nil {
		return nil, err
	}

	var record MapRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("ошибка десериализации записи: %w", err)
	}
	return &record, nil
}

func (s *MapStore) get(key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrMapNotFound, strings.SplitN(key, ":", 2)[1])
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return data, nil
}

// List возвращает записи всех карт, отсортированные по имени
func (s *MapStore) List() ([]MapRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var records []MapRecord
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(metaPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var record MapRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("ошибка десериализации записи %s: %w", it.Item().Key(), err)
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records, nil
}

// Delete удаляет карту. Удаление отсутствующей карты не является ошибкой.
func (s *MapStore) Delete(name string) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(mapPrefix + name)); err != nil {
			return err
		}
		return txn.Delete([]byte(metaPrefix + name))
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления из BadgerDB: %w", err)
	}
	return nil
}
