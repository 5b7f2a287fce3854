package settings

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dgraph-io/badger/v4"
	"github.com/wadjakorntonsri/dance-trainer/pkg/ports"
)

const keyPrefix = "pref:"

// BadgerStore keeps user preferences in an embedded badger database.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// NewInMemoryStore is used by tests and ephemeral deployments.
func NewInMemoryStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) GetFloat(key string, fallback float64) (float64, error) {
	value := fallback
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			if len(val) == 8 {
				value = math.Float64frombits(binary.BigEndian.Uint64(val))
			}
			return nil
		})
	})
	if err != nil {
		return fallback, fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

func (s *BadgerStore) SetFloat(key string, value float64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, math.Float64bits(value))
		return txn.Set([]byte(keyPrefix+key), buf)
	})
}

var _ ports.SettingsStore = (*BadgerStore)(nil)
