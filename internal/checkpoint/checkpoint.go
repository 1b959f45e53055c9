// Package checkpoint persists a stream's resumable state across process
// restarts, not just within a single run's in-memory round trip.
package checkpoint

import (
	"bytes"
	"encoding/gob"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"chainwalk/internal/logging"
)

var log = logging.For("checkpoint")

const keyPrefix = "chainwalk/checkpoint/"

// Store is a named-checkpoint backing store. Each checkpoint is a single
// gob-encoded blob, keyed by its name.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) a badger database at dir to hold
// checkpoints.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Save gob-encodes state and stores it under name, overwriting any
// previous checkpoint with that name.
func (s *Store) Save(name string, state any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return fmt.Errorf("checkpoint: encode %s: %w", name, err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+name), buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("checkpoint: save %s: %w", name, err)
	}
	log.Info().Str("checkpoint", name).Int("bytes", buf.Len()).Msg("saved checkpoint")
	return nil
}

// Load decodes the checkpoint stored under name into out, which must be a
// pointer to the same type passed to Save.
func (s *Store) Load(name string, out any) error {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("checkpoint: load %s: %w", name, err)
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(out); err != nil {
		return fmt.Errorf("checkpoint: decode %s: %w", name, err)
	}
	return nil
}

// Delete removes a named checkpoint, if present.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + name))
	})
}
