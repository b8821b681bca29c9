package store

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/AlejandraOrtegaJ/AlarMedik-Project/internal/errors"
	"github.com/dgraph-io/badger/v4"
)

// The registration ledger records what the dispatcher last registered
// with the trigger service, keyed by the stable registration key. It
// survives restarts so rescheduling can correct stale fire times
// instead of blindly re-registering.

func regKey(key int64) []byte {
	return []byte(fmt.Sprintf("reg:%d", key))
}

// PutRegistration upserts a ledger entry
func (s *Store) PutRegistration(reg *Registration) error {
	data, err := json.Marshal(reg)
	if err != nil {
		return apperrors.Wrap(err, "STORE_001", "failed to encode registration")
	}
	err = s.badger.Update(func(txn *badger.Txn) error {
		return txn.Set(regKey(reg.Key), data)
	})
	if err != nil {
		return apperrors.Wrap(err, "STORE_001", "failed to store registration")
	}
	return nil
}

// GetRegistration returns nil when the key has no ledger entry
func (s *Store) GetRegistration(key int64) (*Registration, error) {
	var reg *Registration
	err := s.badger.View(func(txn *badger.Txn) error {
		item, err := txn.Get(regKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			var r Registration
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			reg = &r
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "STORE_001", "failed to load registration")
	}
	return reg, nil
}

// DeleteRegistration removes a ledger entry; absent keys are a no-op
func (s *Store) DeleteRegistration(key int64) error {
	err := s.badger.Update(func(txn *badger.Txn) error {
		return txn.Delete(regKey(key))
	})
	if err != nil {
		return apperrors.Wrap(err, "STORE_001", "failed to delete registration")
	}
	return nil
}

// ListRegistrations returns every ledger entry
func (s *Store) ListRegistrations() ([]Registration, error) {
	var regs []Registration
	prefix := []byte("reg:")

	err := s.badger.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				var r Registration
				if err := json.Unmarshal(v, &r); err != nil {
					return err
				}
				regs = append(regs, r)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "STORE_001", "failed to list registrations")
	}
	return regs, nil
}
