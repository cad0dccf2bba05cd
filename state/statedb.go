// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state provides the journaled slot store the pool manager and its
// hooks run against. Writes are buffered and journaled so a failed unlock can
// be rolled back; Commit flushes them to a database backend.
package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/types"
	"github.com/luxfi/log"
)

// slot addresses one storage word of one account
type slot struct {
	addr common.Address
	key  common.Hash
}

func (s slot) dbKey() []byte {
	k := make([]byte, 0, common.AddressLength+common.HashLength)
	k = append(k, s.addr.Bytes()...)
	return append(k, s.key.Bytes()...)
}

type revision struct {
	id           int
	journalIndex int
}

// StateDB buffers persistent and transient slot writes on top of a
// database.Database. It is not safe for concurrent use.
type StateDB struct {
	db  database.Database
	log log.Logger

	dirty     map[slot]common.Hash
	transient map[slot]common.Hash
	logs      []*types.Log

	journal        journal
	validRevisions []revision
	nextRevisionID int

	// dbErr is the first backend read failure; reads after it return zero
	dbErr error
}

// New creates a StateDB over db
func New(db database.Database, logger log.Logger) *StateDB {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &StateDB{
		db:        db,
		log:       logger,
		dirty:     make(map[slot]common.Hash),
		transient: make(map[slot]common.Hash),
	}
}

// Error returns the first backend failure seen by a read
func (s *StateDB) Error() error {
	return s.dbErr
}

// GetState returns the current value of a persistent slot
func (s *StateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	sl := slot{addr, key}
	if v, ok := s.dirty[sl]; ok {
		return v
	}
	return s.committed(sl)
}

func (s *StateDB) committed(sl slot) common.Hash {
	raw, err := s.db.Get(sl.dbKey())
	if errors.Is(err, database.ErrNotFound) {
		return common.Hash{}
	}
	if err != nil {
		if s.dbErr == nil {
			s.dbErr = err
		}
		s.log.Error("state read failed", "addr", sl.addr, "err", err)
		return common.Hash{}
	}
	return common.BytesToHash(raw)
}

// SetState writes a persistent slot
func (s *StateDB) SetState(addr common.Address, key common.Hash, value common.Hash) {
	sl := slot{addr, key}
	prev, dirty := s.dirty[sl]
	s.journal.append(storageChange{slot: sl, prev: prev, wasDirty: dirty})
	s.dirty[sl] = value
}

// GetTransientState returns the value of a transient slot
func (s *StateDB) GetTransientState(addr common.Address, key common.Hash) common.Hash {
	return s.transient[slot{addr, key}]
}

// SetTransientState writes a transient slot
func (s *StateDB) SetTransientState(addr common.Address, key common.Hash, value common.Hash) {
	sl := slot{addr, key}
	s.journal.append(transientChange{slot: sl, prev: s.transient[sl]})
	if value == (common.Hash{}) {
		delete(s.transient, sl)
		return
	}
	s.transient[sl] = value
}

// ClearTransient drops every transient slot. The manager calls it when a
// top-level unlock ends.
func (s *StateDB) ClearTransient() {
	s.transient = make(map[slot]common.Hash)
}

// AddLog records an event
func (s *StateDB) AddLog(entry *types.Log) {
	s.journal.append(addLogChange{})
	entry.Index = uint(len(s.logs))
	s.logs = append(s.logs, entry)
}

// Logs returns every event recorded and not reverted
func (s *StateDB) Logs() []*types.Log {
	return s.logs
}

// Snapshot returns an identifier for the current revision
func (s *StateDB) Snapshot() int {
	id := s.nextRevisionID
	s.nextRevisionID++
	s.validRevisions = append(s.validRevisions, revision{id, s.journal.length()})
	return id
}

// RevertToSnapshot undoes every change made since the snapshot was taken
func (s *StateDB) RevertToSnapshot(revid int) {
	idx := s.revisionIndex(revid)
	if idx < 0 {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := s.validRevisions[idx].journalIndex

	s.journal.revert(s, snapshot)
	s.validRevisions = s.validRevisions[:idx]
}

// DiscardSnapshot keeps every change made since the snapshot was taken and
// forgets the snapshot along with any taken after it. Once no snapshot is
// left the journal is dropped.
func (s *StateDB) DiscardSnapshot(revid int) {
	idx := s.revisionIndex(revid)
	if idx < 0 {
		panic(fmt.Errorf("revision id %v cannot be discarded", revid))
	}
	s.validRevisions = s.validRevisions[:idx]
	if len(s.validRevisions) == 0 {
		s.journal = journal{}
	}
}

func (s *StateDB) revisionIndex(revid int) int {
	idx := sort.Search(len(s.validRevisions), func(i int) bool {
		return s.validRevisions[i].id >= revid
	})
	if idx == len(s.validRevisions) || s.validRevisions[idx].id != revid {
		return -1
	}
	return idx
}

// Commit writes every dirty slot to the backend in one batch and resets the
// journal. Zero values delete their slot.
func (s *StateDB) Commit() error {
	if s.dbErr != nil {
		return fmt.Errorf("state: cannot commit after read failure: %w", s.dbErr)
	}

	batch := s.db.NewBatch()
	for sl, v := range s.dirty {
		var err error
		if v == (common.Hash{}) {
			err = batch.Delete(sl.dbKey())
		} else {
			err = batch.Put(sl.dbKey(), v.Bytes())
		}
		if err != nil {
			return fmt.Errorf("state: batch write: %w", err)
		}
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("state: commit: %w", err)
	}

	s.log.Debug("state committed", "slots", len(s.dirty))
	s.dirty = make(map[slot]common.Hash)
	s.journal = journal{}
	s.validRevisions = s.validRevisions[:0]
	return nil
}
