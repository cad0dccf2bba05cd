// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import "github.com/luxfi/geth/common"

// journalEntry is a modification that can be undone
type journalEntry interface {
	revert(*StateDB)
}

type journal struct {
	entries []journalEntry
}

func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
}

func (j *journal) length() int {
	return len(j.entries)
}

// revert undoes entries down to snapshot, newest first
func (j *journal) revert(s *StateDB, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		j.entries[i].revert(s)
	}
	j.entries = j.entries[:snapshot]
}

type (
	storageChange struct {
		slot     slot
		prev     common.Hash
		wasDirty bool
	}
	transientChange struct {
		slot slot
		prev common.Hash
	}
	addLogChange struct{}
)

func (ch storageChange) revert(s *StateDB) {
	if !ch.wasDirty {
		delete(s.dirty, ch.slot)
		return
	}
	s.dirty[ch.slot] = ch.prev
}

func (ch transientChange) revert(s *StateDB) {
	if ch.prev == (common.Hash{}) {
		delete(s.transient, ch.slot)
		return
	}
	s.transient[ch.slot] = ch.prev
}

func (addLogChange) revert(s *StateDB) {
	s.logs = s.logs[:len(s.logs)-1]
}
