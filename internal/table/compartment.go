package table

import (
	"encoding/binary"
	"fmt"
	"sync"

	iradix "github.com/hashicorp/go-immutable-radix"
)

// Compartment is the id-indexed table map collaborator spec.md §6 requires
// ("a compartment object exposing an id-indexed map with add,
// insertOrFail, removeOrFail"). It mirrors WAVM's Compartment::tables
// IndexMap, backed here by github.com/hashicorp/go-immutable-radix behind
// a mutex (ground: moby/moby's builder/remotecontext/tarsum.go, which
// wraps the same immutable tree as a mutable id->value map the same way).
//
// A Compartment holds only this table map; module instances are not
// tracked here, and this repo does not model module lifecycle beyond what
// Table needs (spec.md §1 Non-goals).
type Compartment struct {
	mu     sync.Mutex
	tree   *iradix.Tree
	nextID uint64
}

// NewCompartment creates an empty compartment.
func NewCompartment() *Compartment {
	return &Compartment{tree: iradix.New()}
}

func idKey(id uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return b[:]
}

// add allocates a fresh id for t and inserts it, mirroring
// Compartment::tables.add(UINTPTR_MAX, table) in Table.cpp (UINTPTR_MAX
// there means "assign the next free slot").
func (c *Compartment) add(t *Instance) (id uint64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id = c.nextID
	c.nextID++
	txn := c.tree.Txn()
	txn.Insert(idKey(id), t)
	c.tree = txn.Commit()
	return id, true
}

// insertOrFail inserts t at an already-chosen id (used by clone_table to
// preserve the source table's id in the destination compartment), failing
// if the id is already occupied.
func (c *Compartment) insertOrFail(id uint64, t *Instance) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tree.Get(idKey(id)); ok {
		return fmt.Errorf("table: compartment already has a table at id %d", id)
	}
	txn := c.tree.Txn()
	txn.Insert(idKey(id), t)
	c.tree = txn.Commit()
	if id >= c.nextID {
		c.nextID = id + 1
	}
	return nil
}

// removeOrFail removes the table at id, failing if none is present.
func (c *Compartment) removeOrFail(id uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tree.Get(idKey(id)); !ok {
		return fmt.Errorf("table: compartment has no table at id %d", id)
	}
	txn := c.tree.Txn()
	txn.Delete(idKey(id))
	c.tree = txn.Commit()
	return nil
}

// Table looks up the table published at id within this compartment; used
// by guest intrinsics to resolve a numeric table id against the calling
// context's runtime data (spec.md §6).
func (c *Compartment) Table(id uint64) (*Instance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.tree.Get(idKey(id))
	if !ok {
		return nil, false
	}
	return v.(*Instance), true
}
