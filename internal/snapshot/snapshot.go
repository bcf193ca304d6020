// Package snapshot implements a best-effort, non-authoritative dump of a
// hierarchy's current best set to a BadgerDB store, for post-mortem
// inspection of a long-running engine without replaying the whole stream.
// Per spec.md §5's Non-goals ("no durable storage"), a fresh engine never
// reads this store back to recover state — Open/Put exist purely as an
// inspection sink. Grounded on janus-datalog's BadgerStore
// (datalog/storage/badger_store.go): badger.DefaultOptions, one
// db.Update(txn) per write, keys built by simple byte concatenation rather
// than a generic encoding scheme.
package snapshot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/cockroachdb/errors"

	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/value"
)

// Sink periodically persists a query's best-set snapshot to Badger.
type Sink struct {
	db *badger.DB
}

// Open opens (or creates) a Badger store at path, with logging disabled the
// way janus-datalog's NewBadgerStore does.
func Open(path string) (*Sink, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot: opening badger store at %q", path)
	}
	return &Sink{db: db}, nil
}

// Close releases the underlying Badger store.
func (s *Sink) Close() error {
	return s.db.Close()
}

// Put writes one snapshot row per record in best, under the key
// "<query>|<tick>|<index>" with the index zero-padded to ten digits. All
// rows of one call are written in a single Badger transaction, so either
// every row is stored or none is. Put never reads prior snapshots.
func (s *Sink) Put(query string, tick int64, best []record.Record) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for i, rec := range best {
			key := []byte(fmt.Sprintf("%s|%d|%010d", query, tick, i))
			row, err := renderRow(rec)
			if err != nil {
				return err
			}
			if err := txn.Set(key, []byte(row)); err != nil {
				return errors.Wrapf(err, "snapshot: writing %s", key)
			}
		}
		return nil
	})
}

// Get returns the rendered rows stored for (query, tick), in index order,
// for tests and offline inspection tools.
func (s *Sink) Get(query string, tick int64) ([]string, error) {
	prefix := []byte(fmt.Sprintf("%s|%d|", query, tick))
	var rows []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				rows = append(rows, string(v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

// renderRow renders rec as a stable, sorted "attr=value" line, independent
// of the record's internal column order.
func renderRow(rec record.Record) (string, error) {
	attrs := rec.Attributes()
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key() < attrs[j].Key() })

	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		v, err := rec.Get(a)
		if err != nil {
			return "", err
		}
		parts = append(parts, a.Key()+"="+renderValue(v))
	}
	return strings.Join(parts, ","), nil
}

func renderValue(v value.Value) string {
	s := v.String()
	return strconv.Quote(s)
}
