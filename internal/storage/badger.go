package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BadgerStore implements Store on an embedded BadgerDB.
type BadgerStore struct {
	db  *badger.DB
	log logrus.FieldLogger
}

// NewBadgerStore opens (or creates) a BadgerDB at dbPath. An empty path opens
// an in-memory database.
func NewBadgerStore(dbPath string, logger logrus.FieldLogger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dbPath)
	if dbPath == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		logger.WithError(err).Error("Failed to open BadgerDB")
		return nil, fmt.Errorf("failed to open badger db at %q: %w", dbPath, err)
	}
	logger.WithField("path", dbPath).Info("BadgerDB opened")

	return &BadgerStore{
		db:  db,
		log: logger.WithField("component", "store"),
	}, nil
}

// Close closes the BadgerDB database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.log.WithError(err).Error("Error closing BadgerDB")
		return err
	}
	s.log.Info("BadgerDB closed")
	return nil
}

// rowKey format: table:{table}:row:{id}
func rowKey(table, id string) []byte {
	return []byte(fmt.Sprintf("table:%s:row:%s", table, id))
}

func tablePrefix(table string) []byte {
	return []byte(fmt.Sprintf("table:%s:row:", table))
}

// Select returns all rows of table ordered by orderBy.
func (s *BadgerStore) Select(ctx context.Context, table, orderBy string) ([]Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	rows := make([]Row, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := tablePrefix(table)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var row Row
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &row)
			}); err != nil {
				return fmt.Errorf("decode row %s: %w", item.Key(), err)
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithField("table", table).Error("Failed to select rows")
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	sortRows(rows, orderBy)
	return rows, nil
}

// Insert stores row under a new UUID.
func (s *BadgerStore) Insert(ctx context.Context, table string, row Row) (Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	stored := withoutID(row)
	stored["id"] = uuid.NewString()

	if err := s.put(table, stored, false); err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	return stored, nil
}

// Update replaces the row keyed by id.
func (s *BadgerStore) Update(ctx context.Context, table, id string, row Row) (Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	stored := withoutID(row)
	stored["id"] = id

	if err := s.put(table, stored, true); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", table, id, err)
	}
	return stored, nil
}

func (s *BadgerStore) put(table string, row Row, mustExist bool) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	key := rowKey(table, row.ID())
	return s.db.Update(func(txn *badger.Txn) error {
		if mustExist {
			if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			} else if err != nil {
				return err
			}
		}
		return txn.SetEntry(badger.NewEntry(key, data))
	})
}

// Delete removes the row keyed by id; missing ids are ignored.
func (s *BadgerStore) Delete(ctx context.Context, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(rowKey(table, id))
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"table": table, "id": id}).Error("Failed to delete row")
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	return nil
}

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}
func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warningf(f, v...)
}
func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
