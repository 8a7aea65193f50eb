// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/poiesic/medgate/audit"
	"github.com/poiesic/medgate/core"
)

// Sink persists audit records in a BadgerDB database, keyed by timestamp so
// range scans map directly to time windows.
type Sink struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ audit.Sink = (*Sink)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens an audit sink at the specified path.
// Creates the directory if it doesn't exist. Pass inMemory=true for an
// ephemeral database (tests, dry runs).
func Open(filePath string, inMemory bool) (*Sink, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	logger := slog.Default().With("component", "audit-badger")
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Sink{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Sink) Close() error {
	return s.db.Close()
}

// Write persists one audit record.
func (s *Sink) Write(ctx context.Context, record audit.Record) error {
	if record.RunID == "" {
		return ErrMissingRunID
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(&record)
	if err != nil {
		return fmt.Errorf("marshaling audit record: %w", err)
	}

	key := makeRecordKey(record.Timestamp, core.IDFromContent(record.RunID))
	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Set(key, value)
	})
}

// Recent returns up to limit records, newest first.
func (s *Sink) Recent(ctx context.Context, limit int) ([]audit.Record, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}

	var records []audit.Record
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordKeyPrefix)
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// In reverse mode iteration starts from the largest key under the
		// prefix, which is the newest record.
		for iter.Seek(recordSeekEnd()); iter.Valid() && len(records) < limit; iter.Next() {
			record, err := readRecord(iter.Item())
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Between returns all records with from <= Timestamp < to, oldest first.
func (s *Sink) Between(ctx context.Context, from, to time.Time) ([]audit.Record, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: from %s, to %s", ErrInvalidRange, from, to)
	}

	start := makePartialRecordKey(from)
	end := makePartialRecordKey(to)

	var records []audit.Record
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordKeyPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(start); iter.Valid(); iter.Next() {
			if keyAtOrAfter(iter.Item().Key(), end) {
				break
			}
			record, err := readRecord(iter.Item())
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Summary aggregates the records in the given time window.
func (s *Sink) Summary(ctx context.Context, from, to time.Time) (audit.Summary, error) {
	records, err := s.Between(ctx, from, to)
	if err != nil {
		return audit.Summary{}, err
	}
	return audit.Summarize(records), nil
}

func readRecord(item *badger.Item) (audit.Record, error) {
	var record audit.Record
	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &record)
	})
	return record, err
}
