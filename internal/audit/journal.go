// Package audit keeps an append-only journal of vault mutations in a bbolt
// file. Each record carries a SHA-256 hash chained to the previous record so
// removed or edited records can be detected. Field values never reach the
// journal; only the operation kind and the entry name do.
package audit

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"go.etcd.io/bbolt"

	"github.com/vault-cli/passvault/internal/domain"
)

// OperationsBucket holds the journal records keyed by sequence number
var OperationsBucket = []byte("operations")

var (
	// ErrClosed is returned when the journal has been closed
	ErrClosed = errors.New("audit journal is closed")
	// ErrChainBroken is returned by Verify when a record does not hash to its
	// stored value
	ErrChainBroken = errors.New("audit chain broken")
)

// Journal is an open audit journal
type Journal struct {
	db  *bbolt.DB
	log zerolog.Logger
}

// Open opens or creates the journal at path
func Open(path string, log zerolog.Logger) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open audit journal: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(OperationsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize audit journal: %w", err)
	}

	return &Journal{db: db, log: log}, nil
}

// Close releases the journal file
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

// Record appends op and fills in its Timestamp (when zero) and Hash
func (j *Journal) Record(op *domain.Operation) error {
	if j.db == nil {
		return ErrClosed
	}
	if op == nil {
		return fmt.Errorf("operation cannot be nil")
	}
	if op.Timestamp.IsZero() {
		op.Timestamp = time.Now().UTC()
	}

	err := j.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(OperationsBucket)
		if bucket == nil {
			return fmt.Errorf("operations bucket not found")
		}

		var prev []byte
		if _, last := bucket.Cursor().Last(); last != nil {
			var tail domain.Operation
			if err := json.Unmarshal(last, &tail); err != nil {
				return fmt.Errorf("failed to decode last audit record: %w", err)
			}
			h, err := hex.DecodeString(tail.Hash)
			if err != nil {
				return fmt.Errorf("failed to decode last audit hash: %w", err)
			}
			prev = h
		}

		op.Hash = hex.EncodeToString(chainHash(prev, op))

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate audit sequence: %w", err)
		}

		payload, err := json.Marshal(op)
		if err != nil {
			return fmt.Errorf("failed to encode audit record: %w", err)
		}

		return bucket.Put(sequenceKey(seq), payload)
	})
	if err != nil {
		return err
	}

	j.log.Debug().Str("op", op.Type).Msg("audit record appended")
	return nil
}

// Entries returns every record in the order it was written
func (j *Journal) Entries() ([]*domain.Operation, error) {
	if j.db == nil {
		return nil, ErrClosed
	}

	var ops []*domain.Operation
	err := j.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(OperationsBucket)
		if bucket == nil {
			return fmt.Errorf("operations bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			var op domain.Operation
			if err := json.Unmarshal(v, &op); err != nil {
				return fmt.Errorf("failed to decode audit record %d: %w", binary.BigEndian.Uint64(k), err)
			}
			op.Timestamp = op.Timestamp.UTC()
			ops = append(ops, &op)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return ops, nil
}

// Verify recomputes the hash chain and returns ErrChainBroken at the first
// record that does not match. It returns the number of records checked.
func (j *Journal) Verify() (int, error) {
	ops, err := j.Entries()
	if err != nil {
		return 0, err
	}

	var prev []byte
	for i, op := range ops {
		want := chainHash(prev, op)
		if hex.EncodeToString(want) != op.Hash {
			return i, fmt.Errorf("%w at record %d", ErrChainBroken, i+1)
		}
		prev = want
	}

	return len(ops), nil
}

func chainHash(prev []byte, op *domain.Operation) []byte {
	h := sha256.New()
	h.Write(prev)
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%t", op.Type, op.Entry, op.Timestamp.UTC().Format(time.RFC3339Nano), op.Success)
	return h.Sum(nil)
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
