package storage

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"voting-settlement/models"
)

const settlementPrefix = "settlement/"

// BadgerStore keeps receipts in a badger database, keyed by proposal so a
// single proposal is a prefix scan.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(path string, log zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{log: log.With().Str("component", "badger").Logger()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger")
	}
	return &BadgerStore{db: db}, nil
}

func proposalPrefix(proposalID uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d/", settlementPrefix, proposalID))
}

func settlementKey(s *models.Settlement) []byte {
	return append(proposalPrefix(s.ProposalID), []byte(fmt.Sprintf("%020d/%s", s.SettledAt.UnixNano(), s.ID))...)
}

func (b *BadgerStore) Put(settlement *models.Settlement) error {
	data, err := json.Marshal(settlement)
	if err != nil {
		return errors.Wrap(err, "marshal settlement")
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(settlementKey(settlement), data)
	})
	return errors.Wrap(err, "store settlement")
}

func (b *BadgerStore) ForProposal(proposalID uint64) ([]*models.Settlement, error) {
	out, err := b.scan(proposalPrefix(proposalID))
	if err != nil {
		return nil, err
	}
	sortBySettledAt(out)
	return out, nil
}

func (b *BadgerStore) List() ([]*models.Settlement, error) {
	out, err := b.scan([]byte(settlementPrefix))
	if err != nil {
		return nil, err
	}
	sortBySettledAt(out)
	return out, nil
}

func (b *BadgerStore) scan(prefix []byte) ([]*models.Settlement, error) {
	out := make([]*models.Settlement, 0)

	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var s models.Settlement
				if err := json.Unmarshal(val, &s); err != nil {
					return err
				}
				out = append(out, &s)
				return nil
			})
			if err != nil {
				return errors.Wrapf(err, "decode %s", it.Item().Key())
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan settlements")
	}
	return out, nil
}

func (b *BadgerStore) Close() error {
	return b.db.Close()
}

// badgerLogger routes badger's internal logging through zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Msgf(format, args...)
}
