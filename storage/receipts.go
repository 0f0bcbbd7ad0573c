package storage

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"voting-settlement/models"
)

// ReceiptStore keeps the settlements the service has made.
type ReceiptStore interface {
	Put(settlement *models.Settlement) error
	ForProposal(proposalID uint64) ([]*models.Settlement, error)
	List() ([]*models.Settlement, error)
	Close() error
}

// Open returns the ReceiptStore of the given kind: memory, json or badger.
func Open(kind, path string, log zerolog.Logger) (ReceiptStore, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "json":
		return NewJSONStore(path)
	case "badger":
		return NewBadgerStore(path, log)
	default:
		return nil, fmt.Errorf("unknown receipt store %q", kind)
	}
}

func sortBySettledAt(settlements []*models.Settlement) {
	sort.SliceStable(settlements, func(i, j int) bool {
		return settlements[i].SettledAt.Before(settlements[j].SettledAt)
	})
}

func filterProposal(all []*models.Settlement, proposalID uint64) []*models.Settlement {
	out := make([]*models.Settlement, 0)
	for _, s := range all {
		if s.ProposalID == proposalID {
			out = append(out, s)
		}
	}
	return out
}
