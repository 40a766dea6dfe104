package referral

import (
	"context"

	"github.com/vpnflow/referral_engine/internal/store"
)

// TreeLevel aggregates one generation of a user's downline.
type TreeLevel struct {
	Count    int                `json:"count"`
	Earnings float64            `json:"earnings"`
	Users    []store.UserRecord `json:"users"`
}

// Tree is the per-level breakdown of a user's downline up to MaxDepth
// generations. Earnings figures are each member's own cumulative earnings,
// not commission attributable to the root specifically.
type Tree struct {
	Levels         map[int]TreeLevel `json:"levels"`
	TotalReferrals int               `json:"total_referrals"`
	TotalEarnings  float64           `json:"total_earnings"`
}

// GraphReader walks the referral tree for reporting. Read-only.
type GraphReader struct {
	store store.Store
}

// NewGraphReader builds a graph reader over the user store.
func NewGraphReader(st store.Store) *GraphReader {
	return &GraphReader{store: st}
}

// Tree traverses rootID's downline breadth-first, one batched read per
// generation, stopping early at the first empty level. maxLevel values
// outside 1..MaxDepth are clamped to MaxDepth.
func (g *GraphReader) Tree(ctx context.Context, rootID int64, maxLevel int) (Tree, error) {
	if maxLevel < 1 || maxLevel > MaxDepth {
		maxLevel = MaxDepth
	}

	tree := Tree{Levels: make(map[int]TreeLevel)}
	frontier := []int64{rootID}

	for level := 1; level <= maxLevel; level++ {
		children, err := g.store.GetReferralsByUsers(ctx, frontier)
		if err != nil {
			return Tree{}, err
		}
		if len(children) == 0 {
			break
		}

		var earnings float64
		frontier = frontier[:0]
		for _, child := range children {
			earnings += child.ReferralEarnings
			frontier = append(frontier, child.ID)
		}

		tree.Levels[level] = TreeLevel{Count: len(children), Earnings: earnings, Users: children}
		tree.TotalReferrals += len(children)
		tree.TotalEarnings += earnings
	}

	return tree, nil
}
