package nft

import (
	"encoding/json"

	"github.com/audiotarky/xrplpers/internal/log"
	"github.com/rs/zerolog"
)

// Reconciler tracks every descriptor it has observed. The tracked set only
// grows, and applying a transaction twice changes nothing the second time,
// so feeds that redeliver or overlap history converge on the same state.
//
// A Reconciler is owned by its caller and is not safe for concurrent use.
type Reconciler struct {
	tracked *DescriptorSet
	logger  zerolog.Logger
}

// NewReconciler creates a reconciler seeded from a holdings snapshot and
// then from a transaction. Both seeds are optional.
func NewReconciler(seed []Descriptor, tx *Transaction) (*Reconciler, error) {
	r := &Reconciler{
		tracked: NewDescriptorSet(),
		logger:  log.NFT,
	}
	r.AddFromList(seed...)
	if tx != nil {
		if _, _, err := r.AddFromTransaction(tx); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// AddFromTransaction merges the NFTokenPage snapshots of tx into the tracked
// set. It returns the descriptors that appeared within the transaction
// (after minus before) and the descriptors the reconciler had not seen
// before. On error the tracked set is unchanged.
func (r *Reconciler) AddFromTransaction(tx *Transaction) (newInTx, newToTracked *DescriptorSet, err error) {
	d, err := r.delta(tx)
	if err != nil {
		return nil, nil, err
	}
	r.apply(tx, d)
	return d.newInTx, d.newToTracked, nil
}

// txDelta is what a transaction would change, computed against the
// tracked set without touching it.
type txDelta struct {
	newInTx      *DescriptorSet
	observed     *DescriptorSet
	newToTracked *DescriptorSet
	pages        int
}

func (r *Reconciler) delta(tx *Transaction) (*txDelta, error) {
	diff, err := tx.pageSnapshots()
	if err != nil {
		return nil, err
	}
	observed := diff.observed()
	return &txDelta{
		newInTx:      diff.added(),
		observed:     observed,
		newToTracked: observed.Difference(r.tracked),
		pages:        diff.pages,
	}, nil
}

func (r *Reconciler) apply(tx *Transaction, d *txDelta) {
	r.tracked.Merge(d.observed)
	r.logger.Debug().
		Str("tx_type", tx.Type()).
		Int("pages", d.pages).
		Int("new_in_tx", d.newInTx.Len()).
		Int("new_to_tracked", d.newToTracked.Len()).
		Int("tracked", r.tracked.Len()).
		Msg("reconciled transaction")
}

// AddFromList merges descriptors from a known ownership snapshot.
func (r *Reconciler) AddFromList(ds ...Descriptor) {
	for _, d := range ds {
		r.tracked.Add(d)
	}
}

// Len returns the number of tracked descriptors.
func (r *Reconciler) Len() int { return r.tracked.Len() }

// Contains reports whether d is tracked.
func (r *Reconciler) Contains(d Descriptor) bool { return r.tracked.Contains(d) }

// Tracked returns a copy of the tracked set.
func (r *Reconciler) Tracked() *DescriptorSet { return r.tracked.Clone() }

// MarshalJSON renders the tracked set as an ordered list.
func (r *Reconciler) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.tracked)
}

func (r *Reconciler) String() string {
	return r.tracked.String()
}
