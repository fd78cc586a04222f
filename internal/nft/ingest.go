package nft

import (
	"errors"
	"fmt"

	"github.com/audiotarky/xrplpers/internal/log"
	"github.com/rs/zerolog"
)

// IngestResult describes what one transaction changed.
type IngestResult struct {
	TxType       string
	NewInTx      *DescriptorSet
	NewToTracked *DescriptorSet
	// Minted is set for successful single-token mints.
	Minted *MintedToken
	// MintedStored reports whether Minted was written by this call rather
	// than found already stored.
	MintedStored bool
}

// Ingester feeds transaction payloads through a Reconciler and persists the
// outcome. Payloads may be redelivered: a repeated payload changes nothing.
type Ingester struct {
	rec    *Reconciler
	store  *Store
	logger zerolog.Logger
}

// NewIngester creates an ingester. store may be nil for in-memory use.
func NewIngester(rec *Reconciler, store *Store) *Ingester {
	return &Ingester{rec: rec, store: store, logger: log.NFT}
}

// ResumeIngester rebuilds the tracked set from store and returns an
// ingester that continues from it.
func ResumeIngester(store *Store) (*Ingester, error) {
	tracked, err := store.LoadTracked()
	if err != nil {
		return nil, fmt.Errorf("resume: %w", err)
	}
	rec, err := NewReconciler(tracked.Items(), nil)
	if err != nil {
		return nil, err
	}
	in := NewIngester(rec, store)
	in.logger.Info().Int("tracked", rec.Len()).Msg("resumed tracked set")
	return in, nil
}

// Reconciler returns the underlying reconciler.
func (in *Ingester) Reconciler() *Reconciler { return in.rec }

// Ingest applies one transaction payload.
//
// Batch mints and other shapes with no single new token are still
// reconciled; they only lack a Minted result.
func (in *Ingester) Ingest(raw []byte) (*IngestResult, error) {
	tx, err := ParseTransaction(raw)
	if err != nil {
		return nil, err
	}
	d, err := in.rec.delta(tx)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}
	newInTx, newToTracked := d.newInTx, d.newToTracked
	res := &IngestResult{
		TxType:       tx.Type(),
		NewInTx:      newInTx,
		NewToTracked: newToTracked,
	}

	// Persist before tracking so a failed save is retried on redelivery.
	if in.store != nil && newToTracked.Len() > 0 {
		if err := in.store.SaveTracked(newToTracked); err != nil {
			return nil, err
		}
	}
	in.rec.apply(tx, d)

	if tx.Type() == TypeNFTokenMint && tx.Result() == ResultSuccess {
		minted, err := MintedTokenFromTransaction(tx)
		switch {
		case errors.Is(err, ErrExtraction):
			in.logger.Warn().Err(err).Msg("mint without a single new token")
		case err != nil:
			return nil, fmt.Errorf("minted token: %w", err)
		default:
			res.Minted = minted
			if res.MintedStored, err = in.recordMinted(minted); err != nil {
				return nil, err
			}
		}
	}

	logger := log.WithAccount(in.logger, tx.Account())
	logger.Debug().
		Str("tx_type", res.TxType).
		Int("new_in_tx", newInTx.Len()).
		Int("new_to_tracked", newToTracked.Len()).
		Bool("minted", res.Minted != nil).
		Msg("ingested transaction")
	return res, nil
}

func (in *Ingester) recordMinted(m *MintedToken) (bool, error) {
	if in.store == nil {
		return false, nil
	}
	has, err := in.store.HasMinted(m.ID)
	if err != nil {
		return false, fmt.Errorf("minted lookup: %w", err)
	}
	if has {
		return false, nil
	}
	if err := in.store.PutMinted(m); err != nil {
		return false, err
	}
	in.logger.Info().Str("token_id", m.ID.Encode()).Str("uri", m.URI).Msg("recorded minted token")
	return true, nil
}
