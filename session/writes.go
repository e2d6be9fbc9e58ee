package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kbukum/chaincounter/contract"
	"github.com/kbukum/chaincounter/errors"
	"github.com/kbukum/chaincounter/logger"
	"github.com/kbukum/chaincounter/provider"
)

const receiptStatusFailed = "0x0"

type receipt struct {
	TransactionHash string `json:"transactionHash"`
	Status          string `json:"status"`
	BlockNumber     string `json:"blockNumber"`
}

// Increment submits increment() and waits for it to be mined.
func (m *Manager) Increment(ctx context.Context) (string, error) {
	s, err := m.live()
	if err != nil {
		return "", err
	}
	return m.transact(ctx, s, contract.OpIncrement)
}

// Decrement submits decrement() and waits for it to be mined.
func (m *Manager) Decrement(ctx context.Context) (string, error) {
	s, err := m.live()
	if err != nil {
		return "", err
	}
	return m.transact(ctx, s, contract.OpDecrement)
}

// Reset submits reset() if the signer is the contract owner. The owner
// comparison ignores case. A mismatch fails with Unauthorized before any
// transaction is sent. The check only spares the user a doomed prompt; the
// contract's own owner check is what protects reset.
func (m *Manager) Reset(ctx context.Context) (string, error) {
	s, err := m.live()
	if err != nil {
		return "", err
	}
	owner, err := m.ReadOwner(ctx)
	if err != nil {
		return "", err
	}
	signer, err := m.ReadSignerAddress(ctx)
	if err != nil {
		return "", err
	}
	if !owner.Equal(signer) {
		return "", errors.Unauthorized("Only the contract owner can reset the counter.").
			WithDetail("owner", owner.String()).
			WithDetail("signer", signer.String())
	}
	return m.transact(ctx, s, contract.OpReset)
}

// transact sends op from the session account and polls for its receipt
// until one appears or ctx is done.
func (m *Manager) transact(ctx context.Context, s *Session, op contract.Operation) (string, error) {
	h := s.Contract()
	tx := callObject{From: s.Account.String(), To: h.Address().String(), Data: h.CallData(op)}
	log := m.log.WithContext(ctx).WithFields(logger.Fields(
		logger.FieldSessionID, s.ID,
		logger.FieldAction, string(op),
	))

	raw, err := s.provider.Request(ctx, provider.MethodSendTransaction, []any{tx})
	if err != nil {
		e := errors.TransactionFailed("", err)
		if provider.IsUserRejected(err) {
			e.Message = "The transaction was rejected in the wallet."
		}
		return "", e
	}
	var hash string
	if err := json.Unmarshal(raw, &hash); err != nil || hash == "" {
		return "", errors.TransactionFailed("", fmt.Errorf("unexpected transaction hash %s", raw))
	}

	log.Info("transaction submitted", logger.Fields(logger.FieldTxHash, hash))
	start := time.Now()
	if err := m.waitMined(ctx, s, hash); err != nil {
		return hash, err
	}
	log.Info("transaction confirmed", logger.Fields(
		logger.FieldTxHash, hash,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return hash, nil
}

func (m *Manager) waitMined(ctx context.Context, s *Session, hash string) error {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		raw, err := s.provider.Request(ctx, provider.MethodTransactionReceipt, []any{hash})
		switch {
		case err != nil && ctx.Err() != nil:
			return errors.Timeout("confirm-transaction").WithDetail(logger.FieldTxHash, hash).WithCause(ctx.Err())
		case err != nil && provider.IsRPCError(err):
			return errors.ProviderError(provider.MethodTransactionReceipt, err).WithDetail(logger.FieldTxHash, hash)
		case err != nil:
			m.log.Warn("receipt poll failed, retrying", logger.Fields(logger.FieldTxHash, hash, logger.FieldError, err.Error()))
		default:
			var r *receipt
			if jsonErr := json.Unmarshal(raw, &r); jsonErr != nil {
				return errors.ProviderError(provider.MethodTransactionReceipt, jsonErr)
			}
			if r != nil {
				if r.Status == receiptStatusFailed {
					return errors.TransactionFailed(hash, fmt.Errorf("transaction reverted in block %s", r.BlockNumber))
				}
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return errors.Timeout("confirm-transaction").WithDetail(logger.FieldTxHash, hash).WithCause(ctx.Err())
		case <-ticker.C:
		}
	}
}
