// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"

	"github.com/example/questline/internal/core/effects"
	"github.com/example/questline/internal/ports/secondary"
)

// EffectExecutor interprets effects against an open progression transaction.
// This is the "Imperative Shell" - the only place planned writes happen.
type EffectExecutor interface {
	Execute(ctx context.Context, tx secondary.ProgressionTx, effs []effects.Effect) (*Outcome, error)
}

// Outcome summarizes what an execution applied. Events are published and
// metrics recorded only after the transaction commits.
type Outcome struct {
	Events       []effects.EventEffect
	Transitions  []effects.NodeStatusEffect
	XPGranted    int
	CoinsGranted int
}

// DefaultEffectExecutor implements EffectExecutor.
type DefaultEffectExecutor struct{}

// NewEffectExecutor creates a new DefaultEffectExecutor.
func NewEffectExecutor() *DefaultEffectExecutor {
	return &DefaultEffectExecutor{}
}

// Execute processes effects in order. The first failure aborts execution;
// the caller's transaction rollback discards any partial writes.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, tx secondary.ProgressionTx, effs []effects.Effect) (*Outcome, error) {
	out := &Outcome{}
	for _, eff := range effects.Flatten(effs) {
		if err := e.executeOne(ctx, tx, eff, out); err != nil {
			return nil, fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return out, nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, tx secondary.ProgressionTx, eff effects.Effect, out *Outcome) error {
	switch typed := eff.(type) {
	case effects.NodeStatusEffect:
		if err := tx.UpdateNodeStatus(ctx, typed.NodeID, typed.From, typed.To); err != nil {
			return err
		}
		out.Transitions = append(out.Transitions, typed)
		return nil
	case effects.GrantRewardEffect:
		return e.executeGrant(ctx, tx, typed, out)
	case effects.DeactivateRoadmapEffect:
		return tx.DeactivateRoadmap(ctx, typed.RoadmapID, typed.At)
	case effects.AuditEffect:
		return tx.AppendAudit(ctx, &secondary.AuditRecord{
			UserID:     typed.UserID,
			EntityType: typed.EntityType,
			EntityID:   typed.EntityID,
			Action:     typed.Action,
			FieldName:  typed.FieldName,
			OldValue:   typed.OldValue,
			NewValue:   typed.NewValue,
		})
	case effects.EventEffect:
		out.Events = append(out.Events, typed)
		return nil
	case effects.NoEffect:
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeGrant(ctx context.Context, tx secondary.ProgressionTx, eff effects.GrantRewardEffect, out *Outcome) error {
	if eff.XP > 0 {
		if err := tx.GrantXP(ctx, eff.UserID, eff.XP); err != nil {
			return err
		}
		out.XPGranted += eff.XP
	}
	if eff.Coins > 0 {
		if err := tx.CreditWallet(ctx, eff.UserID, eff.Coins, fmt.Sprintf("Completed roadmap node %s", eff.NodeID)); err != nil {
			return err
		}
		out.CoinsGranted += eff.Coins
	}
	return nil
}
