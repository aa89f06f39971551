package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/example/questline/internal/apperr"
	"github.com/example/questline/internal/core/effects"
	coreroadmap "github.com/example/questline/internal/core/roadmap"
	"github.com/example/questline/internal/logging"
	"github.com/example/questline/internal/metrics"
	"github.com/example/questline/internal/ports/primary"
	"github.com/example/questline/internal/ports/secondary"
)

// RoadmapOptions tunes generation and rewards.
type RoadmapOptions struct {
	OracleTimeout time.Duration // zero means no extra deadline
	StepCount     int           // exact number of steps a roadmap must have
	CreditCoins   bool          // coin policy "wallet"
}

// RoadmapServiceImpl implements the RoadmapService interface.
type RoadmapServiceImpl struct {
	roadmapRepo secondary.RoadmapRepository
	store       secondary.ProgressionStore
	profileRepo secondary.ProfileRepository
	oracle      secondary.ContentOracle
	publisher   secondary.EventPublisher // optional
	executor    EffectExecutor
	logger      logrus.FieldLogger
	opts        RoadmapOptions
	now         func() time.Time
	newID       func() string
}

// NewRoadmapService creates a new RoadmapService with injected dependencies.
// publisher may be nil when event publishing is disabled.
func NewRoadmapService(
	roadmapRepo secondary.RoadmapRepository,
	store secondary.ProgressionStore,
	profileRepo secondary.ProfileRepository,
	oracle secondary.ContentOracle,
	publisher secondary.EventPublisher,
	executor EffectExecutor,
	logger logrus.FieldLogger,
	opts RoadmapOptions,
) *RoadmapServiceImpl {
	if opts.StepCount <= 0 {
		opts.StepCount = coreroadmap.DefaultStepCount
	}
	return &RoadmapServiceImpl{
		roadmapRepo: roadmapRepo,
		store:       store,
		profileRepo: profileRepo,
		oracle:      oracle,
		publisher:   publisher,
		executor:    executor,
		logger:      logger,
		opts:        opts,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// GenerateRoadmap returns the user's active roadmap for the domain, creating
// one from oracle output when none exists. The oracle is called outside any
// lock; the existence check is repeated under the generation lock so
// concurrent requests converge on a single roadmap.
func (s *RoadmapServiceImpl) GenerateRoadmap(ctx context.Context, req primary.GenerateRoadmapRequest) (*primary.Roadmap, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, apperr.Validation("user is required")
	}
	if strings.TrimSpace(req.Domain) == "" {
		return nil, apperr.Validation("domain is required")
	}
	domain, ok := coreroadmap.ParseDomain(req.Domain)
	if !ok {
		return nil, apperr.Validation(fmt.Sprintf("unknown domain %q", req.Domain))
	}

	log := logging.FromContext(ctx, s.logger).WithFields(logrus.Fields{"user_id": req.UserID, "domain": domain})

	// 1. Reuse an existing active roadmap
	existing, err := s.roadmapRepo.FindActive(ctx, req.UserID, string(domain))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to look up active roadmap: %w", err))
	}
	if existing != nil {
		metrics.RecordGeneration(string(domain), "reused")
		return s.loadRoadmap(ctx, existing)
	}

	// 2. Ask the oracle for steps
	profile, err := s.profileRepo.GetProfile(ctx, req.UserID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to load profile: %w", err))
	}
	steps, err := s.requestSteps(ctx, profile, domain)
	if err != nil {
		metrics.RecordGeneration(string(domain), "failed")
		log.WithError(err).Warn("roadmap generation failed")
		return nil, apperr.Generation(err)
	}

	// 3. Plan and persist under the generation lock
	plan := coreroadmap.PlanRoadmap(coreroadmap.RoadmapPlanInput{
		UserID: req.UserID,
		Domain: domain,
		Steps:  steps,
		Now:    s.now(),
	}, s.newID)

	var (
		result  *secondary.RoadmapRecord
		created bool
	)
	err = s.store.WithGenerationLock(ctx, req.UserID, string(domain), func(tx secondary.ProgressionTx) error {
		winner, err := tx.FindActive(ctx, req.UserID, string(domain))
		if err != nil {
			return err
		}
		if winner != nil {
			result = winner
			return nil
		}

		record, nodes := plannedRecords(plan)
		if err := tx.CreateRoadmap(ctx, record, nodes); err != nil {
			return err
		}
		if err := tx.AppendAudit(ctx, &secondary.AuditRecord{
			UserID:     req.UserID,
			EntityType: "roadmap",
			EntityID:   record.ID,
			Action:     "create",
			FieldName:  "domain",
			NewValue:   string(domain),
		}); err != nil {
			return err
		}
		result, created = record, true
		return nil
	})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("failed to persist roadmap: %w", err))
	}

	if !created {
		metrics.RecordGeneration(string(domain), "reused")
		log.WithField("roadmap_id", result.ID).Info("concurrent generation won; returning existing roadmap")
		return s.loadRoadmap(ctx, result)
	}

	metrics.RecordGeneration(string(domain), "created")
	log.WithField("roadmap_id", result.ID).Info("roadmap generated")
	s.publish(ctx, []effects.EventEffect{{
		Type:      coreroadmap.EventRoadmapGenerated,
		UserID:    req.UserID,
		RoadmapID: result.ID,
	}}, string(domain))

	return s.loadRoadmap(ctx, result)
}

func (s *RoadmapServiceImpl) requestSteps(ctx context.Context, profile *secondary.ProfileRecord, domain coreroadmap.Domain) ([]coreroadmap.Step, error) {
	oracleCtx := ctx
	if s.opts.OracleTimeout > 0 {
		var cancel context.CancelFunc
		oracleCtx, cancel = context.WithTimeout(ctx, s.opts.OracleTimeout)
		defer cancel()
	}

	start := time.Now()
	drafts, err := s.oracle.GenerateSteps(oracleCtx, secondary.ProfileSnapshot{
		UserID:        profile.UserID,
		Level:         profile.Level,
		XP:            profile.XP,
		CurrentStreak: profile.CurrentStreak,
		Language:      profile.Language,
	}, string(domain))
	metrics.RecordOracleRequest(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("oracle request failed: %w", err)
	}

	core := make([]coreroadmap.StepDraft, len(drafts))
	for i, d := range drafts {
		core[i] = coreroadmap.StepDraft{
			Title:       d.Title,
			Description: d.Description,
			Order:       d.Order,
			XPReward:    d.XPReward,
			CoinReward:  d.CoinReward,
		}
	}
	return coreroadmap.NormalizeSteps(core, s.opts.StepCount)
}

// GetRoadmap retrieves one of the user's roadmaps with its nodes.
func (s *RoadmapServiceImpl) GetRoadmap(ctx context.Context, userID, roadmapID string) (*primary.Roadmap, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation("user is required")
	}
	if strings.TrimSpace(roadmapID) == "" {
		return nil, apperr.Validation("roadmap id is required")
	}

	record, err := s.roadmapRepo.GetForUser(ctx, roadmapID, userID)
	if errors.Is(err, secondary.ErrNotFound) {
		return nil, apperr.NotFound("roadmap not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return s.loadRoadmap(ctx, record)
}

// ListRoadmaps lists the user's roadmaps with their nodes.
func (s *RoadmapServiceImpl) ListRoadmaps(ctx context.Context, filters primary.RoadmapFilters) ([]*primary.Roadmap, error) {
	if strings.TrimSpace(filters.UserID) == "" {
		return nil, apperr.Validation("user is required")
	}

	repoFilters := secondary.RoadmapFilters{UserID: filters.UserID, IncludeInactive: filters.IncludeInactive}
	if filters.Domain != "" {
		domain, ok := coreroadmap.ParseDomain(filters.Domain)
		if !ok {
			return nil, apperr.Validation(fmt.Sprintf("unknown domain %q", filters.Domain))
		}
		repoFilters.Domain = string(domain)
	}

	records, err := s.roadmapRepo.List(ctx, repoFilters)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	roadmaps := make([]*primary.Roadmap, 0, len(records))
	for _, rec := range records {
		rm, err := s.loadRoadmap(ctx, rec)
		if err != nil {
			return nil, err
		}
		roadmaps = append(roadmaps, rm)
	}
	return roadmaps, nil
}

// StartNode moves an AVAILABLE node to IN_PROGRESS.
func (s *RoadmapServiceImpl) StartNode(ctx context.Context, req primary.NodeActionRequest) (*primary.RoadmapNode, error) {
	return s.transition(ctx, req, "start", func(nodes []coreroadmap.NodeState, roadmapID string) coreroadmap.TransitionPlan {
		return coreroadmap.PlanStartNode(coreroadmap.StartPlanInput{
			UserID:    req.UserID,
			RoadmapID: roadmapID,
			NodeID:    req.NodeID,
			Nodes:     nodes,
		})
	})
}

// CompleteNode moves an IN_PROGRESS node to COMPLETED, grants its rewards,
// unlocks the successor and retires the roadmap once every node is done.
// Completing an already completed node changes nothing.
func (s *RoadmapServiceImpl) CompleteNode(ctx context.Context, req primary.NodeActionRequest) (*primary.RoadmapNode, error) {
	return s.transition(ctx, req, "complete", func(nodes []coreroadmap.NodeState, roadmapID string) coreroadmap.TransitionPlan {
		return coreroadmap.PlanCompleteNode(coreroadmap.CompletePlanInput{
			UserID:      req.UserID,
			RoadmapID:   roadmapID,
			NodeID:      req.NodeID,
			Nodes:       nodes,
			CreditCoins: s.opts.CreditCoins,
			Now:         s.now(),
		})
	})
}

type planFunc func(nodes []coreroadmap.NodeState, roadmapID string) coreroadmap.TransitionPlan

// transition runs a node state-machine step: ownership check, then plan and
// execute against freshly read sibling state while holding the roadmap lock.
func (s *RoadmapServiceImpl) transition(ctx context.Context, req primary.NodeActionRequest, action string, plan planFunc) (*primary.RoadmapNode, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, apperr.Validation("user is required")
	}
	req.NodeID = strings.TrimSpace(req.NodeID)
	if req.NodeID == "" {
		return nil, apperr.Validation("node_id is required")
	}

	// 1. Resolve the node and its owning roadmap
	node, err := s.roadmapRepo.GetNodeForUser(ctx, req.NodeID, req.UserID)
	if errors.Is(err, secondary.ErrNotFound) {
		return nil, apperr.NotFound("node not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	log := logging.FromContext(ctx, s.logger).WithFields(logrus.Fields{
		"user_id":    req.UserID,
		"roadmap_id": node.RoadmapID,
		"node_id":    node.ID,
		"action":     action,
	})

	// 2. Plan and apply under the roadmap lock
	var (
		updated *secondary.NodeRecord
		outcome *Outcome
	)
	err = s.store.WithRoadmapLock(ctx, node.RoadmapID, func(tx secondary.ProgressionTx) error {
		records, err := tx.ListNodes(ctx, node.RoadmapID)
		if err != nil {
			return err
		}
		if findRecord(records, node.ID) == nil {
			return secondary.ErrNotFound
		}

		p := plan(nodeStates(records), node.RoadmapID)
		if !p.Guard.Allowed {
			return apperr.InvalidTransition(p.Guard.Reason)
		}

		outcome, err = s.executor.Execute(ctx, tx, p.Effects)
		if err != nil {
			return err
		}

		if p.NoOp() {
			updated = findRecord(records, node.ID)
			return nil
		}
		refreshed, err := tx.ListNodes(ctx, node.RoadmapID)
		if err != nil {
			return err
		}
		updated = findRecord(refreshed, node.ID)
		return nil
	})
	if err != nil {
		return nil, s.transitionError(err)
	}
	if updated == nil {
		return nil, apperr.NotFound("node not found")
	}

	// 3. Report committed changes
	for _, t := range outcome.Transitions {
		metrics.RecordTransition(t.From, t.To)
	}
	metrics.RecordReward(outcome.XPGranted, outcome.CoinsGranted)
	if len(outcome.Transitions) == 0 {
		log.Debug("node transition was a no-op")
	} else {
		log.WithFields(logrus.Fields{"status": updated.Status, "xp": outcome.XPGranted, "coins": outcome.CoinsGranted}).Info("node transitioned")
	}
	s.publish(ctx, outcome.Events, "")

	return toPrimaryNode(updated), nil
}

func (s *RoadmapServiceImpl) transitionError(err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	if errors.Is(err, secondary.ErrNotFound) {
		return apperr.NotFound("node not found")
	}
	if errors.Is(err, secondary.ErrStatusConflict) {
		return apperr.InvalidTransition("node status changed concurrently")
	}
	return apperr.Internal(err)
}

// publish broadcasts committed events. Failures are logged, never returned.
func (s *RoadmapServiceImpl) publish(ctx context.Context, events []effects.EventEffect, domain string) {
	if s.publisher == nil {
		return
	}
	log := logging.FromContext(ctx, s.logger)
	for _, ev := range events {
		event := secondary.ProgressEvent{
			ID:         s.newID(),
			Type:       ev.Type,
			UserID:     ev.UserID,
			RoadmapID:  ev.RoadmapID,
			NodeID:     ev.NodeID,
			Domain:     domain,
			XP:         ev.XP,
			Coins:      ev.Coins,
			OccurredAt: s.now(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.WithError(err).WithField("event_type", ev.Type).Warn("failed to publish progression event")
		}
	}
}

func (s *RoadmapServiceImpl) loadRoadmap(ctx context.Context, rec *secondary.RoadmapRecord) (*primary.Roadmap, error) {
	nodes, err := s.roadmapRepo.ListNodes(ctx, rec.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	rm := &primary.Roadmap{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Domain:    rec.Domain,
		IsActive:  rec.IsActive,
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		Nodes:     make([]*primary.RoadmapNode, len(nodes)),
	}
	if rec.CompletedAt != nil {
		rm.CompletedAt = rec.CompletedAt.UTC().Format(time.RFC3339)
	}
	for i, n := range nodes {
		rm.Nodes[i] = toPrimaryNode(n)
	}
	return rm, nil
}

func plannedRecords(plan coreroadmap.PlannedRoadmap) (*secondary.RoadmapRecord, []*secondary.NodeRecord) {
	record := &secondary.RoadmapRecord{
		ID:        plan.ID,
		UserID:    plan.UserID,
		Domain:    string(plan.Domain),
		IsActive:  true,
		CreatedAt: plan.CreatedAt,
	}
	nodes := make([]*secondary.NodeRecord, len(plan.Nodes))
	for i, n := range plan.Nodes {
		nodes[i] = &secondary.NodeRecord{
			ID:          n.ID,
			RoadmapID:   plan.ID,
			Title:       n.Title,
			Description: n.Description,
			Status:      string(n.Status),
			Order:       n.Order,
			XPReward:    n.XPReward,
			CoinReward:  n.CoinReward,
		}
	}
	return record, nodes
}

func nodeStates(records []*secondary.NodeRecord) []coreroadmap.NodeState {
	states := make([]coreroadmap.NodeState, len(records))
	for i, r := range records {
		states[i] = coreroadmap.NodeState{
			ID:         r.ID,
			Order:      r.Order,
			Status:     coreroadmap.NodeStatus(r.Status),
			XPReward:   r.XPReward,
			CoinReward: r.CoinReward,
		}
	}
	return states
}

func findRecord(records []*secondary.NodeRecord, id string) *secondary.NodeRecord {
	for _, r := range records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func toPrimaryNode(n *secondary.NodeRecord) *primary.RoadmapNode {
	return &primary.RoadmapNode{
		ID:          n.ID,
		RoadmapID:   n.RoadmapID,
		Title:       n.Title,
		Description: n.Description,
		Status:      n.Status,
		Order:       n.Order,
		XPReward:    n.XPReward,
		CoinReward:  n.CoinReward,
	}
}

var _ primary.RoadmapService = (*RoadmapServiceImpl)(nil)
