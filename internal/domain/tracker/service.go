package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpggio/interntrack/internal/domain/activity"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/domain/session"
)

// Service performs apply, reject and delete against the store and keeps the
// session's listing cache consistent with it.
//
// Actions on one session run one at a time. A failed store call never touches
// the cache and is never retried.
type Service struct {
	store      Store
	activities ActivityRecorder
	observer   Observer
	logger     *slog.Logger
}

// NewService creates an orchestrator. activities, observer and logger may be nil.
func NewService(store Store, activities ActivityRecorder, observer Observer, logger *slog.Logger) *Service {
	return &Service{store: store, activities: activities, observer: observer, logger: logger}
}

// Apply moves a new internship to applied.
func (s *Service) Apply(ctx context.Context, sess *session.Session, id int64) (Result, error) {
	return s.changeStatus(ctx, sess, id, internship.ActionApply)
}

// Reject moves a new or applied internship to rejected. Rejecting an already
// rejected internship succeeds without a store call.
func (s *Service) Reject(ctx context.Context, sess *session.Session, id int64) (Result, error) {
	return s.changeStatus(ctx, sess, id, internship.ActionReject)
}

// Delete rejects the internship, then removes it. When removal fails the
// rejection stands and the record stays visible as rejected.
func (s *Service) Delete(ctx context.Context, sess *session.Session, id int64) (Result, error) {
	res := Result{Action: internship.ActionDelete, RecordID: id}
	if sess == nil {
		return s.fail(res, OutcomeUnauthenticated, "sign in to manage internships", internship.ErrNotAuthenticated)
	}
	release := sess.Acquire()
	defer release()

	cache := sess.Cache()
	rec, err := cache.Find(ctx, sess.UserID, id)
	if err != nil {
		return s.lookupFailed(res, err)
	}
	current := internship.ParseStatus(string(rec.Status))
	res.Status = current

	next, err := internship.NextStatus(current, internship.ActionDelete)
	if err != nil {
		return s.fail(res, OutcomeInvalid, "this internship cannot be deleted", err)
	}

	if next != current {
		if err := s.store.UpdateStatus(ctx, sess.UserID, id, next); err != nil {
			res.Reason = "could not delete the internship, please try again"
			return s.storeFailed(res, "rejecting before delete", err)
		}
		cache.Invalidate()
		res.Invalidated = true
		res.Status = next
		s.record(ctx, sess, id, activity.TypeInternshipRejected, describe(rec, "rejected before deletion"), map[string]any{
			"from": current, "to": next, "phase": "delete",
		})
	}

	if err := s.store.Delete(ctx, sess.UserID, id); err != nil {
		if s.logger != nil {
			s.logger.Warn("delete incomplete", "user_id", sess.UserID, "internship_id", id, "error", err)
		}
		s.record(ctx, sess, id, activity.TypeDeleteIncomplete, describe(rec, "rejected but not removed"), map[string]any{
			"error": err.Error(),
		})
		res.Reason = "the internship was rejected but could not be removed"
		return s.fail(res, OutcomeIncomplete, res.Reason, fmt.Errorf("removing internship %d: %w: %w", id, internship.ErrStoreFailure, err))
	}
	cache.Invalidate()
	res.Invalidated = true
	res.Removed = true
	res.OK = true
	res.Reason = "internship deleted"
	s.record(ctx, sess, id, activity.TypeInternshipDeleted, describe(rec, "deleted"), nil)
	s.observe(res.Action, OutcomeOK)
	return res, nil
}

func (s *Service) changeStatus(ctx context.Context, sess *session.Session, id int64, action internship.Action) (Result, error) {
	res := Result{Action: action, RecordID: id}
	if sess == nil {
		return s.fail(res, OutcomeUnauthenticated, "sign in to manage internships", internship.ErrNotAuthenticated)
	}
	release := sess.Acquire()
	defer release()

	cache := sess.Cache()
	rec, err := cache.Find(ctx, sess.UserID, id)
	if err != nil {
		return s.lookupFailed(res, err)
	}
	current := internship.ParseStatus(string(rec.Status))
	res.Status = current

	next, err := internship.NextStatus(current, action)
	if err != nil {
		res.NoOp = true
		reason := fmt.Sprintf("cannot %s an internship that is %s", action, current.Title())
		return s.fail(res, OutcomeInvalid, reason, fmt.Errorf("%s internship %d: %w", action, id, err))
	}
	if next == current {
		res.NoOp = true
		res.OK = true
		res.Reason = "already " + string(current)
		s.observe(action, OutcomeNoOp)
		return res, nil
	}

	if err := s.store.UpdateStatus(ctx, sess.UserID, id, next); err != nil {
		res.Reason = "could not update the internship, please try again"
		return s.storeFailed(res, "updating status", err)
	}
	cache.Invalidate()
	res.Invalidated = true
	res.Status = next
	res.OK = true
	res.Reason = "marked as " + string(next)

	typ := activity.TypeStatusChanged
	if next == internship.StatusRejected {
		typ = activity.TypeInternshipRejected
	}
	s.record(ctx, sess, id, typ, describe(rec, res.Reason), map[string]any{"from": current, "to": next})
	s.observe(action, OutcomeOK)
	return res, nil
}

func (s *Service) lookupFailed(res Result, err error) (Result, error) {
	switch {
	case errors.Is(err, internship.ErrNotAuthenticated):
		return s.fail(res, OutcomeUnauthenticated, "sign in to manage internships", err)
	case errors.Is(err, internship.ErrRecordNotFound):
		return s.fail(res, OutcomeNotFound, "internship not found", fmt.Errorf("internship %d: %w", res.RecordID, err))
	default:
		res.Reason = "could not load internships, please try again"
		return s.fail(res, OutcomeFailed, res.Reason, err)
	}
}

func (s *Service) storeFailed(res Result, doing string, err error) (Result, error) {
	if s.logger != nil {
		s.logger.Error("store call failed", "action", res.Action, "internship_id", res.RecordID, "error", err)
	}
	return s.fail(res, OutcomeFailed, res.Reason, fmt.Errorf("%s: %w: %w", doing, internship.ErrStoreFailure, err))
}

func (s *Service) fail(res Result, outcome, reason string, err error) (Result, error) {
	res.OK = false
	if res.Reason == "" {
		res.Reason = reason
	}
	s.observe(res.Action, outcome)
	return res, err
}

func (s *Service) observe(action internship.Action, outcome string) {
	if s.observer != nil {
		s.observer.ActionCompleted(string(action), outcome)
	}
}

func (s *Service) record(ctx context.Context, sess *session.Session, id int64, typ activity.ActivityType, summary string, details map[string]any) {
	if s.activities != nil {
		s.activities.Record(ctx, sess.UserID, sess.ID, id, typ, summary, details)
	}
}

func describe(rec internship.Internship, what string) string {
	return fmt.Sprintf("%s at %s: %s", rec.JobTitle, rec.CompanyName, what)
}
