package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/interntrack/internal/domain/activity"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/rpggio/interntrack/internal/domain/session"
)

// Service stores postings produced by the external scraper.
type Service struct {
	store      Store
	settings   NotifierSettings
	sender     Sender
	activities ActivityRecorder
	observer   Observer
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates an intake service. Everything but store may be nil;
// without settings or sender no notifications are sent.
func NewService(store Store, settings NotifierSettings, sender Sender, activities ActivityRecorder, observer Observer, logger *slog.Logger) *Service {
	return &Service{
		store:      store,
		settings:   settings,
		sender:     sender,
		activities: activities,
		observer:   observer,
		logger:     logger,
		now:        time.Now,
	}
}

// Ingest stores every posting whose application link the user doesn't already
// have, as new. The session's cache is invalidated when anything was created.
// A store failure part way keeps what was created so far.
func (s *Service) Ingest(ctx context.Context, sess *session.Session, postings []Posting) (Report, error) {
	report := Report{Received: len(postings)}
	if sess == nil || sess.UserID == "" {
		return report, internship.ErrNotAuthenticated
	}
	release := sess.Acquire()
	defer release()

	links, err := s.store.ListLinks(ctx, sess.UserID)
	if err != nil {
		return report, fmt.Errorf("listing links: %w: %w", internship.ErrStoreFailure, err)
	}
	seen := make(map[string]struct{}, len(links))
	for _, link := range links {
		seen[normalizeLink(link)] = struct{}{}
	}

	var createErr error
	for _, p := range postings {
		rec, ok := toInternship(p)
		if !ok {
			report.Invalid++
			continue
		}
		if key := normalizeLink(rec.ApplicationLink); key != "" {
			if _, dup := seen[key]; dup {
				report.Duplicates++
				continue
			}
			seen[key] = struct{}{}
		}

		rec.UserID = sess.UserID
		rec.CreatedAt = internship.FormatTimestamp(s.now())
		if err := s.store.Create(ctx, sess.UserID, &rec); err != nil {
			createErr = fmt.Errorf("creating internship: %w: %w", internship.ErrStoreFailure, err)
			break
		}
		report.Created = append(report.Created, rec)
		if s.activities != nil {
			s.activities.Record(ctx, sess.UserID, sess.ID, rec.ID, activity.TypeInternshipAdded,
				fmt.Sprintf("%s at %s: added", rec.JobTitle, rec.CompanyName),
				map[string]any{"application_link": rec.ApplicationLink, "source_site": rec.SourceSite})
		}
	}

	if len(report.Created) > 0 {
		sess.Cache().Invalidate()
		report.Invalidated = true
	}
	if s.observer != nil {
		s.observer.PostingsReceived(len(report.Created), report.Duplicates)
	}
	if s.logger != nil {
		s.logger.Info("postings ingested",
			"user_id", sess.UserID,
			"received", report.Received,
			"created", len(report.Created),
			"duplicates", report.Duplicates,
			"invalid", report.Invalid,
		)
	}

	report.Notified = s.notify(ctx, sess.UserID, report.Created)
	return report, createErr
}

// notify sends one message per created posting and a summary. Failures are
// logged and counted, never returned.
func (s *Service) notify(ctx context.Context, userID string, created []internship.Internship) int {
	if len(created) == 0 || s.settings == nil || s.sender == nil {
		return 0
	}
	settings, err := s.settings.Notifier(ctx, userID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("notifier settings unavailable", "user_id", userID, "error", err)
		}
		return 0
	}
	if !settings.Configured() {
		if s.logger != nil {
			s.logger.Warn("telegram not configured", "user_id", userID)
		}
		return 0
	}

	messages := make([]string, 0, len(created)+1)
	for _, rec := range created {
		messages = append(messages, postingMessage(rec))
	}
	messages = append(messages, summaryMessage(created))

	sent := 0
	for _, text := range messages {
		err := s.sender.Send(ctx, settings.TelegramBotToken, settings.TelegramChatID, text)
		if s.observer != nil {
			s.observer.NotificationSent(err)
		}
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("telegram notification failed", "user_id", userID, "error", err)
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			continue
		}
		sent++
	}
	return sent
}

func toInternship(p Posting) (internship.Internship, bool) {
	rec := internship.Internship{
		JobTitle:        strings.TrimSpace(p.JobTitle),
		CompanyName:     strings.TrimSpace(p.CompanyName),
		JobDescription:  strings.TrimSpace(p.JobDescription),
		ApplicationLink: strings.TrimSpace(p.ApplicationLink),
		SourceURL:       strings.TrimSpace(p.SourceURL),
		SourceSite:      strings.TrimSpace(p.SourceSite),
		Status:          internship.StatusNew,
	}
	if rec.JobTitle == "" || rec.CompanyName == "" {
		return rec, false
	}
	return rec, true
}

func normalizeLink(link string) string {
	return strings.TrimRight(strings.TrimSpace(link), "/")
}
