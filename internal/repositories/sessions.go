package repositories

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/rohits-web03/otadash/internal/models"
)

// eventFetchLimit bounds concurrent per-session event queries.
const eventFetchLimit = 8

type SessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// ListAll returns the sessions of every device, grouped by device name and
// newest first within a device. Events are loaded only when withEvents is set.
func (r *SessionRepo) ListAll(ctx context.Context, withEvents bool) ([]models.OtaSession, error) {
	var sessions []models.OtaSession
	err := r.db.WithContext(ctx).
		Order("device_id asc").
		Order("started_at desc").
		Find(&sessions).Error
	if err != nil {
		return nil, dbError("Sessions", err)
	}
	if withEvents {
		if err := r.attachEvents(ctx, sessions); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// ListByDevice returns the sessions of one device, newest first, with events.
func (r *SessionRepo) ListByDevice(ctx context.Context, deviceID string) ([]models.OtaSession, error) {
	var sessions []models.OtaSession
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("started_at desc").
		Find(&sessions).Error
	if err != nil {
		return nil, dbError("Sessions", err)
	}
	if err := r.attachEvents(ctx, sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Get returns one session with its events.
func (r *SessionRepo) Get(ctx context.Context, id string) (*models.OtaSession, error) {
	var s models.OtaSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, dbError("Session", err)
	}
	events, err := r.Events(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Events = events
	return &s, nil
}

// Events returns the events of a session ordered by time, newest first.
func (r *SessionRepo) Events(ctx context.Context, sessionID string) ([]models.OtaEvent, error) {
	var events []models.OtaEvent
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("at desc").
		Find(&events).Error
	if err != nil {
		return nil, dbError("Events", err)
	}
	return events, nil
}

func (r *SessionRepo) attachEvents(ctx context.Context, sessions []models.OtaSession) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(eventFetchLimit)
	for i := range sessions {
		g.Go(func() error {
			events, err := r.Events(gctx, sessions[i].ID)
			if err != nil {
				return err
			}
			sessions[i].Events = events
			return nil
		})
	}
	return g.Wait()
}

// Create stores a session together with its events and slot history in one transaction.
func (r *SessionRepo) Create(ctx context.Context, s *models.OtaSession, history []models.SlotHistory) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		for i := range history {
			history[i].SessionID = s.ID
			if err := tx.Create(&history[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return dbError("Session", err)
	}
	return nil
}

// SlotHistory returns the recorded slot flips of a device, oldest first.
func (r *SessionRepo) SlotHistory(ctx context.Context, deviceID string) ([]models.SlotHistory, error) {
	var out []models.SlotHistory
	if err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).Order("at asc").Find(&out).Error; err != nil {
		return nil, dbError("Slot history", err)
	}
	return out, nil
}
