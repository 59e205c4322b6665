package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"ms-reservations/internal/apierror"
	"ms-reservations/internal/config"
	"ms-reservations/internal/kafka"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/models"
	"ms-reservations/internal/validate"
)

// PerPage is the fixed page size of the event listing.
const PerPage = 10

type DBLayer interface {
	ListEvents(ctx context.Context, filters models.EventFilters, limit, offset int) ([]*models.Event, int, error)
	GetEventByID(ctx context.Context, id int64) (*models.Event, error)
	GetEventWithReservations(ctx context.Context, id int64) (*models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, event *models.Event, columns []string) error
	SoftDeleteEvent(ctx context.Context, id int64) error
}

type Service struct {
	DB        DBLayer
	Publisher kafka.Publisher
	Topics    config.TopicConfig
	Logger    *logger.Logger
}

func NewService(db DBLayer, publisher kafka.Publisher, topics config.TopicConfig, log *logger.Logger) *Service {
	return &Service{DB: db, Publisher: publisher, Topics: topics, Logger: log}
}

type CreateEventRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Location    string `json:"location" validate:"required"`
	Description string `json:"description"`
}

// UpdateEventRequest carries partial updates. Nil fields stay untouched; the
// field set doubles as the allow-list of mutable attributes, so unknown
// payload keys can never reach storage.
type UpdateEventRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Date        *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
}

func (s *Service) List(ctx context.Context, filters models.EventFilters, page int) (*models.EventPage, error) {
	if page < 1 {
		page = 1
	}

	events, total, err := s.DB.ListEvents(ctx, filters, PerPage, (page-1)*PerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if events == nil {
		events = []*models.Event{}
	}

	lastPage := (total + PerPage - 1) / PerPage
	if lastPage < 1 {
		lastPage = 1
	}

	return &models.EventPage{
		Data:        events,
		Total:       total,
		PerPage:     PerPage,
		CurrentPage: page,
		LastPage:    lastPage,
	}, nil
}

func (s *Service) Create(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	if ve := validate.Struct(req); ve != nil {
		return nil, ve
	}

	event := &models.Event{
		Name:        req.Name,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
	}
	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.publish(s.Topics.EventCreated, event)
	return event, nil
}

// Get returns the event with its current reservations, or NotFound when the
// id is unknown or the event was soft-deleted.
func (s *Service) Get(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.DB.GetEventWithReservations(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NotFound("event")
		}
		return nil, fmt.Errorf("failed to load event %d: %w", id, err)
	}
	return event, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateEventRequest) (*models.Event, error) {
	if ve := validate.Struct(req); ve != nil {
		return nil, ve
	}

	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NotFound("event")
		}
		return nil, fmt.Errorf("failed to load event %d: %w", id, err)
	}

	var columns []string
	if req.Name != nil {
		event.Name = *req.Name
		columns = append(columns, "name")
	}
	if req.Date != nil {
		event.Date = *req.Date
		columns = append(columns, "date")
	}
	if req.Location != nil {
		event.Location = *req.Location
		columns = append(columns, "location")
	}
	if req.Description != nil {
		event.Description = *req.Description
		columns = append(columns, "description")
	}
	if len(columns) == 0 {
		return event, nil
	}

	event.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")
	if err := s.DB.UpdateEvent(ctx, event, columns); err != nil {
		return nil, fmt.Errorf("failed to update event %d: %w", id, err)
	}

	s.publish(s.Topics.EventUpdated, event)
	return event, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apierror.NotFound("event")
		}
		return fmt.Errorf("failed to load event %d: %w", id, err)
	}

	if err := s.DB.SoftDeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}

	s.publish(s.Topics.EventCancelled, event)
	return nil
}

func (s *Service) publish(topic string, event *models.Event) {
	if s.Publisher == nil || topic == "" {
		return
	}
	value, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.Publisher.Publish(topic, strconv.FormatInt(event.ID, 10), value); err != nil {
		if s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish to %s: %v", topic, err))
		}
		return
	}
	if s.Logger != nil {
		s.Logger.LogKafka("PUBLISH", topic, fmt.Sprintf("event %d", event.ID))
	}
}
