package reservations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"ms-reservations/internal/apierror"
	"ms-reservations/internal/config"
	"ms-reservations/internal/kafka"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/models"
	"ms-reservations/internal/reservations/qr"
	"ms-reservations/internal/validate"
)

type DBLayer interface {
	CreateReservation(ctx context.Context, reservation *models.Reservation) error
	GetReservationByID(ctx context.Context, id int64) (*models.Reservation, error)
	SoftDeleteReservation(ctx context.Context, id int64) error
}

// EventLookup resolves the owning event at creation time. Soft-deleted events
// do not resolve.
type EventLookup interface {
	GetEventByID(ctx context.Context, id int64) (*models.Event, error)
}

type Service struct {
	DB        DBLayer
	Events    EventLookup
	Publisher kafka.Publisher
	Topics    config.TopicConfig
	QR        *qr.Generator
	Logger    *logger.Logger
}

func NewService(db DBLayer, events EventLookup, publisher kafka.Publisher, topics config.TopicConfig, qrGen *qr.Generator, log *logger.Logger) *Service {
	return &Service{DB: db, Events: events, Publisher: publisher, Topics: topics, QR: qrGen, Logger: log}
}

type CreateReservationRequest struct {
	UserName  string `json:"user_name" validate:"required,max=255"`
	UserEmail string `json:"user_email" validate:"required,email,max=255"`
	Seats     int    `json:"seats" validate:"required,min=1"`
}

// Create books seats for an event. There is no capacity ceiling in the data
// model; any seat count above zero is accepted.
func (s *Service) Create(ctx context.Context, eventID int64, req CreateReservationRequest) (*models.Reservation, error) {
	if _, err := s.Events.GetEventByID(ctx, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NotFound("event")
		}
		return nil, fmt.Errorf("failed to load event %d: %w", eventID, err)
	}

	if ve := validate.Struct(req); ve != nil {
		return nil, ve
	}

	reservation := &models.Reservation{
		EventID:   eventID,
		Code:      uuid.NewString(),
		UserName:  req.UserName,
		UserEmail: req.UserEmail,
		Seats:     req.Seats,
	}
	if err := s.DB.CreateReservation(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	s.publish(s.Topics.ReservationCreated, reservation)
	return reservation, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Reservation, error) {
	reservation, err := s.DB.GetReservationByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apierror.NotFound("reservation")
		}
		return nil, fmt.Errorf("failed to load reservation %d: %w", id, err)
	}
	return reservation, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	reservation, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.DB.SoftDeleteReservation(ctx, id); err != nil {
		return fmt.Errorf("failed to delete reservation %d: %w", id, err)
	}

	s.publish(s.Topics.ReservationCancelled, reservation)
	return nil
}

// ConfirmationQR renders the reservation's confirmation code as a QR PNG.
func (s *Service) ConfirmationQR(ctx context.Context, id int64) ([]byte, error) {
	reservation, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	png, err := s.QR.ConfirmationPNG(*reservation)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR for reservation %d: %w", id, err)
	}
	return png, nil
}

func (s *Service) publish(topic string, reservation *models.Reservation) {
	if s.Publisher == nil || topic == "" {
		return
	}
	value, err := json.Marshal(reservation)
	if err != nil {
		return
	}
	if err := s.Publisher.Publish(topic, strconv.FormatInt(reservation.ID, 10), value); err != nil {
		if s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish to %s: %v", topic, err))
		}
		return
	}
	if s.Logger != nil {
		s.Logger.LogKafka("PUBLISH", topic, fmt.Sprintf("reservation %d", reservation.ID))
	}
}
