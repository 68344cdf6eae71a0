package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aesthetica/internal/clock"
	"aesthetica/internal/domain"
	"aesthetica/internal/models"
	"aesthetica/internal/repository"
	"aesthetica/pkg/metrics"
	"aesthetica/pkg/whatsapp"

	"github.com/sirupsen/logrus"
)

// ChatSender sends a WhatsApp message and returns the provider message id.
type ChatSender interface {
	Send(ctx context.Context, phone, body string) (string, error)
}

type AppointmentService struct {
	repo     *repository.AppointmentRepository
	services *CatalogService[models.Service]
	settings *SettingsService
	chat     ChatSender
	clock    clock.Clock
	events   EventPublisher
	metrics  *metrics.Collector
}

func NewAppointmentService(
	repo *repository.AppointmentRepository,
	services *CatalogService[models.Service],
	settings *SettingsService,
	chat ChatSender,
	clk clock.Clock,
	events EventPublisher,
	m *metrics.Collector,
) *AppointmentService {
	if clk == nil {
		clk = clock.System()
	}
	return &AppointmentService{
		repo:     repo,
		services: services,
		settings: settings,
		chat:     chat,
		clock:    clk,
		events:   events,
		metrics:  m,
	}
}

type BookingInput struct {
	Name          string `json:"name" binding:"required,max=120"`
	Phone         string `json:"phone" binding:"required,max=32"`
	Email         string `json:"email" binding:"omitempty,email"`
	ServiceID     *uint  `json:"service_id"`
	PreferredDate string `json:"preferred_date" binding:"required"` // YYYY-MM-DD
	PreferredTime string `json:"preferred_time"`                    // HH:MM
	Notes         string `json:"notes" binding:"max=1000"`
}

// Handoff is the chat deep link the site opens after a booking or confirmation.
type Handoff struct {
	Appointment *models.Appointment `json:"appointment"`
	URL         string              `json:"handoff_url,omitempty"`
	Message     string              `json:"handoff_message"`
	Sent        bool                `json:"sent"`
}

// Book records a booking request and returns the pre-filled message for the clinic's WhatsApp.
func (s *AppointmentService) Book(ctx context.Context, in BookingInput) (*Handoff, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.PreferredTime = strings.TrimSpace(in.PreferredTime)

	var fe fieldErrors
	if in.Name == "" {
		fe.add("name", "required")
	}
	if NormalizePhone(in.Phone) == "" {
		fe.add("phone", "required")
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(in.PreferredDate))
	if err != nil {
		fe.add("preferred_date", "must be YYYY-MM-DD")
	} else if today := s.clock.Now().Truncate(24 * time.Hour); date.Before(today) {
		fe.add("preferred_date", "must not be in the past")
	}
	if in.PreferredTime != "" {
		if _, err := time.Parse("15:04", in.PreferredTime); err != nil {
			fe.add("preferred_time", "must be HH:MM")
		}
	}
	var svc *models.Service
	if in.ServiceID != nil {
		if svc, err = s.services.Get(ctx, *in.ServiceID); err != nil {
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			fe.add("service_id", "unknown service")
		}
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	a := &models.Appointment{
		Name:          in.Name,
		Phone:         in.Phone,
		Email:         strings.TrimSpace(in.Email),
		ServiceID:     in.ServiceID,
		PreferredDate: date,
		PreferredTime: in.PreferredTime,
		Notes:         strings.TrimSpace(in.Notes),
		Status:        domain.AppointmentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, storeErr("create appointment", err)
	}
	a.Service = svc

	s.metrics.Appointment(domain.AppointmentStatusPending)
	logrus.WithFields(logrus.Fields{"appointment_id": a.ID, "date": in.PreferredDate}).Info("[appointment] booked")
	publish(s.events, domain.EventAppointmentCreated, a)

	clinicName := s.settings.Get(ctx, domain.SettingClinicName, "the clinic")
	msg := BookingMessage(clinicName, a)
	out := &Handoff{Appointment: a, Message: msg}
	clinicPhone := s.settings.Get(ctx, domain.SettingClinicWhatsApp, s.settings.Get(ctx, domain.SettingClinicPhone, ""))
	if whatsapp.Digits(clinicPhone) != "" {
		out.URL = whatsapp.Link(clinicPhone, msg)
	}
	return out, nil
}

// BookingMessage is the text a visitor sends to the clinic after booking.
func BookingMessage(clinicName string, a *models.Appointment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s! I would like to book an appointment.\n", clinicName)
	fmt.Fprintf(&b, "Name: %s\n", a.Name)
	if a.Service != nil {
		fmt.Fprintf(&b, "Treatment: %s\n", a.Service.Name)
	}
	fmt.Fprintf(&b, "Date: %s", a.PreferredDate.Format("02/01/2006"))
	if a.PreferredTime != "" {
		fmt.Fprintf(&b, " at %s", a.PreferredTime)
	}
	b.WriteString("\n")
	if a.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", a.Notes)
	}
	return strings.TrimRight(b.String(), "\n")
}

// ConfirmationMessage is the text staff send to the patient once confirmed.
func ConfirmationMessage(clinicName string, a *models.Appointment) string {
	when := a.PreferredDate.Format("02/01/2006")
	if a.PreferredTime != "" {
		when += " at " + a.PreferredTime
	}
	treatment := ""
	if a.Service != nil {
		treatment = " for " + a.Service.Name
	}
	return fmt.Sprintf("Hi %s, your appointment%s at %s is confirmed for %s. See you soon!", a.Name, treatment, clinicName, when)
}

func (s *AppointmentService) transition(ctx context.Context, id uint, next string) (*models.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load appointment", err)
	}
	if !a.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: appointment %s -> %s", ErrInvalidTransition, a.Status, next)
	}
	now := s.clock.Now()
	stamps := map[string]interface{}{"updated_at": now}
	switch next {
	case domain.AppointmentStatusConfirmed:
		stamps["confirmed_at"] = now
	case domain.AppointmentStatusCancelled:
		stamps["cancelled_at"] = now
	case domain.AppointmentStatusCompleted:
		stamps["completed_at"] = now
	}
	ok, err := s.repo.Transition(ctx, id, a.Status, next, stamps)
	if err != nil {
		return nil, storeErr("update appointment", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: appointment changed concurrently", ErrInvalidTransition)
	}
	s.metrics.Appointment(next)
	logrus.WithFields(logrus.Fields{"appointment_id": id, "status": next}).Info("[appointment] status updated")
	return s.Get(ctx, id)
}

// Confirm confirms a pending appointment and hands the patient message off,
// sending it through WhatsApp when a sender is configured.
func (s *AppointmentService) Confirm(ctx context.Context, id uint) (*Handoff, error) {
	a, err := s.transition(ctx, id, domain.AppointmentStatusConfirmed)
	if err != nil {
		return nil, err
	}
	msg := ConfirmationMessage(s.settings.Get(ctx, domain.SettingClinicName, "the clinic"), a)
	out := &Handoff{Appointment: a, Message: msg, URL: whatsapp.Link(a.Phone, msg)}
	if s.chat != nil {
		if _, err := s.chat.Send(ctx, a.Phone, msg); err != nil {
			logrus.WithError(err).WithField("appointment_id", id).Warn("[appointment] confirmation not sent")
		} else {
			out.Sent = true
		}
	}
	return out, nil
}

func (s *AppointmentService) Cancel(ctx context.Context, id uint) (*models.Appointment, error) {
	return s.transition(ctx, id, domain.AppointmentStatusCancelled)
}

func (s *AppointmentService) Complete(ctx context.Context, id uint) (*models.Appointment, error) {
	return s.transition(ctx, id, domain.AppointmentStatusCompleted)
}

func (s *AppointmentService) List(ctx context.Context, f repository.AppointmentFilter) ([]models.Appointment, int64, error) {
	list, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, storeErr("list appointments", err)
	}
	return list, total, nil
}

func (s *AppointmentService) Get(ctx context.Context, id uint) (*models.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load appointment", err)
	}
	return a, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id uint) error {
	return storeErr("delete appointment", s.repo.Delete(ctx, id))
}
