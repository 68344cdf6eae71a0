package models

import (
	"time"

	"aesthetica/internal/domain"
)

// Appointment is a booking request from the public wizard.
//
//	pending → confirmed → completed
//	pending → cancelled
//	confirmed → cancelled
type Appointment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"size:120;not null" json:"name"`
	Phone         string     `gorm:"size:32;not null;index" json:"phone"`
	Email         string     `gorm:"size:255" json:"email,omitempty"`
	ServiceID     *uint      `gorm:"index" json:"service_id"`
	PreferredDate time.Time  `gorm:"not null;index" json:"preferred_date"`
	PreferredTime string     `gorm:"size:16" json:"preferred_time"`
	Notes         string     `gorm:"type:text" json:"notes"`
	Status        string     `gorm:"size:16;not null;index" json:"status"`
	ConfirmedAt   *time.Time `json:"confirmed_at"`
	CancelledAt   *time.Time `json:"cancelled_at"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

func (Appointment) TableName() string { return "appointments" }

var appointmentTransitions = map[string][]string{
	domain.AppointmentStatusPending:   {domain.AppointmentStatusConfirmed, domain.AppointmentStatusCancelled},
	domain.AppointmentStatusConfirmed: {domain.AppointmentStatusCompleted, domain.AppointmentStatusCancelled},
	domain.AppointmentStatusCancelled: {},
	domain.AppointmentStatusCompleted: {},
}

func (a *Appointment) CanTransitionTo(next string) bool {
	for _, s := range appointmentTransitions[a.Status] {
		if s == next {
			return true
		}
	}
	return false
}
