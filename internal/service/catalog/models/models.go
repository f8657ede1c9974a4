package models

import (
	"strings"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Response модели

// LocationResponse ответ с данными локации и ее расписанием
type LocationResponse struct {
	ID                int64                `json:"id"`
	Slug              string               `json:"slug"`
	Name              string               `json:"name"`
	IsActive          bool                 `json:"isActive"`
	MaxBookingsPerDay *int                 `json:"maxBookingsPerDay,omitempty"` // nil = без ограничений
	WorkingHours      domain.WorkingHours  `json:"workingHours"`
	BlackoutDates     []string             `json:"blackoutDates"` // "2025-12-31"
	Staff             []StaffShortResponse `json:"staff"`
}

// StaffShortResponse сотрудник, которого можно забронировать в локации
type StaffShortResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	IsPrimary bool   `json:"isPrimary"`
}

// FromDomainLocation конвертирует domain.Location и активных сотрудников в LocationResponse
func FromDomainLocation(loc *domain.Location, staff []*domain.Staff) *LocationResponse {
	if loc == nil {
		return nil
	}

	blackouts := make([]string, 0, len(loc.BlackoutDates))
	for _, d := range loc.BlackoutDates {
		blackouts = append(blackouts, d.Format(domain.DateFormat))
	}

	members := make([]StaffShortResponse, 0, len(staff))
	for _, s := range staff {
		members = append(members, StaffShortResponse{
			ID:        s.ID,
			Name:      strings.TrimSpace(s.Name),
			IsPrimary: s.PrimaryLocationID == loc.ID,
		})
	}

	workingHours := loc.WorkingHours
	if workingHours == nil {
		workingHours = domain.WorkingHours{}
	}

	return &LocationResponse{
		ID:                loc.ID,
		Slug:              loc.Slug,
		Name:              loc.Name,
		IsActive:          loc.IsActive,
		MaxBookingsPerDay: loc.MaxBookingsPerDay,
		WorkingHours:      workingHours,
		BlackoutDates:     blackouts,
		Staff:             members,
	}
}
