package check_availability

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/scheduling"
	checkAvailability "github.com/m04kA/SMC-StudioBooking/internal/usecase/check_availability"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	PackageID   int64            `json:"packageId"`
	LocationID  *int64           `json:"locationId,omitempty"`
	TotalAmount decimal.Decimal  `json:"totalAmount"`
	Windows     []WindowResponse `json:"windows"`
}

// WindowResponse окно и сотрудники, готовые его взять
type WindowResponse struct {
	StartTime time.Time            `json:"startTime"`
	EndTime   time.Time            `json:"endTime"`
	Available bool                 `json:"available"`
	Reason    string               `json:"reason,omitempty"` // причина отказа локации
	Staff     []StaffShortResponse `json:"staff"`
}

// StaffShortResponse свободный сотрудник
type StaffShortResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// parseQuery разбирает query параметры:
// packageId, startTime/endTime (RFC3339) либо date (YYYY-MM-DD), locationId, staffId, addOns=100:2,101:1
func parseQuery(q url.Values) (*checkAvailability.Request, error) {
	packageID, err := strconv.ParseInt(q.Get("packageId"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("packageId: %w", err)
	}
	req := &checkAvailability.Request{PackageID: packageID}

	if req.Start, err = parseTime(q, "startTime"); err != nil {
		return nil, err
	}
	if req.End, err = parseTime(q, "endTime"); err != nil {
		return nil, err
	}
	if raw := q.Get("date"); raw != "" {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, fmt.Errorf("date: %w", err)
		}
		req.Date = &date
	}
	if req.LocationID, err = parseID(q, "locationId"); err != nil {
		return nil, err
	}
	if req.StaffID, err = parseID(q, "staffId"); err != nil {
		return nil, err
	}
	if req.AddOns, err = parseAddOns(q.Get("addOns")); err != nil {
		return nil, err
	}

	return req, nil
}

func parseTime(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &t, nil
}

func parseID(q url.Values, key string) (*int64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &id, nil
}

func parseAddOns(raw string) ([]scheduling.Selection, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	result := make([]scheduling.Selection, 0, len(parts))
	for _, part := range parts {
		idStr, qtyStr, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found {
			qtyStr = "1"
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("addOns %q: %w", part, err)
		}
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			return nil, fmt.Errorf("addOns %q: %w", part, err)
		}
		if qty <= 0 {
			return nil, errors.New("addOns: quantity must be positive")
		}
		result = append(result, scheduling.Selection{AddOnID: id, Quantity: qty})
	}

	return result, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkAvailability.Response) *AvailabilityResponse {
	windows := make([]WindowResponse, 0, len(resp.Windows))
	for _, w := range resp.Windows {
		staff := make([]StaffShortResponse, 0, len(w.Staff))
		for _, s := range w.Staff {
			staff = append(staff, StaffShortResponse{ID: s.ID, Name: s.Name})
		}
		windows = append(windows, WindowResponse{
			StartTime: w.Range.Start(),
			EndTime:   w.Range.End(),
			Available: len(staff) > 0,
			Reason:    string(w.Reason),
			Staff:     staff,
		})
	}

	return &AvailabilityResponse{
		PackageID:   resp.PackageID,
		LocationID:  resp.LocationID,
		TotalAmount: resp.TotalAmount,
		Windows:     windows,
	}
}
