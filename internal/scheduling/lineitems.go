package scheduling

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
)

// Selection is one requested add-on.
type Selection struct {
	AddOnID  int64
	Quantity int
}

// SelectionIDs returns the distinct add-on ids of selections.
func SelectionIDs(selections []Selection) []int64 {
	seen := make(map[int64]struct{}, len(selections))
	ids := make([]int64, 0, len(selections))
	for _, s := range selections {
		if _, ok := seen[s.AddOnID]; ok {
			continue
		}
		seen[s.AddOnID] = struct{}{}
		ids = append(ids, s.AddOnID)
	}
	return ids
}

// AttachLineItems resolves selections against the catalog and snapshots each
// add-on's current price and duration. The whole batch is rejected on the
// first invalid selection; no partial result is returned.
func AttachLineItems(selections []Selection, catalog map[int64]*domain.AddOn) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, 0, len(selections))
	seen := make(map[int64]struct{}, len(selections))

	for _, sel := range selections {
		if sel.Quantity < 1 || sel.Quantity > domain.MaxAddOnQuantity {
			return nil, &domain.InvalidAddOnError{AddOnID: sel.AddOnID, Reason: domain.AddOnInvalidQuantity}
		}
		if _, dup := seen[sel.AddOnID]; dup {
			return nil, &domain.InvalidAddOnError{AddOnID: sel.AddOnID, Reason: domain.AddOnDuplicate}
		}
		seen[sel.AddOnID] = struct{}{}

		addOn, ok := catalog[sel.AddOnID]
		if !ok || addOn == nil {
			return nil, &domain.InvalidAddOnError{AddOnID: sel.AddOnID, Reason: domain.AddOnUnknown}
		}
		if !addOn.IsActive {
			return nil, &domain.InvalidAddOnError{AddOnID: sel.AddOnID, Reason: domain.AddOnInactive}
		}

		items = append(items, domain.LineItem{
			AddOnID:         addOn.ID,
			Name:            addOn.Name,
			Quantity:        sel.Quantity,
			UnitPrice:       addOn.Price,
			DurationMinutes: addOn.ExtraMinutes(),
		})
	}

	return items, nil
}

// TotalAmount is the package price plus every line item.
func TotalAmount(pkg *domain.Package, items []domain.LineItem) decimal.Decimal {
	return pkg.Price.Add(domain.ItemsTotal(items))
}

// CheckTotal compares a caller-provided total with the computed one.
// A nil provided total is accepted.
func CheckTotal(provided *decimal.Decimal, computed decimal.Decimal) error {
	if provided == nil {
		return nil
	}
	if !provided.Equal(computed) {
		return &domain.ValidationError{Field: "totalAmount", Reason: domain.ReasonMismatch}
	}
	return nil
}
