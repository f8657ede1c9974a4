package reservation

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/pkg/psqlbuilder"
)

func insertLineItems(ctx context.Context, executor DBExecutor, reservationID int64, items []domain.LineItem) error {
	if len(items) == 0 {
		return nil
	}

	insertBuilder := psqlbuilder.Insert("reservation_line_items").
		Columns("reservation_id", "position", "add_on_id", "name", "quantity", "unit_price", "duration_minutes")

	for i, item := range items {
		insertBuilder = insertBuilder.Values(
			reservationID,
			i,
			item.AddOnID,
			item.Name,
			item.Quantity,
			item.UnitPrice,
			item.DurationMinutes,
		)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertLineItems - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return mapWriteError("insertLineItems - execute insert", err)
	}

	return nil
}

func replaceLineItems(ctx context.Context, executor DBExecutor, reservationID int64, items []domain.LineItem) error {
	query, args, err := psqlbuilder.Delete("reservation_line_items").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: replaceLineItems - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return mapWriteError("replaceLineItems - execute delete", err)
	}

	return insertLineItems(ctx, executor, reservationID, items)
}

func loadLineItems(ctx context.Context, executor DBExecutor, reservationID int64) ([]domain.LineItem, error) {
	query, args, err := psqlbuilder.Select("add_on_id", "name", "quantity", "unit_price", "duration_minutes").
		From("reservation_line_items").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadLineItems - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadLineItems - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.AddOnID, &item.Name, &item.Quantity, &item.UnitPrice, &item.DurationMinutes); err != nil {
			return nil, fmt.Errorf("%w: loadLineItems - scan item: %v", ErrScanRow, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadLineItems - iterate rows: %w", ErrExecQuery, err)
	}

	return items, nil
}

// insertTimeline дописывает записи и проставляет им ID
func insertTimeline(ctx context.Context, executor DBExecutor, reservationID int64, entries []domain.TimelineEntry) error {
	for i := range entries {
		metadata, err := domain.EncodeMetadata(entries[i].Metadata)
		if err != nil {
			return fmt.Errorf("%w: insertTimeline - encode metadata: %v", ErrBuildQuery, err)
		}

		query, args, err := psqlbuilder.Insert("reservation_timeline").
			Columns("reservation_id", "action", "description", "metadata", "created_at").
			Values(reservationID, entries[i].Action, entries[i].Description, string(metadata), entries[i].CreatedAt).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return fmt.Errorf("%w: insertTimeline - build insert query: %v", ErrBuildQuery, err)
		}

		if err := executor.QueryRowContext(ctx, query, args...).Scan(&entries[i].ID); err != nil {
			return mapWriteError("insertTimeline - execute insert", err)
		}
	}

	return nil
}

func loadTimeline(ctx context.Context, executor DBExecutor, reservationID int64) ([]domain.TimelineEntry, error) {
	query, args, err := psqlbuilder.Select("id", "action", "description", "metadata", "created_at").
		From("reservation_timeline").
		Where(squirrel.Eq{"reservation_id": reservationID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: loadTimeline - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: loadTimeline - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]domain.TimelineEntry, 0)
	for rows.Next() {
		var (
			entry    domain.TimelineEntry
			metadata []byte
		)
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.Description, &metadata, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: loadTimeline - scan entry: %v", ErrScanRow, err)
		}

		entry.Metadata, err = domain.DecodeMetadata(entry.Action, metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: loadTimeline - decode metadata of entry id=%d: %v", ErrScanRow, entry.ID, err)
		}

		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: loadTimeline - iterate rows: %w", ErrExecQuery, err)
	}

	return entries, nil
}
