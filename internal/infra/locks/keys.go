package locks

import (
	"fmt"
	"sort"
	"time"
)

// LocationDayKey ключ блокировки дня локации
func LocationDayKey(locationID int64, day time.Time) string {
	return fmt.Sprintf("location:%d:%s", locationID, day.Format("2006-01-02"))
}

// StaffKey ключ блокировки сотрудника
func StaffKey(staffID int64) string {
	return fmt.Sprintf("staff:%d", staffID)
}

// normalize убирает дубликаты и сортирует ключи.
// Все реализации берут блокировки в одном порядке, поэтому взаимных блокировок нет.
func normalize(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
