package content

import (
	"encoding/json"
	"fmt"
	"time"
)

// Holiday is a single calendar entry. Date uses the MM-DD format so
// entries repeat every year.
type Holiday struct {
	Date     string `json:"date"`
	Name     string `json:"name"`
	Greeting string `json:"greeting"`
}

// Holidays is a loaded holiday calendar.
type Holidays struct {
	byDate map[string]Holiday
}

// LoadHolidays reads the holiday calendar from the given file, or from
// the embedded copy when path is empty.
func LoadHolidays(path string) (*Holidays, error) {
	data, err := readAsset(path, "assets/holidays.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read holidays: %w", err)
	}

	var parsed struct {
		Holidays []Holiday `json:"holidays"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse holidays: %w", err)
	}

	byDate := make(map[string]Holiday, len(parsed.Holidays))
	for _, h := range parsed.Holidays {
		if h.Date == "" {
			continue
		}
		byDate[h.Date] = h
	}

	return &Holidays{byDate: byDate}, nil
}

// Today returns the holiday matching the current date in the given
// location, if any.
func (h *Holidays) Today(loc *time.Location) (Holiday, bool) {
	return h.On(time.Now().In(loc))
}

// On returns the holiday matching the given date, if any.
func (h *Holidays) On(t time.Time) (Holiday, bool) {
	holiday, ok := h.byDate[t.Format("01-02")]
	return holiday, ok
}

// Len reports how many holidays are loaded.
func (h *Holidays) Len() int {
	return len(h.byDate)
}
