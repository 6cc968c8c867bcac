// Package stats aggregates usage totals over the full transcription log.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/runnerr0/flowlog/internal/storage"
	"go.uber.org/zap"
)

// Granularity is the bucket size for activity counts.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity validates a user-supplied period name.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Day, Week, Month:
		return g, nil
	}
	return "", storage.NewError(storage.KindInvalidArgument, "parse period",
		fmt.Errorf("unknown period %q (use day, week or month)", s))
}

// Label formats t as the period it belongs to: 2006-01-02 for days,
// ISO 2006-W01 for weeks and 2006-01 for months.
func (g Granularity) Label(t time.Time) string {
	switch g {
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Month:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// AppUsage holds per-application totals.
type AppUsage struct {
	Name            string
	Count           int
	Words           int64
	DurationSeconds float64
}

// PeriodCount is the number of transcriptions in one period.
type PeriodCount struct {
	Label string
	Count int
}

// Summary is the aggregate computed over every record.
type Summary struct {
	Granularity         Granularity
	TotalTranscriptions int
	TotalWords          int64
	TotalDuration       float64
	AverageWPM          float64
	// TopApps is ordered by count descending, then name ascending.
	TopApps []AppUsage
	// ActivityByPeriod maps a period label to its record count. Records
	// whose timestamp cannot be parsed are left out here but still count
	// toward the totals.
	ActivityByPeriod map[string]int
	Unparsed         int
}

// Aggregator computes a Summary for a fixed granularity and time zone.
type Aggregator struct {
	Granularity Granularity
	Location    *time.Location
	Logger      *zap.Logger
}

// Compute aggregates records in a single pass.
func (a Aggregator) Compute(records []storage.Transcription) Summary {
	g := a.Granularity
	if g == "" {
		g = Day
	}
	loc := a.Location
	if loc == nil {
		loc = time.Local
	}
	log := a.Logger
	if log == nil {
		log = zap.NewNop()
	}

	sum := Summary{
		Granularity:      g,
		ActivityByPeriod: make(map[string]int),
	}
	apps := make(map[string]*AppUsage)

	for _, r := range records {
		sum.TotalTranscriptions++
		sum.TotalWords += r.Words()
		sum.TotalDuration += r.Duration()

		if r.Application != nil {
			u, ok := apps[*r.Application]
			if !ok {
				u = &AppUsage{Name: *r.Application}
				apps[*r.Application] = u
			}
			u.Count++
			u.Words += r.Words()
			u.DurationSeconds += r.Duration()
		}

		ts, err := storage.ParseTimestampIn(r.Timestamp, loc)
		if err != nil {
			sum.Unparsed++
			continue
		}
		sum.ActivityByPeriod[g.Label(ts.In(loc))]++
	}

	if sum.TotalDuration > 0 {
		sum.AverageWPM = float64(sum.TotalWords) / sum.TotalDuration * 60
	}

	sum.TopApps = make([]AppUsage, 0, len(apps))
	for _, u := range apps {
		sum.TopApps = append(sum.TopApps, *u)
	}
	sort.Slice(sum.TopApps, func(i, j int) bool {
		if sum.TopApps[i].Count != sum.TopApps[j].Count {
			return sum.TopApps[i].Count > sum.TopApps[j].Count
		}
		return sum.TopApps[i].Name < sum.TopApps[j].Name
	})

	if sum.Unparsed > 0 {
		log.Debug("records excluded from period counts", zap.Int("unparsed", sum.Unparsed))
	}
	return sum
}

// Compute aggregates records by day/week/month in loc.
func Compute(records []storage.Transcription, g Granularity, loc *time.Location) Summary {
	return Aggregator{Granularity: g, Location: loc}.Compute(records)
}

// TopApplications returns at most n entries of TopApps. n <= 0 returns all.
func (s Summary) TopApplications(n int) []AppUsage {
	if n <= 0 || n > len(s.TopApps) {
		n = len(s.TopApps)
	}
	return s.TopApps[:n]
}

// RecentPeriods returns at most n periods sorted by label descending, so
// the most recent period comes first. n <= 0 returns all.
func (s Summary) RecentPeriods(n int) []PeriodCount {
	periods := make([]PeriodCount, 0, len(s.ActivityByPeriod))
	for label, count := range s.ActivityByPeriod {
		periods = append(periods, PeriodCount{Label: label, Count: count})
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Label > periods[j].Label
	})
	if n > 0 && n < len(periods) {
		periods = periods[:n]
	}
	return periods
}
