package weather

import (
	"math"
	"time"
)

// MaxForecastDays bounds how many daily summaries are produced from one
// forecast payload.
const MaxForecastDays = 7

// SummarizeCurrent reduces a forecast sample list to a single "now" view by
// taking the first sample in the given order. An empty list yields a zeroed
// CurrentConditions carrying only the supplied city and country; this is the
// defined fallback, not an error.
func SummarizeCurrent(samples []Sample, city, country string) CurrentConditions {
	cc := CurrentConditions{
		City:    city,
		Country: country,
	}
	if len(samples) == 0 {
		return cc
	}

	first := samples[0]
	cc.TempC = first.TempC
	cc.FeelsLikeC = first.FeelsLikeC
	cc.MinTempC = first.MinTempC
	cc.MaxTempC = first.MaxTempC
	cc.Humidity = first.Humidity
	cc.Pressure = first.Pressure
	cc.Description = first.Description
	cc.Icon = first.Icon
	cc.Timestamp = first.Timestamp
	return cc
}

// SummarizeDaily groups samples by the calendar-date prefix of their
// local-time text and emits at most MaxForecastDays summaries.
//
// Groups are kept in first-seen order and are NOT sorted before truncation:
// if the upstream stream is ever non-chronological, the first seven distinct
// dates encountered win. Downstream rendering relies on this ordering, so it
// must not be replaced with a sort.
func SummarizeDaily(samples []Sample) []DailySummary {
	order := make([]string, 0, MaxForecastDays)
	groups := make(map[string][]Sample)

	for _, s := range samples {
		key := s.DateKey()
		if _, seen := groups[key]; !seen {
			if len(order) >= MaxForecastDays {
				continue
			}
			order = append(order, key)
		}
		groups[key] = append(groups[key], s)
	}

	summaries := make([]DailySummary, 0, len(order))
	for _, key := range order {
		summaries = append(summaries, summarizeDay(key, groups[key]))
	}
	return summaries
}

func summarizeDay(date string, samples []Sample) DailySummary {
	first := samples[0]
	summary := DailySummary{
		Date:        date,
		Weekday:     weekdayName(date),
		MaxTempC:    first.MaxTempC,
		MinTempC:    first.MinTempC,
		Description: first.Description,
		Icon:        first.Icon,
	}

	var humiditySum float64
	var maxPop float64

	for _, s := range samples {
		if s.MaxTempC > summary.MaxTempC {
			summary.MaxTempC = s.MaxTempC
		}
		if s.MinTempC < summary.MinTempC {
			summary.MinTempC = s.MinTempC
		}
		humiditySum += float64(s.Humidity)
		if s.Pop > maxPop {
			maxPop = s.Pop
		}
	}

	summary.Humidity = int(math.Round(humiditySum / float64(len(samples))))
	summary.ChanceOfRain = int(math.Round(maxPop * 100))
	return summary
}

// weekdayName formats the weekday for a YYYY-MM-DD date key. Unparseable
// keys degrade to "Unknown" rather than failing the whole summary.
func weekdayName(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "Unknown"
	}
	return t.Weekday().String()
}
