package matters

import (
	"sort"
	"time"
)

// Urgency buckets, most to least urgent.
const (
	BucketOverdue   = "OVERDUE"
	BucketDueToday  = "DUE_TODAY"
	BucketCritical  = "CRITICAL"
	BucketAttention = "ATTENTION"
	BucketNormal    = "NORMAL"
)

type Filter struct {
	LookaheadDays  int
	IncludeOverdue bool
	OnlyDetained   bool
	Statuses       []string
	DefenderID     string
	AreaOfLaw      string
}

type Summary struct {
	Total           int            `json:"total"`
	ByBucket        map[string]int `json:"byBucket"`
	Detained        int            `json:"detained"`
	DetainedOverdue int            `json:"detainedOverdue"`
}

// DaysRemaining is the whole-day distance from today to due, negative
// when the deadline has passed. Both arguments are truncated to dates.
func DaysRemaining(today, due time.Time) int {
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	return int(d.Sub(t).Hours() / 24)
}

func bucketFor(daysRemaining int) string {
	switch {
	case daysRemaining < 0:
		return BucketOverdue
	case daysRemaining == 0:
		return BucketDueToday
	case daysRemaining <= 2:
		return BucketCritical
	case daysRemaining <= 5:
		return BucketAttention
	default:
		return BucketNormal
	}
}

// Classify filters and buckets matters by deadline urgency. Matters
// without a due date are excluded; overdue matters are kept regardless
// of the lookahead window when IncludeOverdue is set. The result is
// sorted by due date ascending, detained matters first on equal dates,
// then case number for a stable order.
func Classify(today time.Time, input []Matter, filter Filter) []ClassifiedMatter {
	lookahead := filter.LookaheadDays
	if lookahead <= 0 {
		lookahead = 30
	}

	var out []ClassifiedMatter
	for _, m := range input {
		if m.DueDate == nil {
			continue
		}
		if filter.OnlyDetained && !m.Detained {
			continue
		}
		if filter.DefenderID != "" && m.AssignedDefenderID != filter.DefenderID {
			continue
		}
		if filter.AreaOfLaw != "" && m.AreaOfLaw != filter.AreaOfLaw {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, m.Status) {
			continue
		}

		remaining := DaysRemaining(today, *m.DueDate)
		if remaining < 0 && !filter.IncludeOverdue {
			continue
		}
		if remaining > lookahead {
			continue
		}

		out = append(out, ClassifiedMatter{
			Matter:        m,
			Bucket:        bucketFor(remaining),
			DaysRemaining: remaining,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := *out[i].DueDate, *out[j].DueDate
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		if out[i].Detained != out[j].Detained {
			return out[i].Detained
		}
		return out[i].CaseNumber < out[j].CaseNumber
	})
	return out
}

// Summarize counts a classified set per bucket and flags the worst
// case: detained defendants whose deadline has already passed.
func Summarize(classified []ClassifiedMatter) Summary {
	s := Summary{
		Total:    len(classified),
		ByBucket: map[string]int{},
	}
	for _, m := range classified {
		s.ByBucket[m.Bucket]++
		if m.Detained {
			s.Detained++
			if m.Bucket == BucketOverdue {
				s.DetainedOverdue++
			}
		}
	}
	return s
}

func containsStatus(statuses []string, status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
