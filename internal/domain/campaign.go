package domain

import (
	"sort"
	"strings"
	"time"
)

const dailyCheckInTitle = "daily check-in"

const (
	RecordStatusCompleted = "COMPLETED"
	RecordStatusVerified  = "VERIFIED"
)

type ActivityRecord struct {
	ID        string
	Status    string
	CreatedAt time.Time
}

// Qualifies reports whether the record counts as a finished check-in.
func (r ActivityRecord) Qualifies() bool {
	switch strings.ToUpper(r.Status) {
	case RecordStatusCompleted, RecordStatusVerified:
		return true
	default:
		return false
	}
}

type Activity struct {
	ID        string
	Title     string
	CreatedAt time.Time
	Records   []ActivityRecord
}

func (a Activity) IsDailyCheckIn() bool {
	return strings.Contains(strings.ToLower(a.Title), dailyCheckInTitle)
}

// LatestRecord returns the record with the newest creation time.
func (a Activity) LatestRecord() (ActivityRecord, bool) {
	if len(a.Records) == 0 {
		return ActivityRecord{}, false
	}

	records := make([]ActivityRecord, len(a.Records))
	copy(records, a.Records)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records[0], true
}

type CampaignState struct {
	Activities []Activity
	Points     float64
}

type CampaignPartition struct {
	DailyCheckIn *Activity
	Claimed      []Activity
	Unclaimed    []Activity
}

// Partition splits activities into the daily check-in, claimed and unclaimed sets.
// The first activity whose title matches the check-in title wins.
func Partition(activities []Activity) CampaignPartition {
	var partition CampaignPartition
	for i := range activities {
		if activities[i].IsDailyCheckIn() {
			checkIn := activities[i]
			partition.DailyCheckIn = &checkIn
			break
		}
	}

	for _, activity := range activities {
		if partition.DailyCheckIn != nil && activity.ID == partition.DailyCheckIn.ID {
			continue
		}
		if len(activity.Records) > 0 {
			partition.Claimed = append(partition.Claimed, activity)
		} else {
			partition.Unclaimed = append(partition.Unclaimed, activity)
		}
	}

	return partition
}

func SameUTCDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
