package services

import (
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/schedule"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct{}

// NewReportingService creates a new ReportingService instance
func NewReportingService() ReportingService {
	return &reportingServiceImpl{}
}

// Summarize counts items by kind and status and describes the schedule
func (r *reportingServiceImpl) Summarize(snap domain.Snapshot, now time.Time) *Summary {
	summary := &Summary{
		Tasks:         KindSummary{ByStatus: make(map[domain.Status]int)},
		Epics:         KindSummary{ByStatus: make(map[domain.Status]int)},
		Subtasks:      KindSummary{ByStatus: make(map[domain.Status]int)},
		HistoryLength: len(snap.History),
	}

	for _, task := range snap.Tasks {
		count(&summary.Tasks, task.Status)
		r.addPlanned(summary, task)
	}
	for _, sub := range snap.Subtasks {
		count(&summary.Subtasks, sub.Status)
		r.addPlanned(summary, sub.Task)
	}
	for _, epic := range snap.Epics {
		count(&summary.Epics, epic.Status)
	}

	for _, id := range snap.Prioritized {
		var item domain.Item
		if task, ok := snap.Tasks[id]; ok {
			item = task
		} else if sub, ok := snap.Subtasks[id]; ok {
			item = sub
		} else {
			continue
		}
		iv, ok := schedule.IntervalOf(item)
		if !ok || iv.Start.Before(now) {
			continue
		}
		ref := domain.RefOf(item)
		start := iv.Start
		summary.Next = &ref
		summary.NextStart = &start
		break
	}

	return summary
}

func (r *reportingServiceImpl) addPlanned(summary *Summary, task domain.Task) {
	summary.Planned += task.Duration
	if !task.IsDated() {
		summary.Unscheduled++
		return
	}
	summary.Scheduled++

	start, end := *task.StartTime, *task.EndTime()
	if summary.FirstStart == nil || start.Before(*summary.FirstStart) {
		summary.FirstStart = &start
	}
	if summary.LastEnd == nil || end.After(*summary.LastEnd) {
		summary.LastEnd = &end
	}
}

// Upcoming returns the first items of prioritized that start at or after now
func (r *reportingServiceImpl) Upcoming(prioritized []domain.Item, now time.Time, limit int) []domain.Item {
	var upcoming []domain.Item
	for _, item := range prioritized {
		if limit > 0 && len(upcoming) >= limit {
			break
		}
		iv, ok := schedule.IntervalOf(item)
		if !ok || iv.Start.Before(now) {
			continue
		}
		upcoming = append(upcoming, item)
	}
	return upcoming
}

// FreeSlots walks prioritized in start order and collects the uncovered
// parts of window
func (r *reportingServiceImpl) FreeSlots(prioritized []domain.Item, window schedule.Interval) []schedule.Interval {
	if !window.Start.Before(window.End) {
		return nil
	}

	var slots []schedule.Interval
	cursor := window.Start
	for _, item := range prioritized {
		iv, ok := schedule.IntervalOf(item)
		if !ok || !iv.End.After(cursor) {
			continue
		}
		if !iv.Start.Before(window.End) {
			break
		}
		if iv.Start.After(cursor) {
			slots = append(slots, schedule.Interval{Start: cursor, End: iv.Start})
		}
		cursor = iv.End
		if !cursor.Before(window.End) {
			return slots
		}
	}
	return append(slots, schedule.Interval{Start: cursor, End: window.End})
}

func count(ks *KindSummary, status domain.Status) {
	ks.Total++
	ks.ByStatus[status]++
}
