// Package announce decides which spoken announcements fire, with what
// content and in what order. Plan building is pure; the Scheduler drives
// plans against the clock.
package announce

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"taskvoice/internal/model"
)

// Spacing between grouped announcements, so utterances do not overlap.
const (
	morningGap = 3 * time.Second
	eveningGap = 2500 * time.Millisecond
)

// Due-now polling: every tick, tasks due within the tolerance of "now" get a
// one-off nudge. A task caught here may also appear in a morning or evening
// batch; that double announcement is accepted behavior.
const (
	DueNowInterval  = 30 * time.Second
	DueNowTolerance = 30 * time.Second
)

// Announcement is one utterance in a plan. Delay is relative to the previous
// announcement, not to the start of the plan.
type Announcement struct {
	Text  string
	Delay time.Duration
}

// group collects the descriptions of one announcement category. The label
// keeps the first-encountered spelling; the key is the lowercase grouping
// key.
type group struct {
	key   string
	label string
	descs []string
}

func (g group) text() string {
	return fmt.Sprintf("%s: %s", g.label, strings.Join(g.descs, ", "))
}

// groupByCategory buckets tasks by case-insensitive category, ordered by
// category rank with first-encountered order breaking ties.
func groupByCategory(tasks []model.Task) []group {
	index := make(map[string]int)
	var groups []group
	for _, t := range tasks {
		label := strings.TrimSpace(t.Category)
		if label == "" {
			label = model.DefaultCategory
		}
		key := strings.ToLower(label)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, group{key: key, label: label})
		}
		groups[i].descs = append(groups[i].descs, t.Description)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return Rank(groups[i].key) < Rank(groups[j].key)
	})
	return groups
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MorningPlan builds the 07:00 sequence: tasks due on the calendar day of
// now, grouped by category. An empty day yields a single message and no
// groups.
func MorningPlan(tasks []model.Task, now time.Time) []Announcement {
	var due []model.Task
	for _, t := range tasks {
		if !t.Completed && sameDay(t.DueDate, now) {
			due = append(due, t)
		}
	}

	if len(due) == 0 {
		return []Announcement{{Text: "Good morning. You have no tasks due today."}}
	}

	plan := []Announcement{{Text: "Good morning. Here are your tasks for today."}}
	for _, g := range groupByCategory(due) {
		plan = append(plan, Announcement{Text: g.text(), Delay: morningGap})
	}
	return plan
}

// EveningPlan builds the 21:00 sequence: a greeting, then tomorrow's tasks
// grouped by category, then overdue tasks (due strictly before now) grouped
// the same way. The overdue block starts only after the tomorrow block
// finishes. With nothing due tomorrow and nothing overdue, a single all-clear
// message replaces both headers.
func EveningPlan(tasks []model.Task, now time.Time) []Announcement {
	tomorrow := now.AddDate(0, 0, 1)

	var dueTomorrow, overdue []model.Task
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		if sameDay(t.DueDate, tomorrow) {
			dueTomorrow = append(dueTomorrow, t)
		}
		if t.DueDate.Before(now) {
			overdue = append(overdue, t)
		}
	}

	plan := []Announcement{{Text: "Good evening."}}

	if len(dueTomorrow) == 0 && len(overdue) == 0 {
		return append(plan, Announcement{
			Text:  "You are all caught up. Nothing due tomorrow and nothing overdue.",
			Delay: eveningGap,
		})
	}

	if len(dueTomorrow) > 0 {
		plan = append(plan, Announcement{Text: "Coming up tomorrow.", Delay: eveningGap})
		for _, g := range groupByCategory(dueTomorrow) {
			plan = append(plan, Announcement{Text: g.text(), Delay: eveningGap})
		}
	}

	if len(overdue) > 0 {
		plan = append(plan, Announcement{Text: "These tasks are overdue.", Delay: eveningGap})
		for _, g := range groupByCategory(overdue) {
			plan = append(plan, Announcement{Text: g.text(), Delay: eveningGap})
		}
	}

	return plan
}

// DueNow returns the not-completed tasks whose due time is within tolerance
// of now, inclusive on both ends.
func DueNow(tasks []model.Task, now time.Time, tolerance time.Duration) []model.Task {
	var due []model.Task
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		d := t.DueDate.Sub(now)
		if d < 0 {
			d = -d
		}
		if d <= tolerance {
			due = append(due, t)
		}
	}
	return due
}

// Summary feeds the announcements endpoint: the buckets the spoken plans use
// plus the rendered morning and evening text.
type Summary struct {
	TodayUncompleted []model.Task      `json:"todayUncompleted"`
	TomorrowTasks    []model.Task      `json:"tomorrowTasks"`
	TodayOverdue     []model.Task      `json:"todayOverdue"`
	Text             map[string]string `json:"announcementText"`
}

// BuildSummary computes announcement buckets and text for the given instant.
func BuildSummary(tasks []model.Task, now time.Time) Summary {
	tomorrow := now.AddDate(0, 0, 1)

	s := Summary{
		TodayUncompleted: []model.Task{},
		TomorrowTasks:    []model.Task{},
		TodayOverdue:     []model.Task{},
	}
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		if sameDay(t.DueDate, now) {
			s.TodayUncompleted = append(s.TodayUncompleted, t)
		}
		if sameDay(t.DueDate, tomorrow) {
			s.TomorrowTasks = append(s.TomorrowTasks, t)
		}
		if t.DueDate.Before(now) {
			s.TodayOverdue = append(s.TodayOverdue, t)
		}
	}

	sortByDue := func(tasks []model.Task) {
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].DueDate.Before(tasks[j].DueDate)
		})
	}
	sortByDue(s.TodayUncompleted)
	sortByDue(s.TomorrowTasks)
	sortByDue(s.TodayOverdue)

	s.Text = map[string]string{
		"morning": renderPlan(MorningPlan(tasks, now)),
		"evening": renderPlan(EveningPlan(tasks, now)),
	}
	return s
}

func renderPlan(plan []Announcement) string {
	parts := make([]string, 0, len(plan))
	for _, a := range plan {
		parts = append(parts, a.Text)
	}
	return strings.Join(parts, " ")
}
