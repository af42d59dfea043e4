package service

import (
	"context"
	"fmt"
	"time"

	"github.com/maheshrc27/astraboltz/internal/models"
	"github.com/maheshrc27/astraboltz/internal/repository"
	"github.com/maheshrc27/astraboltz/internal/transfer"
	"github.com/maheshrc27/astraboltz/pkg/apperrors"
)

const (
	DateKeyLayout = "2006-01-02"
	calendarCells = 42
	postsPerCell  = 2
)

var weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Month identifies a calendar month independent of any day within it.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) First(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

func (m Month) Next() Month {
	return MonthOf(time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC))
}

func (m Month) Prev() Month {
	return MonthOf(time.Date(m.Year, m.Month-1, 1, 0, 0, 0, 0, time.UTC))
}

type CalendarDay struct {
	Date     time.Time
	InMonth  bool
	IsToday  bool
	Posts    []models.Post
	Overflow int
}

type Calendar struct {
	Month       Month
	Days        []CalendarDay
	PostsByDate map[string][]models.Post
}

// DateKey is the day a post is filed under in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateKeyLayout)
}

// BuildCalendar lays out a six-week grid starting on the Monday on or before
// the 1st of month. Each day shows at most two posts and counts the rest.
func BuildCalendar(posts []models.Post, month Month, today time.Time, loc *time.Location) Calendar {
	if loc == nil {
		loc = time.Local
	}

	byDate := make(map[string][]models.Post)
	for _, p := range posts {
		key := DateKey(p.ScheduledAt, loc)
		byDate[key] = append(byDate[key], p)
	}

	first := month.First(loc)
	offset := int(first.Weekday()) - 1
	if first.Weekday() == time.Sunday {
		offset = 6
	}

	todayKey := DateKey(today, loc)
	days := make([]CalendarDay, 0, calendarCells)
	for i := 0; i < calendarCells; i++ {
		date := time.Date(first.Year(), first.Month(), first.Day()-offset+i, 0, 0, 0, 0, loc)
		key := date.Format(DateKeyLayout)

		dayPosts := byDate[key]
		shown := dayPosts
		if len(shown) > postsPerCell {
			shown = shown[:postsPerCell]
		}

		days = append(days, CalendarDay{
			Date:     date,
			InMonth:  date.Month() == month.Month && date.Year() == month.Year,
			IsToday:  key == todayKey,
			Posts:    shown,
			Overflow: len(dayPosts) - len(shown),
		})
	}

	return Calendar{Month: month, Days: days, PostsByDate: byDate}
}

type CalendarService interface {
	View(ctx context.Context, year, month int) (*transfer.CalendarResponse, error)
	Current(ctx context.Context) *transfer.CalendarResponse
}

type calendarService struct {
	pr    repository.PostRepository
	clock func() time.Time
	loc   *time.Location
}

func NewCalendarService(pr repository.PostRepository, clock func() time.Time, loc *time.Location) CalendarService {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &calendarService{pr: pr, clock: clock, loc: loc}
}

func (s *calendarService) View(ctx context.Context, year, month int) (*transfer.CalendarResponse, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid month %d.", month))
	}
	return s.render(ctx, Month{Year: year, Month: time.Month(month)}), nil
}

func (s *calendarService) Current(ctx context.Context) *transfer.CalendarResponse {
	return s.render(ctx, MonthOf(s.clock().In(s.loc)))
}

func (s *calendarService) render(ctx context.Context, month Month) *transfer.CalendarResponse {
	cal := BuildCalendar(s.pr.List(ctx), month, s.clock(), s.loc)

	cells := make([]transfer.CalendarCell, 0, len(cal.Days))
	for _, d := range cal.Days {
		posts := d.Posts
		if posts == nil {
			posts = []models.Post{}
		}
		cells = append(cells, transfer.CalendarCell{
			Date:     d.Date.Format(DateKeyLayout),
			Day:      d.Date.Day(),
			InMonth:  d.InMonth,
			IsToday:  d.IsToday,
			Posts:    posts,
			Overflow: d.Overflow,
		})
	}

	prev, next := month.Prev(), month.Next()
	return &transfer.CalendarResponse{
		Year:     month.Year,
		Month:    int(month.Month),
		Title:    fmt.Sprintf("%s %d", month.Month, month.Year),
		Weekdays: weekdayLabels,
		Cells:    cells,
		Previous: transfer.MonthRef{Year: prev.Year, Month: int(prev.Month)},
		Next:     transfer.MonthRef{Year: next.Year, Month: int(next.Month)},
	}
}
