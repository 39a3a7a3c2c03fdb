package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"okulpazar/backend/config"
	"okulpazar/backend/internal/access"
	"okulpazar/backend/internal/dto"
	"okulpazar/backend/internal/model"
	"okulpazar/backend/internal/repository"
	pkgerrors "okulpazar/backend/pkg/errors"
)

// Report types
const (
	ReportTypeSummary          = "SUMMARY"
	ReportTypeStaffPerformance = "STAFF_PERFORMANCE"
)

const exportRowLimit = 5000

var ErrExportGenerateFail = errors.New("failed to generate export file")

// ReportService appointment statistics and exports
type ReportService interface {
	GetAppointmentStatistics(ctx context.Context, req *dto.StatisticsRequest, actor *access.Actor) (*dto.AppointmentStatistics, error)
	GenerateAppointmentReport(ctx context.Context, req *dto.StatisticsRequest, actor *access.Actor) (*dto.AppointmentReport, error)
	// ExportAppointmentReport renders the report and the appointment list as .xlsx
	ExportAppointmentReport(ctx context.Context, req *dto.StatisticsRequest, actor *access.Actor) (*bytes.Buffer, string, error)
	// ExportAppointmentICS renders one appointment as an iCalendar event
	ExportAppointmentICS(ctx context.Context, number string) ([]byte, string, error)
}

type reportService struct {
	cfg    *config.BookingConfig
	loc    *time.Location
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewReportService creates a ReportService
func NewReportService(cfg *config.BookingConfig, loc *time.Location, repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{cfg: cfg, loc: loc, repo: repo, logger: logger, now: time.Now}
}

// window is a resolved reporting request
type window struct {
	schoolIDs []string // nil = unrestricted
	from, to  time.Time
}

// ════════════════════════════════════════════════════════════
// Statistics
// ════════════════════════════════════════════════════════════

func (s *reportService) GetAppointmentStatistics(ctx context.Context, req *dto.StatisticsRequest, actor *access.Actor) (*dto.AppointmentStatistics, error) {
	w, err := s.resolve(ctx, req, actor)
	if err != nil {
		return nil, err
	}
	return s.statistics(ctx, w)
}

func (s *reportService) statistics(ctx context.Context, w *window) (*dto.AppointmentStatistics, error) {
	byStatus, err := s.repo.Appointment.CountByStatus(ctx, w.schoolIDs, w.from, w.to)
	if err != nil {
		s.logger.Error("count by status failed", zap.Error(err))
		return nil, err
	}
	byType, err := s.repo.Appointment.CountByType(ctx, w.schoolIDs, w.from, w.to)
	if err != nil {
		s.logger.Error("count by type failed", zap.Error(err))
		return nil, err
	}

	stats := &dto.AppointmentStatistics{ByType: make(map[string]int64, len(byType))}
	for _, row := range byStatus {
		stats.Total += row.Count
		switch row.Key {
		case model.AppointmentStatusPending:
			stats.Pending = row.Count
		case model.AppointmentStatusConfirmed:
			stats.Confirmed = row.Count
		case model.AppointmentStatusCompleted:
			stats.Completed = row.Count
		case model.AppointmentStatusCancelled:
			stats.Cancelled = row.Count
		case model.AppointmentStatusRescheduled:
			stats.Rescheduled = row.Count
		case model.AppointmentStatusNoShow:
			stats.NoShow = row.Count
		}
	}
	for _, row := range byType {
		stats.ByType[row.Key] = row.Count
	}

	stats.CompletionRate = percent(stats.Completed, stats.Total)
	stats.CancellationRate = percent(stats.Cancelled, stats.Total)
	stats.NoShowRate = percent(stats.NoShow, stats.Total)
	return stats, nil
}

// ════════════════════════════════════════════════════════════
// Report
// ════════════════════════════════════════════════════════════

func (s *reportService) GenerateAppointmentReport(ctx context.Context, req *dto.StatisticsRequest, actor *access.Actor) (*dto.AppointmentReport, error) {
	reportType := strings.ToUpper(strings.TrimSpace(req.ReportType))
	if reportType == "" {
		reportType = ReportTypeSummary
	}
	if reportType != ReportTypeSummary && reportType != ReportTypeStaffPerformance {
		return nil, pkgerrors.Businessf("Unsupported report type: %s", req.ReportType)
	}

	w, err := s.resolve(ctx, req, actor)
	if err != nil {
		return nil, err
	}

	report := &dto.AppointmentReport{
		ReportType:      reportType,
		DateFrom:        req.DateFrom,
		DateTo:          req.DateTo,
		Insights:        []string{},
		Recommendations: []string{},
	}
	generated := s.now()
	report.GeneratedAt = dto.FormatTime(&generated)

	switch reportType {
	case ReportTypeSummary:
		stats, err := s.statistics(ctx, w)
		if err != nil {
			return nil, err
		}
		report.Statistics = stats
		summaryNarrative(report, stats)

	case ReportTypeStaffPerformance:
		rows, err := s.repo.Appointment.StaffPerformance(ctx, w.schoolIDs, w.from, w.to)
		if err != nil {
			s.logger.Error("staff performance query failed", zap.Error(err))
			return nil, err
		}
		report.StaffPerformance = make([]dto.StaffPerformance, 0, len(rows))
		for _, r := range rows {
			report.StaffPerformance = append(report.StaffPerformance, dto.StaffPerformance{
				StaffUserID:    r.StaffUserID,
				StaffName:      r.StaffName,
				Total:          r.Total,
				Completed:      r.Completed,
				Cancelled:      r.Cancelled,
				NoShow:         r.NoShow,
				CompletionRate: percent(r.Completed, r.Total),
			})
		}
		staffNarrative(report)
	}

	if len(report.Recommendations) == 0 {
		report.Recommendations = append(report.Recommendations, "No action needed for this period")
	}
	return report, nil
}

func summaryNarrative(report *dto.AppointmentReport, st *dto.AppointmentStatistics) {
	if st.Total == 0 {
		report.Insights = append(report.Insights, "No appointments in the selected period")
		report.Recommendations = append(report.Recommendations, "Publish more availability slots to attract bookings")
		return
	}

	report.Insights = append(report.Insights, fmt.Sprintf("%d appointments in the selected period", st.Total))
	if top, n := topKey(st.ByType); top != "" {
		report.Insights = append(report.Insights, fmt.Sprintf("Most requested appointment type is %s (%d)", top, n))
	}
	if st.CompletionRate >= 80 {
		report.Insights = append(report.Insights, fmt.Sprintf("Completion rate is strong at %.1f%%", st.CompletionRate))
	}
	if st.CancellationRate > 20 {
		report.Insights = append(report.Insights, fmt.Sprintf("Cancellation rate is high at %.1f%%", st.CancellationRate))
		report.Recommendations = append(report.Recommendations, "Send reminders before appointments to reduce cancellations")
	}
	if st.NoShowRate > 10 {
		report.Recommendations = append(report.Recommendations, "Ask parents to confirm attendance one day before the appointment")
	}
	if st.Pending > st.Confirmed {
		report.Recommendations = append(report.Recommendations, "Review pending appointments, approvals are lagging behind requests")
	}
}

func staffNarrative(report *dto.AppointmentReport) {
	if len(report.StaffPerformance) == 0 {
		report.Insights = append(report.Insights, "No staff-assigned appointments in the selected period")
		return
	}

	best := report.StaffPerformance[0]
	for _, sp := range report.StaffPerformance[1:] {
		if sp.CompletionRate > best.CompletionRate {
			best = sp
		}
	}
	report.Insights = append(report.Insights,
		fmt.Sprintf("%s has the highest completion rate at %.1f%%", staffLabel(best), best.CompletionRate))

	for _, sp := range report.StaffPerformance {
		if sp.Total >= 5 && sp.CompletionRate < 50 {
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("Follow up with %s, completion rate is %.1f%%", staffLabel(sp), sp.CompletionRate))
		}
	}
}

// ════════════════════════════════════════════════════════════
// Excel export
// ════════════════════════════════════════════════════════════

func (s *reportService) ExportAppointmentReport(ctx context.Context, req *dto.StatisticsRequest, actor *access.Actor) (*bytes.Buffer, string, error) {
	report, err := s.GenerateAppointmentReport(ctx, &dto.StatisticsRequest{
		SchoolID: req.SchoolID, DateFrom: req.DateFrom, DateTo: req.DateTo, ReportType: ReportTypeSummary,
	}, actor)
	if err != nil {
		return nil, "", err
	}
	w, err := s.resolve(ctx, req, actor)
	if err != nil {
		return nil, "", err
	}

	list, _, err := s.repo.Appointment.Search(ctx, repository.AppointmentFilter{
		SchoolIDs: w.schoolIDs,
		DateFrom:  &w.from,
		DateTo:    &w.to,
		Size:      exportRowLimit,
		SortBy:    "appointment_date",
		SortDir:   "asc",
	})
	if err != nil {
		s.logger.Error("load appointments for export failed", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── summary sheet ──
	summary := "Summary"
	idx, _ := f.NewSheet(summary)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	f.SetColWidth(summary, "A", "A", 28)
	f.SetColWidth(summary, "B", "B", 60)

	f.SetCellValue(summary, "A1", fmt.Sprintf("Appointment report %s - %s", req.DateFrom, req.DateTo))
	f.MergeCell(summary, "A1", "B1")
	f.SetCellStyle(summary, "A1", "B1", headerStyle)

	st := report.Statistics
	rows := [][2]interface{}{
		{"Total", st.Total},
		{"Pending", st.Pending},
		{"Confirmed", st.Confirmed},
		{"Completed", st.Completed},
		{"Cancelled", st.Cancelled},
		{"Rescheduled", st.Rescheduled},
		{"No show", st.NoShow},
		{"Completion rate (%)", st.CompletionRate},
		{"Cancellation rate (%)", st.CancellationRate},
		{"No-show rate (%)", st.NoShowRate},
	}
	row := 3
	for _, r := range rows {
		f.SetCellValue(summary, cell("A", row), r[0])
		f.SetCellValue(summary, cell("B", row), r[1])
		row++
	}
	row++
	for _, text := range report.Insights {
		f.SetCellValue(summary, cell("A", row), "Insight")
		f.SetCellValue(summary, cell("B", row), text)
		row++
	}
	for _, text := range report.Recommendations {
		f.SetCellValue(summary, cell("A", row), "Recommendation")
		f.SetCellValue(summary, cell("B", row), text)
		row++
	}

	// ── appointment list ──
	sheet := "Appointments"
	f.NewSheet(sheet)
	headers := []string{"Number", "School", "Date", "Start", "End", "Type", "Status", "Parent", "Email", "Phone", "Student"}
	widths := []float64{16, 28, 12, 8, 8, 16, 14, 22, 28, 16, 22}
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(sheet, col, col, widths[i])
		f.SetCellValue(sheet, cell(col, 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)

	for i := range list {
		apt := &list[i]
		date := apt.AppointmentDate
		schoolName := ""
		if apt.School != nil {
			schoolName = apt.School.Name
		}
		values := []interface{}{
			apt.AppointmentNumber, schoolName, dto.FormatDate(&date), apt.StartTime, apt.EndTime,
			apt.AppointmentType, apt.Status, apt.ParentName, apt.ParentEmail, apt.ParentPhone, apt.StudentName,
		}
		for j, v := range values {
			f.SetCellValue(sheet, cell(colName(j), i+2), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write xlsx failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("appointments_%s_%s.xlsx", req.DateFrom, req.DateTo)
	return buf, filename, nil
}

// ════════════════════════════════════════════════════════════
// Calendar export
// ════════════════════════════════════════════════════════════

func (s *reportService) ExportAppointmentICS(ctx context.Context, number string) ([]byte, string, error) {
	apt, err := s.repo.Appointment.GetActiveByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.NotFoundf("Appointment not found with number: %s", number)
		}
		s.logger.Error("load appointment for ics failed", zap.String("number", number), zap.Error(err))
		return nil, "", err
	}

	start, err := combineDateClock(apt.AppointmentDate, apt.StartTime, s.loc)
	if err != nil {
		return nil, "", err
	}
	end, err := combineDateClock(apt.AppointmentDate, apt.EndTime, s.loc)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//okulpazar//appointments//TR")

	event := cal.AddEvent(apt.AppointmentNumber + "@okulpazar")
	event.SetDtStampTime(s.now().UTC())
	event.SetCreatedTime(apt.CreatedAt.UTC())
	event.SetStartAt(start.UTC())
	event.SetEndAt(end.UTC())

	summary := humanizeType(apt.AppointmentType)
	if apt.School != nil {
		summary += " - " + apt.School.Name
		event.SetLocation(apt.School.Name)
	}
	event.SetSummary(summary)
	event.SetDescription(fmt.Sprintf("Appointment number: %s\nStudent: %s", apt.AppointmentNumber, apt.StudentName))

	switch apt.Status {
	case model.AppointmentStatusCancelled, model.AppointmentStatusRescheduled:
		event.SetStatus(ics.ObjectStatusCancelled)
	case model.AppointmentStatusPending:
		event.SetStatus(ics.ObjectStatusTentative)
	default:
		event.SetStatus(ics.ObjectStatusConfirmed)
	}

	return []byte(cal.Serialize()), apt.AppointmentNumber + ".ics", nil
}

// ── helpers ──

// resolve validates the window and narrows it to schools the actor can read
func (s *reportService) resolve(ctx context.Context, req *dto.StatisticsRequest, actor *access.Actor) (*window, error) {
	if actor == nil || actor.IsParent() {
		return nil, ErrReadAppointmentsDenied
	}

	from, err := time.ParseInLocation(time.DateOnly, req.DateFrom, s.loc)
	if err != nil {
		return nil, pkgerrors.Validation(fmt.Sprintf("Invalid date: %s", req.DateFrom))
	}
	to, err := time.ParseInLocation(time.DateOnly, req.DateTo, s.loc)
	if err != nil {
		return nil, pkgerrors.Validation(fmt.Sprintf("Invalid date: %s", req.DateTo))
	}
	if to.Before(from) {
		return nil, pkgerrors.Validation("End date must not be before start date")
	}

	w := &window{from: from, to: to}
	if req.SchoolID != "" {
		school, err := s.repo.Institution.GetActiveSchool(ctx, req.SchoolID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, schoolNotFound(req.SchoolID)
			}
			return nil, err
		}
		if !access.Can(actor, access.SchoolScope(school), access.ReadAppointments) {
			return nil, ErrReadAppointmentsDenied
		}
		w.schoolIDs = []string{school.SchoolID}
		return w, nil
	}
	if !actor.IsSystem() {
		w.schoolIDs = append([]string{}, actor.SchoolIDs...)
	}
	return w, nil
}

// percent part/total as a percentage rounded to one decimal
func percent(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

func topKey(m map[string]int64) (string, int64) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var top string
	var n int64
	for _, k := range keys {
		if m[k] > n {
			top, n = k, m[k]
		}
	}
	return top, n
}

func staffLabel(sp dto.StaffPerformance) string {
	if sp.StaffName != "" {
		return sp.StaffName
	}
	return sp.StaffUserID
}

// humanizeType INFO_MEETING → "Info meeting"
func humanizeType(t string) string {
	if t == "" {
		return "Appointment"
	}
	s := strings.ToLower(strings.ReplaceAll(t, "_", " "))
	return strings.ToUpper(s[:1]) + s[1:]
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
