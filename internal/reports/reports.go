package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"crowdqr/internal/dashboard"
	"crowdqr/internal/models"
)

// Service builds the DJ-facing report views on top of the dashboard
// aggregations. Read-only, like everything else on this side.
type Service struct {
	db   *gorm.DB
	dash *dashboard.Service
}

func New(db *gorm.DB, dash *dashboard.Service) *Service {
	return &Service{db: db, dash: dash}
}

// HourBucket is one hour of request activity.
type HourBucket struct {
	Hour     time.Time `json:"hour"`
	Requests int64     `json:"requests"`
}

// EventPerformance is the single-event report: the stats row plus
// approval rate, hourly request volume and the crowd favourite.
type EventPerformance struct {
	dashboard.EventStats
	ApprovalRate    float64                `json:"approvalRate"`
	RequestsPerHour []HourBucket           `json:"requestsPerHour"`
	TopRequest      *dashboard.RequestView `json:"topRequest,omitempty"`
}

func (s *Service) EventPerformance(eventID uint) (*EventPerformance, error) {
	var event models.Event
	if err := s.db.First(&event, eventID).Error; err != nil {
		return nil, err
	}

	stats, err := s.dash.DJEventStats(event.DJUserID)
	if err != nil {
		return nil, err
	}

	perf := &EventPerformance{}
	for _, row := range stats {
		if row.EventID == eventID {
			perf.EventStats = row
			break
		}
	}

	decided := perf.Approved + perf.Rejected
	if decided > 0 {
		perf.ApprovalRate = float64(perf.Approved) / float64(decided)
	}

	perf.RequestsPerHour, err = s.requestsPerHour(eventID)
	if err != nil {
		return nil, err
	}

	top, err := s.dash.TopRequests(eventID, "", 1)
	if err != nil {
		return nil, err
	}
	if len(top) > 0 {
		perf.TopRequest = &top[0]
	}

	return perf, nil
}

// requestsPerHour buckets the event's requests by the hour they were
// filed. Bucketing happens in Go so the query stays portable across the
// postgres and sqlite drivers.
func (s *Service) requestsPerHour(eventID uint) ([]HourBucket, error) {
	var stamps []time.Time
	err := s.db.Model(&models.Request{}).
		Where("event_id = ?", eventID).
		Pluck("created_at", &stamps).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[time.Time]int64)
	for _, ts := range stamps {
		counts[ts.UTC().Truncate(time.Hour)]++
	}

	buckets := make([]HourBucket, 0, len(counts))
	for hour, n := range counts {
		buckets = append(buckets, HourBucket{Hour: hour, Requests: n})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Hour.Before(buckets[j].Hour) })
	return buckets, nil
}

// Analytics returns the DJ's overall rollup.
func (s *Service) Analytics(djUserID uint) (*dashboard.Analytics, error) {
	return s.dash.DJAnalytics(djUserID)
}

// ExportAnalytics renders the DJ's analytics as an xlsx workbook: an
// overview sheet plus one sheet per event listing its requests.
func (s *Service) ExportAnalytics(djUserID uint) (*excelize.File, error) {
	analytics, err := s.dash.DJAnalytics(djUserID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	overview := "Overview"
	f.SetSheetName("Sheet1", overview)

	headers := []string{"Event", "Requests", "Pending", "Approved", "Rejected", "Votes", "Participants"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(overview, cell, h)
	}
	for idx, ev := range analytics.Events {
		row := idx + 2
		f.SetCellValue(overview, fmt.Sprintf("A%d", row), ev.EventName)
		f.SetCellValue(overview, fmt.Sprintf("B%d", row), ev.Total)
		f.SetCellValue(overview, fmt.Sprintf("C%d", row), ev.Pending)
		f.SetCellValue(overview, fmt.Sprintf("D%d", row), ev.Approved)
		f.SetCellValue(overview, fmt.Sprintf("E%d", row), ev.Rejected)
		f.SetCellValue(overview, fmt.Sprintf("F%d", row), ev.TotalVotes)
		f.SetCellValue(overview, fmt.Sprintf("G%d", row), ev.Participants)
	}

	for _, ev := range analytics.Events {
		sheet := fmt.Sprintf("Event %d", ev.EventID)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}

		reqHeaders := []string{"Song", "Artist", "Requester", "Status", "Votes"}
		for i, h := range reqHeaders {
			cell := fmt.Sprintf("%c1", 'A'+i)
			f.SetCellValue(sheet, cell, h)
		}

		views, err := s.dash.RequestsForEvent(ev.EventID)
		if err != nil {
			return nil, err
		}
		for idx, v := range views {
			row := idx + 2
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), v.SongName)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), v.ArtistName)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), v.Requester)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), v.Status)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), v.VoteCount)
		}
	}

	return f, nil
}
