package dashboard

import (
	"time"

	"gorm.io/gorm"

	"crowdqr/internal/models"
)

// Tunables the rest of the package reads. The active window mirrors the
// dashboard's definition of a "currently present" audience member; the
// tie-break on equal vote counts is creation time ascending, so earlier
// requests win.
const (
	DefaultActiveWindow = 15 * time.Minute
	DefaultTopCount     = 10
)

// Service runs the read-only aggregation queries behind the dashboard and
// report endpoints. It never mutates the store.
type Service struct {
	db           *gorm.DB
	activeWindow time.Duration
}

func New(db *gorm.DB, activeWindow time.Duration) *Service {
	if activeWindow <= 0 {
		activeWindow = DefaultActiveWindow
	}
	return &Service{db: db, activeWindow: activeWindow}
}

// RequestView is a request enriched with its live vote count and the
// requester's display name, the shape every list endpoint returns.
type RequestView struct {
	ID         uint      `json:"id"`
	EventID    uint      `json:"eventId"`
	UserID     uint      `json:"userId"`
	Requester  string    `json:"requester"`
	SongName   string    `json:"songName"`
	ArtistName string    `json:"artistName"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	VoteCount  int64     `json:"voteCount"`
}

type EventSummary struct {
	EventID     uint          `json:"eventId"`
	EventName   string        `json:"eventName"`
	Slug        string        `json:"slug"`
	Pending     []RequestView `json:"pending"`
	Approved    []RequestView `json:"approved"`
	Rejected    []RequestView `json:"rejected"`
	TotalVotes  int64         `json:"totalVotes"`
	ActiveUsers int64         `json:"activeUsers"`
}

// EventStats is one row of the DJ's per-event breakdown.
type EventStats struct {
	EventID      uint   `json:"eventId"`
	EventName    string `json:"eventName"`
	IsActive     bool   `json:"isActive"`
	Total        int64  `json:"totalRequests"`
	Pending      int64  `json:"pendingRequests"`
	Approved     int64  `json:"approvedRequests"`
	Rejected     int64  `json:"rejectedRequests"`
	TotalVotes   int64  `json:"totalVotes"`
	Participants int64  `json:"participants"`
}

type Analytics struct {
	TotalEvents      int64        `json:"totalEvents"`
	TotalRequests    int64        `json:"totalRequests"`
	TotalVotes       int64        `json:"totalVotes"`
	MostPopularEvent *EventStats  `json:"mostPopularEvent,omitempty"`
	HighestVoteTotal int64        `json:"highestVoteTotal"`
	Events           []EventStats `json:"events"`
}

func (s *Service) eventExists(eventID uint) error {
	var event models.Event
	return s.db.Select("id").First(&event, eventID).Error
}

// requestViews is the shared base query: requests joined against their
// votes and requester, grouped per request.
func (s *Service) requestViews(eventID uint) *gorm.DB {
	return s.db.Model(&models.Request{}).
		Select(`requests.id, requests.event_id, requests.user_id, users.username AS requester,
			requests.song_name, requests.artist_name, requests.status, requests.created_at,
			COUNT(votes.id) AS vote_count`).
		Joins("JOIN users ON users.id = requests.user_id").
		Joins("LEFT JOIN votes ON votes.request_id = requests.id").
		Where("requests.event_id = ?", eventID).
		Group("requests.id, users.username")
}

// RequestsForEvent returns every request for the event with vote counts
// attached, newest first. Unknown events yield gorm.ErrRecordNotFound.
func (s *Service) RequestsForEvent(eventID uint) ([]RequestView, error) {
	if err := s.eventExists(eventID); err != nil {
		return nil, err
	}

	var views []RequestView
	err := s.requestViews(eventID).
		Order("requests.created_at DESC").
		Scan(&views).Error
	return views, err
}

// TopRequests returns the most-voted requests in one status. Ties break
// by earlier creation time. status defaults to Pending, count to 10.
func (s *Service) TopRequests(eventID uint, status string, count int) ([]RequestView, error) {
	if err := s.eventExists(eventID); err != nil {
		return nil, err
	}
	if status == "" {
		status = models.StatusPending
	}
	if count <= 0 {
		count = DefaultTopCount
	}

	var views []RequestView
	err := s.requestViews(eventID).
		Where("requests.status = ?", status).
		Order("vote_count DESC, requests.created_at ASC").
		Limit(count).
		Scan(&views).Error
	return views, err
}

// EventSummary partitions the event's requests by status (pending sorted
// by votes), sums all votes, and counts the sessions seen within the
// active window.
func (s *Service) EventSummary(eventID uint) (*EventSummary, error) {
	var event models.Event
	if err := s.db.First(&event, eventID).Error; err != nil {
		return nil, err
	}

	var views []RequestView
	err := s.requestViews(eventID).
		Order("vote_count DESC, requests.created_at ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}

	summary := &EventSummary{
		EventID:   event.ID,
		EventName: event.Name,
		Slug:      event.Slug,
		Pending:   []RequestView{},
		Approved:  []RequestView{},
		Rejected:  []RequestView{},
	}
	for _, v := range views {
		summary.TotalVotes += v.VoteCount
		switch v.Status {
		case models.StatusApproved:
			summary.Approved = append(summary.Approved, v)
		case models.StatusRejected:
			summary.Rejected = append(summary.Rejected, v)
		default:
			summary.Pending = append(summary.Pending, v)
		}
	}

	cutoff := time.Now().Add(-s.activeWindow)
	err = s.db.Model(&models.Session{}).
		Where("event_id = ? AND last_seen >= ?", eventID, cutoff).
		Count(&summary.ActiveUsers).Error
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// DJEventStats returns one stats row per event the DJ hosts.
func (s *Service) DJEventStats(djUserID uint) ([]EventStats, error) {
	var user models.User
	if err := s.db.First(&user, djUserID).Error; err != nil {
		return nil, err
	}

	var events []models.Event
	if err := s.db.Where("dj_user_id = ?", djUserID).Order("created_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}

	stats := make([]EventStats, 0, len(events))
	for _, ev := range events {
		row := EventStats{EventID: ev.ID, EventName: ev.Name, IsActive: ev.IsActive}

		base := s.db.Model(&models.Request{}).Where("event_id = ?", ev.ID)
		if err := base.Session(&gorm.Session{}).Count(&row.Total).Error; err != nil {
			return nil, err
		}
		base.Session(&gorm.Session{}).Where("status = ?", models.StatusPending).Count(&row.Pending)
		base.Session(&gorm.Session{}).Where("status = ?", models.StatusApproved).Count(&row.Approved)
		base.Session(&gorm.Session{}).Where("status = ?", models.StatusRejected).Count(&row.Rejected)

		s.db.Model(&models.Vote{}).
			Joins("JOIN requests ON requests.id = votes.request_id").
			Where("requests.event_id = ?", ev.ID).
			Count(&row.TotalVotes)

		s.db.Model(&models.Session{}).
			Where("event_id = ?", ev.ID).
			Distinct("user_id").
			Count(&row.Participants)

		stats = append(stats, row)
	}
	return stats, nil
}

// DJAnalytics rolls the per-event stats up into an overall summary:
// most popular event by request count, and the highest per-event vote total.
func (s *Service) DJAnalytics(djUserID uint) (*Analytics, error) {
	stats, err := s.DJEventStats(djUserID)
	if err != nil {
		return nil, err
	}

	a := &Analytics{TotalEvents: int64(len(stats)), Events: stats}
	for i := range stats {
		a.TotalRequests += stats[i].Total
		a.TotalVotes += stats[i].TotalVotes
		if a.MostPopularEvent == nil || stats[i].Total > a.MostPopularEvent.Total {
			a.MostPopularEvent = &stats[i]
		}
		if stats[i].TotalVotes > a.HighestVoteTotal {
			a.HighestVoteTotal = stats[i].TotalVotes
		}
	}
	return a, nil
}

// VoteCount returns the current number of votes on one request; the vote
// handlers use it to stamp broadcasts with the fresh total.
func (s *Service) VoteCount(requestID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Vote{}).Where("request_id = ?", requestID).Count(&count).Error
	return count, err
}
