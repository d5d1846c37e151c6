package billing

import (
	"time"

	"tutor-service/internal/model"
)

// NextCourse is the earliest scheduled future course of a client.
type NextCourse struct {
	ID       uint       `json:"id"`
	Title    string     `json:"title"`
	Subject  string     `json:"subject"`
	Date     *time.Time `json:"date"`
	Duration int        `json:"duration"`
}

// ClientSummary is the per-client dashboard aggregate. It is recomputed from
// the full course list on every read; nothing is persisted.
type ClientSummary struct {
	ID               uint        `json:"id"`
	FirstName        string      `json:"first_name"`
	LastName         string      `json:"last_name"`
	Email            string      `json:"email"`
	Phone            *string     `json:"phone"`
	TotalCourses     int         `json:"total_courses"`
	UpcomingCourses  int         `json:"upcoming_courses"`
	CompletedCourses int         `json:"completed_courses"`
	TotalRevenue     float64     `json:"total_revenue"`
	LastCourseDate   *time.Time  `json:"last_course_date"`
	NextCourse       *NextCourse `json:"next_course"`
	Subjects         []string    `json:"subjects"`
}

// SummarizeClients folds a professor's course list into one summary per
// distinct client. Courses must have their Client preloaded; courses without
// one are skipped. Clients appear in first-seen order of the input.
func SummarizeClients(courses []model.Course, now time.Time) []ClientSummary {
	byClient := make(map[uint]*ClientSummary)
	seenSubjects := make(map[uint]map[string]bool)
	order := make([]uint, 0)

	for _, course := range courses {
		if course.Client == nil {
			continue
		}
		clientID := course.Client.ID

		summary, ok := byClient[clientID]
		if !ok {
			summary = &ClientSummary{
				ID:        course.Client.ID,
				FirstName: course.Client.FirstName,
				LastName:  course.Client.LastName,
				Email:     course.Client.Email,
				Phone:     course.Client.Phone,
				Subjects:  make([]string, 0),
			}
			byClient[clientID] = summary
			seenSubjects[clientID] = make(map[string]bool)
			order = append(order, clientID)
		}

		summary.TotalCourses++

		if course.Status == model.CourseScheduled {
			summary.UpcomingCourses++

			// Earliest scheduled course in the future wins
			if course.Date != nil && !course.Date.Before(now) {
				if summary.NextCourse == nil || summary.NextCourse.Date == nil ||
					course.Date.Before(*summary.NextCourse.Date) {
					summary.NextCourse = &NextCourse{
						ID:       course.ID,
						Title:    course.Title,
						Subject:  course.Subject,
						Date:     course.Date,
						Duration: course.Duration,
					}
				}
			}
		}

		if course.Status == model.CourseCompleted {
			summary.CompletedCourses++
			summary.TotalRevenue += course.Price
		}

		if !seenSubjects[clientID][course.Subject] {
			seenSubjects[clientID][course.Subject] = true
			summary.Subjects = append(summary.Subjects, course.Subject)
		}

		if course.Date != nil {
			if summary.LastCourseDate == nil || course.Date.After(*summary.LastCourseDate) {
				summary.LastCourseDate = course.Date
			}
		}
	}

	summaries := make([]ClientSummary, 0, len(order))
	for _, id := range order {
		summaries = append(summaries, *byClient[id])
	}
	return summaries
}
