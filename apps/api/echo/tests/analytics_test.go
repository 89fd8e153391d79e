package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/darasahq/darasa/core/analytics"
	"github.com/darasahq/darasa/core/submission"
	"github.com/darasahq/darasa/core/user"
)

func getReport(t *testing.T, app http.Handler, token string) analytics.Report {
	req, rec := newAuthRequest(http.MethodGet, "/v1/analytics", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/analytics failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var report analytics.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	return report
}

func statusCount(report analytics.Report, label string) int {
	for _, sc := range report.SubmissionsByStatus {
		if sc.Label == label {
			return sc.Count
		}
	}
	return -1
}

func Test_analyticsApi_report(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	otherStudent := createUser(t, "King", "king@test.cd", "", user.RoleStudent, true)
	prof := createUser(t, "Prof Awe", "awe@test.cd", "", user.RoleProfessor, true)
	admin := createUser(t, "Admin", "admin@test.cd", "", user.RoleAdmin, true)

	subj := createSubject(t, "Mathematics", "#3B82F6")
	crs := createCourse(t, "Algebra", prof.ID, subj.ID, time.Now().Add(24*time.Hour))

	createSubmission(t, crs.ID, student.ID, submission.StatusGraded, fPtr(16))
	createSubmission(t, crs.ID, student.ID, submission.StatusGraded, fPtr(12))
	createSubmission(t, crs.ID, otherStudent.ID, submission.StatusSubmitted, nil)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/analytics")
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("admin sees everything", func(t *testing.T) {
		report := getReport(t, app, getToken(t, admin))

		if report.TotalStudents != 2 {
			t.Errorf("TotalStudents = %d; want 2", report.TotalStudents)
		}
		if report.TotalProfessors != 1 {
			t.Errorf("TotalProfessors = %d; want 1", report.TotalProfessors)
		}
		if report.TotalCourses != 1 {
			t.Errorf("TotalCourses = %d; want 1", report.TotalCourses)
		}
		if report.TotalSubmissions != 3 {
			t.Errorf("TotalSubmissions = %d; want 3", report.TotalSubmissions)
		}
		if report.AverageGrade != 14 {
			t.Errorf("AverageGrade = %v; want 14", report.AverageGrade)
		}
		if got := statusCount(report, "Graded"); got != 2 {
			t.Errorf("Graded count = %d; want 2", got)
		}
		if got := statusCount(report, "Submitted"); got != 1 {
			t.Errorf("Submitted count = %d; want 1", got)
		}
		if got := statusCount(report, "Pending"); got != 0 {
			t.Errorf("Pending count = %d; want 0", got)
		}
		// deadline is tomorrow with few submissions: the course is at risk
		if len(report.RiskCourses) != 1 || report.RiskCourses[0].ID != crs.ID {
			t.Errorf("RiskCourses = %+v; want [%s]", report.RiskCourses, crs.ID)
		}
		if len(report.ProgressBySubject) != 1 || report.ProgressBySubject[0].Name != "Mathematics" {
			t.Errorf("ProgressBySubject = %+v; want Mathematics only", report.ProgressBySubject)
		}
	})

	t.Run("students see their own work", func(t *testing.T) {
		report := getReport(t, app, getToken(t, student))

		if report.TotalSubmissions != 2 {
			t.Errorf("TotalSubmissions = %d; want 2", report.TotalSubmissions)
		}
		if report.AverageGrade != 14 {
			t.Errorf("AverageGrade = %v; want 14", report.AverageGrade)
		}
		if got := statusCount(report, "Submitted"); got != 0 {
			t.Errorf("Submitted count = %d; want 0", got)
		}
	})

	t.Run("professors see only their assigned students", func(t *testing.T) {
		// no assignments yet: an empty scope, not everyone's work
		report := getReport(t, app, getToken(t, prof))
		if report.TotalSubmissions != 0 {
			t.Errorf("TotalSubmissions = %d; want 0 before any assignment", report.TotalSubmissions)
		}

		if err := usrSvc.AssignStudent(context.Background(), prof.ID, student.ID); err != nil {
			t.Fatalf("AssignStudent() failed: %v", err)
		}
		report = getReport(t, app, getToken(t, prof))
		if report.TotalSubmissions != 2 {
			t.Errorf("TotalSubmissions = %d; want 2 after assignment", report.TotalSubmissions)
		}
		if report.TotalCourses != 1 {
			t.Errorf("TotalCourses = %d; want 1", report.TotalCourses)
		}
	})
}

func Test_analyticsApi_overview(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	prof := createUser(t, "Prof Awe", "awe@test.cd", "", user.RoleProfessor, true)
	admin := createUser(t, "Admin", "admin@test.cd", "", user.RoleAdmin, true)

	crs := createCourse(t, "Algebra", prof.ID, "", time.Time{})
	createSubmission(t, crs.ID, student.ID, submission.StatusGraded, fPtr(10))

	req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/overview", getToken(t, admin))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v", rec.Code)
	}

	var overview struct {
		TotalStudents       int                     `json:"total_students"`
		TotalProfessors     int                     `json:"total_professors"`
		TotalCourses        int                     `json:"total_courses"`
		TotalSubmissions    int                     `json:"total_submissions"`
		AverageGrade        float64                 `json:"average_grade"`
		SubmissionsByStatus []analytics.StatusCount `json:"submissions_by_status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &overview); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if overview.TotalStudents != 1 || overview.TotalProfessors != 1 ||
		overview.TotalCourses != 1 || overview.TotalSubmissions != 1 {
		t.Errorf("unexpected counters %+v", overview)
	}
	if overview.AverageGrade != 10 {
		t.Errorf("AverageGrade = %v; want 10", overview.AverageGrade)
	}
	if len(overview.SubmissionsByStatus) != 3 {
		t.Errorf("len(SubmissionsByStatus) = %d; want 3", len(overview.SubmissionsByStatus))
	}

	// the chart series stay out of the overview
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if _, ok := raw["grade_distribution"]; ok {
		t.Error("overview should not include grade_distribution")
	}
}
