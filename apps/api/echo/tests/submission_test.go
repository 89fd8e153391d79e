package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/darasahq/darasa/core/notification"
	"github.com/darasahq/darasa/core/submission"
	"github.com/darasahq/darasa/core/user"
)

func Test_submissionApi_create(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	prof := createUser(t, "Prof Awe", "awe@test.cd", "", user.RoleProfessor, true)
	crs := createCourse(t, "Algebra", prof.ID, "", time.Time{})

	studentToken := getToken(t, student)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "student required", token: getToken(t, prof),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "required fields", token: studentToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"course_id": "this field is required"}),
		},
		{
			name: "unknown course", token: studentToken, wantCode: http.StatusNotFound,
			body:     marchallObj(t, submission.NewSubmission{CourseID: "lol"}),
			wantData: marchallObj(t, errNotFound),
		},
		{
			name: "created", token: studentToken, wantCode: http.StatusCreated,
			body: marchallObj(t, submission.NewSubmission{CourseID: crs.ID, FileURL: "https://files.test/hw.pdf"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/submissions"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData submission.Submission
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Status != submission.StatusSubmitted {
					t.Errorf("failed! Status = %s; want %s", respData.Status, submission.StatusSubmitted)
				}
				if respData.StudentID != student.ID || respData.CourseID != crs.ID {
					t.Errorf("failed! unexpected submission %+v", respData)
				}
				if !respData.SubmittedAt.Valid {
					t.Error("failed! SubmittedAt not set")
				}
				if respData.Course == nil || respData.Course.ID != crs.ID {
					t.Errorf("failed! course not resolved on %+v", respData)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_submissionApi_query(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	otherStudent := createUser(t, "King", "king@test.cd", "", user.RoleStudent, true)
	prof := createUser(t, "Prof Awe", "awe@test.cd", "", user.RoleProfessor, true)
	otherProf := createUser(t, "Prof Queen", "queen@test.cd", "", user.RoleProfessor, true)
	admin := createUser(t, "Admin", "admin@test.cd", "", user.RoleAdmin, true)

	crs := createCourse(t, "Algebra", prof.ID, "", time.Time{})
	otherCrs := createCourse(t, "Poetry", otherProf.ID, "", time.Time{})

	now := time.Now()
	sub1 := createSubmission(t, crs.ID, student.ID, submission.StatusSubmitted, nil, now.Add(-2*time.Hour))
	sub2 := createSubmission(t, crs.ID, otherStudent.ID, submission.StatusGraded, fPtr(15), now.Add(-1*time.Hour))
	sub3 := createSubmission(t, otherCrs.ID, student.ID, submission.StatusSubmitted, nil, now)

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "students see their own", token: getToken(t, student), wantData: marchallList(t, sub3, sub1)},
		{name: "professors see their courses'", token: getToken(t, prof), wantData: marchallList(t, sub2, sub1)},
		{name: "admins see all", token: getToken(t, admin), wantData: marchallList(t, sub3, sub2, sub1)},
		{
			name: "status filter", path: "/v1/submissions?status=graded",
			token: getToken(t, prof), wantData: marchallList(t, sub2),
		},
		{
			name: "graded only", path: "/v1/submissions?graded_only=true",
			token: getToken(t, admin), wantData: marchallList(t, sub2),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.path == "" {
			tt.path = "/v1/submissions"
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_submissionApi_detail(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	otherStudent := createUser(t, "King", "king@test.cd", "", user.RoleStudent, true)
	prof := createUser(t, "Prof Awe", "awe@test.cd", "", user.RoleProfessor, true)
	otherProf := createUser(t, "Prof Queen", "queen@test.cd", "", user.RoleProfessor, true)
	admin := createUser(t, "Admin", "admin@test.cd", "", user.RoleAdmin, true)

	crs := createCourse(t, "Algebra", prof.ID, "", time.Time{})
	sub := createSubmission(t, crs.ID, student.ID, submission.StatusSubmitted, nil)

	tests := []httpTest{
		{
			name: "unknown submission", path: "/v1/submissions/lol",
			token: getToken(t, admin), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{name: "owner retrieves", token: getToken(t, student), wantCode: http.StatusOK, wantData: marchallObj(t, sub)},
		{name: "course professor retrieves", token: getToken(t, prof), wantCode: http.StatusOK, wantData: marchallObj(t, sub)},
		{name: "admin retrieves", token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallObj(t, sub)},
		{
			name: "hidden from other students", token: getToken(t, otherStudent),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "hidden from other professors", token: getToken(t, otherProf),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.path == "" {
			tt.path = "/v1/submissions/" + sub.ID
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_submissionApi_grade(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	prof := createUser(t, "Prof Awe", "awe@test.cd", "", user.RoleProfessor, true)
	crs := createCourse(t, "Algebra", prof.ID, "", time.Time{})
	sub := createSubmission(t, crs.ID, student.ID, submission.StatusSubmitted, nil)

	profToken := getToken(t, prof)

	tests := []httpTest{
		{
			name: "professor required", token: getToken(t, student),
			body:     marchallObj(t, submission.GradeSubmission{Grade: 15}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "grade out of range", token: profToken,
			body:     marchallObj(t, submission.GradeSubmission{Grade: 25}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"grade": "grade must be 20 or less"}),
		},
		{
			name: "graded", token: profToken,
			body:     marchallObj(t, submission.GradeSubmission{Grade: 15.5, Comment: "Good work"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut
		tt.path = "/v1/submissions/" + sub.ID + "/grade"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData submission.Submission
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Status != submission.StatusGraded {
					t.Errorf("failed! Status = %s; want %s", respData.Status, submission.StatusGraded)
				}
				if !respData.Grade.Valid || respData.Grade.Float64 != 15.5 {
					t.Errorf("failed! Grade = %v; want 15.5", respData.Grade)
				}
				if !respData.GradedAt.Valid {
					t.Error("failed! GradedAt not set")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// the student gets a grade notification
	notifs, err := notifRepo.RecentNotifications(context.Background(), student.ID, notification.RecentLimit)
	if err != nil {
		t.Fatalf("RecentNotifications() failed: %v", err)
	}
	if len(notifs) != 1 {
		t.Fatalf("len(notifications) = %d; want 1", len(notifs))
	}
	if notifs[0].Type != notification.TypeGrade {
		t.Errorf("notification Type = %s; want %s", notifs[0].Type, notification.TypeGrade)
	}
	if !strings.Contains(notifs[0].Message, "Algebra: 15.5/20") {
		t.Errorf("notification Message = %s; want it to mention the course and grade", notifs[0].Message)
	}
	if !strings.Contains(notifs[0].Message, "Good work") {
		t.Errorf("notification Message = %s; want it to carry the comment", notifs[0].Message)
	}
}

func Test_submissionApi_export(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	prof := createUser(t, "Prof Awe", "awe@test.cd", "", user.RoleProfessor, true)
	crs := createCourse(t, "Algebra", prof.ID, "", time.Time{})
	createSubmission(t, crs.ID, student.ID, submission.StatusGraded, fPtr(12))

	tests := []httpTest{
		{
			name: "professor required", token: getToken(t, student),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "exported", token: getToken(t, prof), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/submissions/export"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
					t.Errorf("failed! Content-Type = %s; want an xlsx type", ct)
				}
				if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "submissions-") {
					t.Errorf("failed! Content-Disposition = %s; want an attachment filename", cd)
				}
				if rec.Body.Len() == 0 {
					t.Error("failed! empty workbook")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
