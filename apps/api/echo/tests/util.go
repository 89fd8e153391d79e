package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	. "github.com/darasahq/darasa/apps/api/echo"
	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/course"
	"github.com/darasahq/darasa/core/messaging"
	"github.com/darasahq/darasa/core/notification"
	"github.com/darasahq/darasa/core/prefs"
	"github.com/darasahq/darasa/core/submission"
	"github.com/darasahq/darasa/core/user"
	emailsvc "github.com/darasahq/darasa/services/email"
	logsvc "github.com/darasahq/darasa/services/logger"
	realtimesvc "github.com/darasahq/darasa/services/realtime"
	inmemdb "github.com/darasahq/darasa/storage/database/inmem"
)

var (
	conf *core.Config

	usrRepo   user.Repository
	crsRepo   course.Repository
	subRepo   submission.Repository
	msgRepo   messaging.Repository
	notifRepo notification.Repository
	prefStore prefs.Store

	usrSvc   *user.Service
	crsSvc   *course.Service
	subSvc   *submission.Service
	notifSvc *notification.Service
	msgSvc   *messaging.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errNotFound     = httpErr{Error: "not found"}
	errForbidden    = httpErr{Error: "permission denied"}
)

func setup(t *testing.T) Server {
	conf = core.NewTestConfig()

	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	usrRepo = inmemdb.NewUserRepository(db)
	crsRepo = inmemdb.NewCourseRepository(db)
	subRepo = inmemdb.NewSubmissionRepository(db)
	msgRepo = inmemdb.NewMessageRepository(db)
	notifRepo = inmemdb.NewNotificationRepository(db)
	prefStore = prefs.NewInMemStore()

	// set up services
	broker := realtimesvc.NewInMemBroker()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc = user.NewService(usrRepo, mailSvc, conf)
	crsSvc = course.NewService(crsRepo)
	subSvc = submission.NewService(subRepo)
	notifSvc = notification.NewService(notifRepo, prefStore, broker)
	msgSvc = messaging.NewService(msgRepo, notifSvc, broker)

	validate := validator.New()
	translator := newTranslator(t)
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)

	// set up server
	return NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         logsvc.NewZeroLogger(conf),
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			CourseSvc:      crsSvc,
			SubmissionSvc:  subSvc,
			NotifSvc:       notifSvc,
			MessagingSvc:   msgSvc,
			Broker:         broker,
			Validate:       validate,
			Translator:     translator,
		},
	)
}

func newTranslator(t *testing.T) ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, ok := uni.GetTranslator("en")
	if !ok {
		t.Fatal("newTranslator() failed: `en` not found")
	}
	return translator
}

// Fixtures

func createUser(t *testing.T, name, email, pwd, role string, isActive bool, createdAt ...time.Time) user.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if len(createdAt) > 0 {
		now = createdAt[0].UTC().Truncate(time.Microsecond)
	}
	usr := user.User{
		FullName:  name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("SetPassword() failed: %v", err)
		}
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func createSubject(t *testing.T, name, color string) course.Subject {
	seeder, ok := crsRepo.(interface {
		AddSubject(subj course.Subject) course.Subject
	})
	if !ok {
		t.Fatal("createSubject() failed: repository cannot seed subjects")
	}
	return seeder.AddSubject(course.Subject{Name: name, Color: color})
}

func createCourse(t *testing.T, title, professorID, subjectID string, deadline time.Time) course.Course {
	nc := course.NewCourse{Title: title, SubjectID: subjectID}
	if !deadline.IsZero() {
		nc.Deadline = null.TimeFrom(deadline.UTC().Truncate(time.Microsecond))
	}
	crs, err := crsSvc.Create(context.Background(), professorID, nc)
	if err != nil {
		t.Fatalf("course Create() failed: %v", err)
	}
	return crs
}

func createSubmission(t *testing.T, courseID, studentID, status string, grade *float64, createdAt ...time.Time) submission.Submission {
	now := time.Now().UTC().Truncate(time.Microsecond)
	if len(createdAt) > 0 {
		now = createdAt[0].UTC().Truncate(time.Microsecond)
	}
	sub := submission.Submission{
		CourseID:  courseID,
		StudentID: studentID,
		Status:    status,
		CreatedAt: now,
	}
	if status != submission.StatusPending {
		sub.SubmittedAt.SetValid(now)
	}
	if grade != nil {
		sub.Grade.SetValid(*grade)
		sub.GradedAt.SetValid(now)
	}
	sub, err := subRepo.CreateSubmission(context.Background(), sub)
	if err != nil {
		t.Fatalf("CreateSubmission() failed: %v", err)
	}
	return sub
}

func fPtr(f float64) *float64 { return &f }

// HTTP plumbing

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if len(objs) == 0 {
		return []byte("[]") // handlers never render a null list
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
