package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/darasahq/darasa/core/agenda"
	"github.com/darasahq/darasa/core/notification"
	"github.com/darasahq/darasa/core/submission"
	"github.com/darasahq/darasa/core/user"
)

func getEvents(t *testing.T, app http.Handler, path, token string) []agenda.Event {
	req, rec := newAuthRequest(http.MethodGet, path, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET %s failed! code = %v; body %s", path, rec.Code, rec.Body.String())
	}
	var events []agenda.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	return events
}

func Test_agendaApi_events(t *testing.T) {
	app := setup(t)

	student := createUser(t, "Hero", "hero@test.cd", "", user.RoleStudent, true)
	prof := createUser(t, "Prof Awe", "awe@test.cd", "", user.RoleProfessor, true)

	subj := createSubject(t, "Mathematics", "#3B82F6")
	crs := createCourse(t, "Algebra", prof.ID, subj.ID, time.Now().Add(24*time.Hour))
	noDeadline := createCourse(t, "Geometry", prof.ID, "", time.Time{})
	createSubmission(t, crs.ID, student.ID, submission.StatusSubmitted, nil)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/agenda")
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("professors get deadlines and grading tasks", func(t *testing.T) {
		events := getEvents(t, app, "/v1/agenda", getToken(t, prof))

		kinds := make(map[string]int)
		for _, ev := range events {
			kinds[ev.Kind]++
		}
		if kinds[agenda.KindDeadline] != 1 {
			t.Errorf("deadline events = %d; want 1 (no event for %q)", kinds[agenda.KindDeadline], noDeadline.Title)
		}
		if kinds[agenda.KindGrading] != 1 {
			t.Errorf("grading events = %d; want 1", kinds[agenda.KindGrading])
		}
		for _, ev := range events {
			if ev.Kind == agenda.KindDeadline && ev.Subject != "Mathematics" {
				t.Errorf("deadline event Subject = %s; want Mathematics", ev.Subject)
			}
		}
	})

	t.Run("students get deadlines and their submissions", func(t *testing.T) {
		events := getEvents(t, app, "/v1/agenda", getToken(t, student))

		kinds := make(map[string]int)
		for _, ev := range events {
			kinds[ev.Kind]++
		}
		if kinds[agenda.KindDeadline] != 1 {
			t.Errorf("deadline events = %d; want 1", kinds[agenda.KindDeadline])
		}
		if kinds[agenda.KindSubmission] != 1 {
			t.Errorf("submission events = %d; want 1", kinds[agenda.KindSubmission])
		}
		if kinds[agenda.KindGrading] != 0 {
			t.Errorf("grading events = %d; want 0", kinds[agenda.KindGrading])
		}
	})

	t.Run("upcoming is future-only, soonest first", func(t *testing.T) {
		events := getEvents(t, app, "/v1/agenda/upcoming", getToken(t, student))

		// the submission happened in the past; only the deadline is ahead
		if len(events) != 1 {
			t.Fatalf("len(events) = %d; want 1", len(events))
		}
		if events[0].ID != "course:"+crs.ID {
			t.Errorf("events[0].ID = %s; want course:%s", events[0].ID, crs.ID)
		}
	})
}

func Test_agendaApi_remind(t *testing.T) {
	app := setup(t)

	prof := createUser(t, "Prof Awe", "awe@test.cd", "", user.RoleProfessor, true)
	createCourse(t, "Algebra", prof.ID, "", time.Now().Add(24*time.Hour))      // due soon
	createCourse(t, "Geometry", prof.ID, "", time.Now().Add(30*24*time.Hour)) // far out
	profToken := getToken(t, prof)

	remind := func(t *testing.T) int {
		req, rec := newAuthRequest(http.MethodPost, "/v1/agenda/reminders", profToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("POST /v1/agenda/reminders failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var respData struct {
			Sent int `json:"sent"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
			t.Fatalf("json.Unmarshal() failed! err %v", err)
		}
		return respData.Sent
	}

	if sent := remind(t); sent != 1 {
		t.Errorf("sent = %d; want 1", sent)
	}

	notifs, err := notifRepo.RecentNotifications(context.Background(), prof.ID, notification.RecentLimit)
	if err != nil {
		t.Fatalf("RecentNotifications() failed: %v", err)
	}
	if len(notifs) != 1 || notifs[0].Type != notification.TypeReminder {
		t.Fatalf("notifications = %+v; want a single reminder", notifs)
	}

	// an event is only reminded about once
	if sent := remind(t); sent != 0 {
		t.Errorf("sent = %d; want 0 on repeat", sent)
	}

	// do-not-disturb suppresses reminders entirely
	if err := prefStore.SetDoNotDisturb(context.Background(), prof.ID, true); err != nil {
		t.Fatalf("SetDoNotDisturb() failed: %v", err)
	}
	createCourse(t, "Calculus", prof.ID, "", time.Now().Add(12*time.Hour))
	if sent := remind(t); sent != 0 {
		t.Errorf("sent = %d; want 0 with do-not-disturb on", sent)
	}
}
