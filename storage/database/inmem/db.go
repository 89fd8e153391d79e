// Package inmemdb provides map-backed repositories used by tests and
// local development without a running PostgreSQL.
package inmemdb

import (
	"sync"

	"github.com/darasahq/darasa/core/course"
	"github.com/darasahq/darasa/core/messaging"
	"github.com/darasahq/darasa/core/notification"
	"github.com/darasahq/darasa/core/submission"
	"github.com/darasahq/darasa/core/user"
)

type (
	DB struct {
		user         *userTable
		course       *courseTable
		submission   *submissionTable
		message      *messageTable
		notification *notificationTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
		// studentID -> professorID
		assignments map[string]string
	}

	courseTable struct {
		sync.RWMutex
		table    map[string]*course.Course
		subjects map[string]*course.Subject
	}

	submissionTable struct {
		sync.RWMutex
		table map[string]*submission.Submission
	}

	messageTable struct {
		sync.RWMutex
		table map[string]*messaging.Message
	}

	notificationTable struct {
		sync.RWMutex
		table map[string]*notification.Notification
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{
			table:       make(map[string]*user.User),
			assignments: make(map[string]string),
		},
		course: &courseTable{
			table:    make(map[string]*course.Course),
			subjects: make(map[string]*course.Subject),
		},
		submission:   &submissionTable{table: make(map[string]*submission.Submission)},
		message:      &messageTable{table: make(map[string]*messaging.Message)},
		notification: &notificationTable{table: make(map[string]*notification.Notification)},
	}
	return db, nil
}
