package ruz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"schedulebot/internal/domain"
	"schedulebot/internal/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, zap.NewNop())
}

func TestClient_ResolveGroup(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		body          string
		status        int
		expectedID    string
		expectedError error
	}{
		{
			name:       "exact match with numeric id",
			input:      " prikl 21 ",
			body:       `[{"id":100,"label":"PRIKL21","type":"group"},{"id":101,"label":"PRIKL21-2","type":"group"}]`,
			status:     http.StatusOK,
			expectedID: "100",
		},
		{
			name:       "string id",
			input:      "ПИ21-1",
			body:       `[{"id":"abc","label":"пи21-1","type":"group"}]`,
			status:     http.StatusOK,
			expectedID: "abc",
		},
		{
			name:          "only partial matches",
			input:         "ПИ21",
			body:          `[{"id":1,"label":"ПИ21-1"},{"id":2,"label":"ПИ21-2"}]`,
			status:        http.StatusOK,
			expectedError: schedule.ErrNotFound,
		},
		{
			name:          "empty result",
			input:         "XYZ",
			body:          `[]`,
			status:        http.StatusOK,
			expectedError: schedule.ErrNotFound,
		},
		{
			name:          "gateway timeout",
			input:         "ПИ21-1",
			status:        http.StatusGatewayTimeout,
			expectedError: schedule.ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/search", r.URL.Path)
				assert.Equal(t, "group", r.URL.Query().Get("type"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			id, err := client.ResolveGroup(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, id)
			}
		})
	}
}

func TestClient_ResolveGroup_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	client := NewClient(srv.URL, 20*time.Millisecond, zap.NewNop())

	_, err := client.ResolveGroup(context.Background(), "ПИ21-1")

	assert.ErrorIs(t, err, schedule.ErrTimeout)
}

func TestClient_ResolveTeacher(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "person", r.URL.Query().Get("type"))
		assert.Equal(t, "Иванов", r.URL.Query().Get("term"))
		w.Write([]byte(`[{"id":5,"label":"Иванов Иван Иванович"},{"id":6,"label":"Иванова Анна Петровна"}]`))
	})

	teachers, err := client.ResolveTeacher(context.Background(), " Иванов ")

	require.NoError(t, err)
	assert.Equal(t, []schedule.Teacher{
		{ID: "5", Name: "Иванов Иван Иванович"},
		{ID: "6", Name: "Иванова Анна Петровна"},
	}, teachers)
}

func TestClient_ResolveTeacher_Empty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	teachers, err := client.ResolveTeacher(context.Background(), "Никто")

	assert.NoError(t, err)
	assert.Empty(t, teachers)
}

func TestClient_FormatSchedule(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schedule/group/100", r.URL.Path)
		assert.Equal(t, "2021.03.15", r.URL.Query().Get("start"))
		assert.Equal(t, "2021.03.16", r.URL.Query().Get("finish"))
		w.Write([]byte(`[
			{"date":"2021.03.15","beginLesson":"10:10","endLesson":"11:40","discipline":"Экономика","kindOfWork":"Семинар","auditorium":"ауд. 201","building":"Ленинградский пр-т, 49","lecturer_title":"Петров П.П.","group":"ПИ21-1"},
			{"date":"2021.03.15","beginLesson":"08:30","endLesson":"10:00","discipline":"Математика","kindOfWork":"Лекции","auditorium":"ауд. 101","lecturer_title":"Иванов И.И.","stream":"ПИ21-1, ПИ21-2"}
		]`))
	})

	text, err := client.FormatSchedule(context.Background(), schedule.Query{
		SubjectID: "100",
		Role:      domain.RoleStudent,
		Start:     time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC),
		Days:      2,
		Prefs:     schedule.Prefs{ShowLocation: true},
	})

	require.NoError(t, err)
	assert.Contains(t, text, "Понедельник, 15.03.2021")
	assert.Contains(t, text, "Вторник, 16.03.2021\nЗанятий нет")
	assert.Contains(t, text, "🏛 ауд. 201, Ленинградский пр-т, 49")
	assert.NotContains(t, text, "👥")
	assert.Less(t, strings.Index(text, "Математика"), strings.Index(text, "Экономика"), "lessons are ordered by start time")
}

func TestClient_FormatSchedule_Teacher(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schedule/person/555", r.URL.Path)
		w.Write([]byte(`[{"date":"2021.03.15","beginLesson":"08:30","endLesson":"10:00","discipline":"Математика","lecturer_title":"Иванов И.И.","group":"ПИ21-1"}]`))
	})

	text, err := client.FormatSchedule(context.Background(), schedule.Query{
		SubjectID: "555",
		Role:      domain.RoleTeacher,
		Start:     time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC),
		Days:      1,
		Prefs:     schedule.Prefs{ShowGroups: true},
	})

	require.NoError(t, err)
	assert.Contains(t, text, "👥 ПИ21-1")
	assert.NotContains(t, text, "👤")
}

func TestClient_FormatSchedule_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	text, err := client.FormatSchedule(context.Background(), schedule.Query{
		SubjectID: "100",
		Role:      domain.RoleStudent,
		Start:     time.Now(),
		Days:      1,
	})

	assert.Error(t, err)
	assert.Empty(t, text)
}
