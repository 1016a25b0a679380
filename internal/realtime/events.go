package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/localnerve/sportfed/internal/auth"
	"github.com/localnerve/sportfed/internal/models"
	"github.com/localnerve/sportfed/internal/services"
	"gorm.io/gorm"
)

// EventSessionExpired is sent, and the connection closed, once the session claim lapses
const EventSessionExpired = "sessionExpired"

// Frame is one message in either direction.
// Responses echo the request's Ref so clients can match concurrent requests.
type Frame struct {
	Event string          `json:"event"`
	Ref   string          `json:"ref,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ErrorData is the payload of an error frame
type ErrorData struct {
	Message string `json:"message"`
}

type eventFunc func(ctx context.Context, sess *auth.Session, data json.RawMessage) (interface{}, error)

type eventHandler struct {
	admin bool
	run   eventFunc
}

// Dispatcher maps event names onto the service layer
type Dispatcher struct {
	DB       *gorm.DB
	Identity services.IdentityProvider

	events map[string]eventHandler
}

// NewDispatcher builds the event table
func NewDispatcher(db *gorm.DB, identity services.IdentityProvider) *Dispatcher {
	d := &Dispatcher{DB: db, Identity: identity}

	d.events = map[string]eventHandler{
		"getTrainerSportsmen": {run: d.getTrainerSportsmen},
		"getEntries":          {run: d.getEntries},
		"getEntry":            {run: getEvent(d, services.Entries)},
		"saveEntry":           {run: saveEvent(d, services.Entries)},
		"editEntry":           {run: editEvent(d, services.Entries)},
		"getCompetitions":     {run: listEvent(d, services.Competitions)},
		"saveSchool":          {run: d.saveSchool},
		"editSchool":          {run: d.editSchool},
		"saveTrainer":         {run: saveEvent(d, services.Trainers)},
		"editTrainer":         {run: editEvent(d, services.Trainers)},
		"saveSportsman":       {run: saveEvent(d, services.Sportsmen)},
		"editSportsman":       {run: editEvent(d, services.Sportsmen)},
		"getUsers":            {admin: true, run: d.getUsers},
		"deleteUser":          {admin: true, run: d.deleteUser},
		"getAdmins":           {admin: true, run: d.getAdmins},
		"getSession":          {run: getSession},
	}

	return d
}

// Known reports whether the event is in the table
func (d *Dispatcher) Known(event string) bool {
	_, ok := d.events[event]
	return ok
}

// Dispatch runs the event and builds the single response frame, along with the outcome label
func (d *Dispatcher) Dispatch(ctx context.Context, sess *auth.Session, in Frame) (Frame, string) {
	h, ok := d.events[in.Event]
	if !ok {
		return errorFrame("error", in.Ref, fmt.Sprintf("unknown event %q", in.Event)), "unknown"
	}

	if h.admin {
		if err := services.RequireAdmin(sess); err != nil {
			return errorFrame(in.Event+"Error", in.Ref, err.Error()), "forbidden"
		}
	}

	result, err := h.run(auth.WithSession(ctx, sess), sess, in.Data)
	if err != nil {
		outcome := "error"
		if errors.Is(err, services.ErrForbidden) {
			outcome = "forbidden"
		}
		return errorFrame(in.Event+"Error", in.Ref, err.Error()), outcome
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return errorFrame(in.Event+"Error", in.Ref, err.Error()), "error"
	}
	return Frame{Event: in.Event + "Data", Ref: in.Ref, Data: raw}, "ok"
}

func outcomeEvent(d *Dispatcher, event string) string {
	if d.Known(event) {
		return event
	}
	return "unknown"
}

func errorFrame(event, ref, message string) Frame {
	raw, _ := json.Marshal(ErrorData{Message: message})
	return Frame{Event: event, Ref: ref, Data: raw}
}

func decode(data json.RawMessage, target interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("invalid event data: %w", err)
	}
	return nil
}

// mutation is the payload answering save and edit events
type mutation struct {
	ID           string `json:"id"`
	AffectedRows int64  `json:"affectedRows"`
}

func listEvent[T any](d *Dispatcher, kind services.Kind[T]) eventFunc {
	return func(ctx context.Context, _ *auth.Session, _ json.RawMessage) (interface{}, error) {
		records, err := kind.List(ctx, d.DB, nil)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{kind.Plural: records}, nil
	}
}

func getEvent[T any](d *Dispatcher, kind services.Kind[T]) eventFunc {
	return func(ctx context.Context, _ *auth.Session, data json.RawMessage) (interface{}, error) {
		var req struct {
			ID string `json:"id"`
		}
		if err := decode(data, &req); err != nil {
			return nil, err
		}
		record, err := kind.Get(ctx, d.DB, req.ID)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{kind.Name: record}, nil
	}
}

func saveEvent[T any](d *Dispatcher, kind services.Kind[T]) eventFunc {
	return func(ctx context.Context, _ *auth.Session, data json.RawMessage) (interface{}, error) {
		var record T
		if err := decode(data, &record); err != nil {
			return nil, err
		}
		id, err := kind.Create(ctx, d.DB, &record)
		if err != nil {
			return nil, err
		}
		return mutation{ID: id, AffectedRows: 1}, nil
	}
}

func editEvent[T any](d *Dispatcher, kind services.Kind[T]) eventFunc {
	return func(ctx context.Context, _ *auth.Session, data json.RawMessage) (interface{}, error) {
		var record T
		if err := decode(data, &record); err != nil {
			return nil, err
		}
		var id string
		if r, ok := any(&record).(models.Identified); ok {
			id = r.RecordID()
		}
		rows, err := kind.Update(ctx, d.DB, id, &record)
		if err != nil {
			return nil, err
		}
		return mutation{ID: id, AffectedRows: rows}, nil
	}
}

func (d *Dispatcher) getTrainerSportsmen(ctx context.Context, _ *auth.Session, data json.RawMessage) (interface{}, error) {
	var req struct {
		TrainerID string `json:"trainerId"`
	}
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if req.TrainerID == "" {
		return nil, errors.New("trainerId is required")
	}
	sportsmen, err := services.Sportsmen.List(ctx, d.DB, map[string]string{"nowTrainer": req.TrainerID})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"sportsmen": sportsmen}, nil
}

func (d *Dispatcher) getEntries(ctx context.Context, _ *auth.Session, data json.RawMessage) (interface{}, error) {
	query := map[string]string{}
	if err := decode(data, &query); err != nil {
		return nil, err
	}
	entries, err := services.Entries.List(ctx, d.DB, query)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"entries": entries}, nil
}

func (d *Dispatcher) saveSchool(ctx context.Context, sess *auth.Session, data json.RawMessage) (interface{}, error) {
	var school models.School
	if err := decode(data, &school); err != nil {
		return nil, err
	}
	created, id, err := services.SaveSchool(ctx, d.DB, sess, &school)
	if err != nil {
		return nil, err
	}
	m := mutation{ID: id}
	if created {
		m.AffectedRows = 1
	}
	return m, nil
}

func (d *Dispatcher) editSchool(ctx context.Context, sess *auth.Session, data json.RawMessage) (interface{}, error) {
	var school models.School
	if err := decode(data, &school); err != nil {
		return nil, err
	}
	rows, err := services.EditSchool(ctx, d.DB, sess, &school)
	if err != nil {
		return nil, err
	}
	return mutation{ID: school.ID, AffectedRows: rows}, nil
}

type tokenRequest struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

func (d *Dispatcher) getUsers(ctx context.Context, _ *auth.Session, data json.RawMessage) (interface{}, error) {
	var req tokenRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return map[string]interface{}{"users": services.IdentityUsers(ctx, d.Identity, req.Token)}, nil
}

func (d *Dispatcher) deleteUser(ctx context.Context, _ *auth.Session, data json.RawMessage) (interface{}, error) {
	var req tokenRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, errors.New("id is required")
	}
	return map[string]interface{}{"deleted": services.DeleteIdentityUser(ctx, d.Identity, req.Token, req.ID)}, nil
}

func (d *Dispatcher) getAdmins(ctx context.Context, _ *auth.Session, data json.RawMessage) (interface{}, error) {
	var req tokenRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	return map[string]interface{}{"admins": services.IdentityAdmins(ctx, d.Identity, req.Token)}, nil
}

func getSession(_ context.Context, sess *auth.Session, _ json.RawMessage) (interface{}, error) {
	return sess, nil
}
