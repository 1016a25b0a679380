// records.go
//
// Record service for sports federation schools, trainers, athletes, competitions and entries
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of sportfed.
// sportfed is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// sportfed is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with sportfed.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/localnerve/sportfed/internal/filter"
	"github.com/localnerve/sportfed/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// Kind describes one stored record kind and the query parameters it may be filtered by
type Kind[T any] struct {
	Name    string
	Plural  string
	Filters []string
	Columns map[string]string
}

var (
	// Schools are listed unfiltered; the owner lookup has its own operation
	Schools = Kind[models.School]{Name: "school", Plural: "schools"}

	Trainers = Kind[models.Trainer]{
		Name:    "trainer",
		Plural:  "trainers",
		Filters: []string{"schoolId"},
		Columns: map[string]string{"schoolId": "school_id"},
	}

	Sportsmen = Kind[models.Sportsman]{
		Name:    "sportsman",
		Plural:  "sportsmen",
		Filters: []string{"schoolId", "nowTrainer"},
		Columns: map[string]string{"schoolId": "school_id", "nowTrainer": "now_trainer"},
	}

	Competitions = Kind[models.Competition]{Name: "competition", Plural: "competitions"}

	Entries = Kind[models.Entry]{
		Name:    "entry",
		Plural:  "entries",
		Filters: []string{"schoolId", "competitionId"},
		Columns: map[string]string{"schoolId": "school_id", "competitionId": "competition_id"},
	}

	Users = Kind[models.User]{Name: "user", Plural: "users"}
)

// List returns every record matching the allow-listed query parameters
func (k Kind[T]) List(ctx context.Context, db *gorm.DB, query map[string]string) ([]T, error) {
	f := filter.FromQuery(k.Filters, query).Columns(k.Columns)
	return List[T](ctx, db, f, k.Plural)
}

// Get returns the record with the id, or nil when there is none
func (k Kind[T]) Get(ctx context.Context, db *gorm.DB, id string) (*T, error) {
	return Get[T](ctx, db, id)
}

// Create inserts the record and returns its generated id
func (k Kind[T]) Create(ctx context.Context, db *gorm.DB, record *T) (string, error) {
	rec, ok := any(record).(models.Identified)
	if !ok {
		return "", fmt.Errorf("%s is not a stored record", k.Name)
	}
	return Create(ctx, db, rec)
}

// Update replaces the record stored under id
func (k Kind[T]) Update(ctx context.Context, db *gorm.DB, id string, record *T) (int64, error) {
	rec, ok := any(record).(models.Identified)
	if !ok {
		return 0, fmt.Errorf("%s is not a stored record", k.Name)
	}
	return Update(ctx, db, id, rec)
}

// List returns the records matching every filter entry, in storage order
func List[T any](ctx context.Context, db *gorm.DB, f filter.Filter, label string) ([]T, error) {
	records := make([]T, 0)

	query := db.WithContext(ctx).Clauses(hints.CommentBefore("select", "list "+label))
	if len(f) > 0 {
		query = query.Where(map[string]interface{}(f))
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}

	return records, nil
}

// Get returns the record with the id, or nil when there is none.
// An id that could never have been generated is an error, not an absence.
func Get[T any](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	var record T
	err := db.WithContext(ctx).Where("id = ?", id).Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// Create inserts the record under a fresh id
func Create(ctx context.Context, db *gorm.DB, record models.Identified) (string, error) {
	record.SetRecordID("")

	if err := db.WithContext(ctx).Create(record).Error; err != nil {
		return "", err
	}

	return record.RecordID(), nil
}

// Update overwrites every field of the record stored under id, zero values included.
// No matching record is not an error: the affected row count is simply zero.
func Update(ctx context.Context, db *gorm.DB, id string, record models.Identified) (int64, error) {
	if err := ValidateID(id); err != nil {
		return 0, err
	}
	record.SetRecordID(id)

	result := db.WithContext(ctx).
		Model(record).
		Select("*").
		Omit("id", "created_at").
		Updates(record)

	return result.RowsAffected, result.Error
}
