// json.go
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

package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/localnerve/sportfed/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSONList stores a list of structured sub-records in a single JSON column.
// It wraps gorm.io/datatypes.JSONSlice for storage and types.FlexList for tolerant decoding.
type JSONList[T any] []T

// Value stores the list as JSON; a nil list is stored as an empty array
func (l JSONList[T]) Value() (driver.Value, error) {
	if l == nil {
		l = JSONList[T]{}
	}
	return datatypes.JSONSlice[T](l).Value()
}

// Scan reads the JSON column back into the list
func (l *JSONList[T]) Scan(value interface{}) error {
	if value == nil {
		*l = JSONList[T]{}
		return nil
	}

	var s datatypes.JSONSlice[T]
	if err := s.Scan(value); err != nil {
		return fmt.Errorf("failed to scan JSON list: %w", err)
	}
	if s == nil {
		s = datatypes.JSONSlice[T]{}
	}
	*l = JSONList[T](s)
	return nil
}

// UnmarshalJSON accepts an array, a single object, or the array encoded as text
func (l *JSONList[T]) UnmarshalJSON(data []byte) error {
	var f types.FlexList[T]
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	if f == nil {
		f = types.FlexList[T]{}
	}
	*l = JSONList[T](f.Slice())
	return nil
}

// GormDBDataType ensures the correct data type is used for each database driver.
// This resolves the issue where MSSQL does not support the 'json' data type.
func (JSONList[T]) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
