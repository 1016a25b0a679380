package models

import (
	"encoding/json"

	"github.com/localnerve/sportfed/internal/types"
)

// Sportsman is an athlete of a school with their competition record
type Sportsman struct {
	Record
	SchoolID      string           `gorm:"size:191;index" json:"schoolId"`
	Photo         string           `gorm:"size:512" json:"photo"`
	Name          string           `gorm:"size:255" json:"name"`
	Birthday      string           `gorm:"size:64" json:"birthday"`
	FirstTrainer  string           `gorm:"size:255" json:"fTrainer"`
	NowTrainer    string           `gorm:"size:191;index" json:"nowTrainer"`
	School        string           `gorm:"size:255" json:"school"`
	Address       string           `gorm:"size:512" json:"address"`
	Telephone     string           `gorm:"size:64" json:"telephone"`
	EnrolmentDate string           `gorm:"size:64" json:"enrolmentDate"`
	StudyPlace    string           `gorm:"size:255" json:"studyPlace"`
	Results       JSONList[Result] `json:"listResults"`
}

// UnmarshalJSON also accepts the alternate names older clients send:
// placeStudy for studyPlace, fTraner and firstTrainer for fTrainer, nowTraner for nowTrainer.
// The canonical name wins when both are present.
func (s *Sportsman) UnmarshalJSON(data []byte) error {
	type fields Sportsman
	in := struct {
		*fields
		PlaceStudy   string `json:"placeStudy"`
		FTraner      string `json:"fTraner"`
		FirstTrainer string `json:"firstTrainer"`
		NowTraner    string `json:"nowTraner"`
	}{fields: (*fields)(s)}

	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	fallback(&s.StudyPlace, in.PlaceStudy)
	fallback(&s.FirstTrainer, in.FTraner, in.FirstTrainer)
	fallback(&s.NowTrainer, in.NowTraner)
	return nil
}

func fallback(field *string, alternates ...string) {
	for _, alt := range alternates {
		if *field != "" {
			return
		}
		*field = alt
	}
}

// Result is one placement in a sportsman's competition history
type Result struct {
	Competition string           `json:"competition"`
	Discipline  string           `json:"discipline"`
	Place       types.FlexString `json:"place"`
}

// TableName overrides the table name for Sportsman
func (Sportsman) TableName() string {
	return "sportsmen"
}
