package models

import (
	"encoding/json"
)

// Entry is a school's roster of sportsmen registered for a competition
type Entry struct {
	Record
	CompetitionID string                 `gorm:"size:191;index" json:"competitionId"`
	SchoolID      string                 `gorm:"size:191;index" json:"schoolId"`
	Trainer       string                 `gorm:"size:255" json:"trainer"`
	Telephone     string                 `gorm:"size:64" json:"telephone"`
	DateSend      string                 `gorm:"size:64" json:"dateSend"`
	SportsmenList JSONList[EntryAthlete] `json:"sportsmenList"`
}

// EntryAthlete is one line of an entry roster.
// A line that only names the sportsman travels as the bare id string.
type EntryAthlete struct {
	SportsmanID string `json:"sportsmanId"`
	Name        string `json:"name,omitempty"`
	Birthday    string `json:"birthday,omitempty"`
	Discipline  string `json:"discipline,omitempty"`
}

type entryAthleteFields EntryAthlete

// UnmarshalJSON accepts either a sportsman id or an object
func (a *EntryAthlete) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*a = EntryAthlete{SportsmanID: id}
		return nil
	}

	var fields entryAthleteFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*a = EntryAthlete(fields)
	return nil
}

// MarshalJSON writes the bare id when nothing else is known about the line
func (a EntryAthlete) MarshalJSON() ([]byte, error) {
	if a.Name == "" && a.Birthday == "" && a.Discipline == "" {
		return json.Marshal(a.SportsmanID)
	}
	return json.Marshal(entryAthleteFields(a))
}

// TableName overrides the table name for Entry
func (Entry) TableName() string {
	return "entries"
}
