package models

// Trainer is a coach working for a school
type Trainer struct {
	Record
	SchoolID  string `gorm:"size:191;index" json:"schoolId"`
	Photo     string `gorm:"size:512" json:"photo"`
	Name      string `gorm:"size:255" json:"name"`
	Birthday  string `gorm:"size:64" json:"birthday"`
	School    string `gorm:"size:255" json:"school"`
	Telephone string `gorm:"size:64" json:"telephone"`
}

// TableName overrides the table name for Trainer
func (Trainer) TableName() string {
	return "trainers"
}
