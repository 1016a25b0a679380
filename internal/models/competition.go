package models

// Competition is a scheduled event schools can enter sportsmen into
type Competition struct {
	Record
	Logo        string `gorm:"size:512" json:"logo"`
	Name        string `gorm:"size:255" json:"name"`
	StartDate   string `gorm:"size:64" json:"startDate"`
	EndDate     string `gorm:"size:64" json:"endDate"`
	DeadLine    string `gorm:"size:64" json:"deadLine"`
	MainJudge   string `gorm:"size:255" json:"mainJudge"`
	Secretary   string `gorm:"size:255" json:"secretary"`
	Telephone   string `gorm:"size:64" json:"telephone"`
	Place       string `gorm:"size:255" json:"place"`
	Description string `json:"description"`
	Discipline  string `gorm:"size:255" json:"discipline"`
}

// TableName overrides the table name for Competition
func (Competition) TableName() string {
	return "competitions"
}
