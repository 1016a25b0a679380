package models

// School is the tenant owning trainers, sportsmen and entries.
// One school per owning user, held by the unique index on user_id.
type School struct {
	Record
	UserID      string `gorm:"size:191;not null;uniqueIndex" json:"userId"`
	Photo       string `gorm:"size:512" json:"photo"`
	Name        string `gorm:"size:255" json:"name"`
	Director    string `gorm:"size:255" json:"director"`
	Description string `json:"description"`
	Region      string `gorm:"size:255" json:"region"`
	City        string `gorm:"size:255" json:"city"`
	Address     string `gorm:"size:512" json:"address"`
	Telephone   string `gorm:"size:64" json:"telephone"`
}

// TableName overrides the table name for School
func (School) TableName() string {
	return "schools"
}
