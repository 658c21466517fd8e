package specification

import "gorm.io/gorm"

// ByStatus filters documents by lifecycle stage
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// NonTerminal keeps documents still moving through the pipeline.
type NonTerminal struct{}

func (s NonTerminal) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status NOT IN ?", []string{"completed", "failed"})
}
