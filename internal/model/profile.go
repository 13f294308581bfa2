package model

import "time"

// Profile holds the job-search preferences of a user: education, skills and
// preferred locations/sectors. At most one profile exists per user (UNIQUE
// user_id in the DB); it is created once and mutated via partial updates.
//
// Skills, PreferredLocations and PreferredSectors are stored as JSON text
// columns in SQLite — they are short lists that are always read and written
// whole, never queried element-by-element.
type Profile struct {
	ID                 string    `json:"id"                 db:"id"`
	UserID             string    `json:"userId"             db:"user_id"`
	EducationLevel     string    `json:"educationLevel"     db:"education_level"` // e.g. "Bac+5"
	FieldOfStudy       string    `json:"fieldOfStudy"       db:"field_of_study"`
	Skills             []string  `json:"skills"             db:"skills"`
	PreferredLocations []string  `json:"preferredLocations" db:"preferred_locations"`
	PreferredSectors   []string  `json:"preferredSectors"   db:"preferred_sectors"`
	Bio                string    `json:"bio"                db:"bio"`
	CreatedAt          time.Time `json:"createdAt"          db:"created_at"`
	UpdatedAt          time.Time `json:"updatedAt"          db:"updated_at"`
}
