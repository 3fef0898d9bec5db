package models

type Course struct {
	ID           int64  `db:"id" json:"id"`
	CourseNumber string `db:"course_number" json:"course_number"`
	Name         string `db:"name" json:"name"`
	Units        int    `db:"units" json:"units"`
}
