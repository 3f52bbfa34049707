package models

type Movie struct {
	ID    int64   `json:"id" db:"id"`
	Title string  `json:"title" db:"title" validate:"required,min=1,max=100"`
	Genre *string `json:"genre,omitempty" db:"genre" validate:"omitempty,max=100"`
}
