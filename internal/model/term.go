package model

import "time"

type Term struct {
	ID        string    `json:"term_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type Course struct {
	Term   string `json:"term"`
	Course string `json:"course"`
}
