package models

import "time"

// Attendance: отметка о посещении. На одного клиента в день допускается
// несколько строк, в статистике они считаются один раз.
type Attendance struct {
	ClientID int64     `json:"client_id"`
	Date     time.Time `json:"date"`
}

// DummyAttendance используется для приёма отметки о посещении из JSON-запроса.
// Date в формате 2006-01-02, пустая строка означает сегодняшний день.
type DummyAttendance struct {
	ClientID int64  `json:"client_id" validate:"required,gt=0"`
	Date     string `json:"date,omitempty"`
}
