package model

import (
	"time"
)

type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	FirstName    string    `db:"first_name" json:"firstName"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// DisplayName prefers the first name, then the email address.
func (u *User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Email != "" {
		return u.Email
	}
	return u.Username
}

type CreateUserParams struct {
	Username     string
	Email        string
	FirstName    string
	PasswordHash string
	Role         Role
}

type Teacher struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"userId"`
	EmployeeID string    `db:"employee_id" json:"employeeId"`
	Subject    string    `db:"subject" json:"subject"`
	JoinedOn   time.Time `db:"joined_on" json:"joinedOn"`
}

type CreateTeacherParams struct {
	UserID     int64
	EmployeeID string
	Subject    string
	JoinedOn   time.Time
}

type Student struct {
	ID                int64  `db:"id" json:"id"`
	UserID            int64  `db:"user_id" json:"userId"`
	RollNumber        string `db:"roll_number" json:"rollNumber"`
	Grade             string `db:"grade" json:"grade"`
	AssignedTeacherID *int64 `db:"assigned_teacher_id" json:"assignedTeacherId,omitempty"`
}

type CreateStudentParams struct {
	UserID            int64
	RollNumber        string
	Grade             string
	AssignedTeacherID *int64
}
