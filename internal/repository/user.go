package repository

import (
	"context"

	"github.com/schoolhub/chat-server-go/internal/database"
	"github.com/schoolhub/chat-server-go/internal/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, params model.CreateUserParams) (*model.User, error)
}

type userRepo struct {
	db database.DBTX
}

func NewUserRepository(db database.DBTX) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	return HandleNotFound(&user, err)
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE username = $1`, username)
	return HandleNotFound(&user, err)
}

func (r *userRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		INSERT INTO users (username, email, first_name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.Username, params.Email, params.FirstName, params.PasswordHash, params.Role)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

type TeacherRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Teacher, error)
	FindByUserID(ctx context.Context, userID int64) (*model.Teacher, error)
	Create(ctx context.Context, params model.CreateTeacherParams) (*model.Teacher, error)
}

type teacherRepo struct {
	db database.DBTX
}

func NewTeacherRepository(db database.DBTX) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) FindByID(ctx context.Context, id int64) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.GetContext(ctx, &teacher, `SELECT * FROM teachers WHERE id = $1`, id)
	return HandleNotFound(&teacher, err)
}

func (r *teacherRepo) FindByUserID(ctx context.Context, userID int64) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.GetContext(ctx, &teacher, `SELECT * FROM teachers WHERE user_id = $1`, userID)
	return HandleNotFound(&teacher, err)
}

func (r *teacherRepo) Create(ctx context.Context, params model.CreateTeacherParams) (*model.Teacher, error) {
	var teacher model.Teacher
	err := r.db.GetContext(ctx, &teacher, `
		INSERT INTO teachers (user_id, employee_id, subject, joined_on)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.UserID, params.EmployeeID, params.Subject, params.JoinedOn)
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

type StudentRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Student, error)
	FindByUserID(ctx context.Context, userID int64) (*model.Student, error)
	Create(ctx context.Context, params model.CreateStudentParams) (*model.Student, error)
}

type studentRepo struct {
	db database.DBTX
}

func NewStudentRepository(db database.DBTX) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) FindByID(ctx context.Context, id int64) (*model.Student, error) {
	var student model.Student
	err := r.db.GetContext(ctx, &student, `SELECT * FROM students WHERE id = $1`, id)
	return HandleNotFound(&student, err)
}

func (r *studentRepo) FindByUserID(ctx context.Context, userID int64) (*model.Student, error) {
	var student model.Student
	err := r.db.GetContext(ctx, &student, `SELECT * FROM students WHERE user_id = $1`, userID)
	return HandleNotFound(&student, err)
}

func (r *studentRepo) Create(ctx context.Context, params model.CreateStudentParams) (*model.Student, error) {
	var student model.Student
	err := r.db.GetContext(ctx, &student, `
		INSERT INTO students (user_id, roll_number, grade, assigned_teacher_id)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.UserID, params.RollNumber, params.Grade, params.AssignedTeacherID)
	if err != nil {
		return nil, err
	}
	return &student, nil
}
