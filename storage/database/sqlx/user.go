package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/user"
)

const userColumns = "id, email, password_hash, role, is_active, created_at, updated_at, last_login"

var userOrderings = map[string]string{
	"email":      "email",
	"role":       "role",
	"created_at": "created_at",
	"is_active":  "is_active",
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	_, err := exec(ctx, repo.db,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		usr.ID, usr.Email, usr.PasswordHash, usr.Role, usr.IsActive, usr.CreatedAt, usr.UpdatedAt, usr.LastLogin)
	if err != nil {
		return user.User{}, trap(err, user.ErrNotFound, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var usr user.User
	err := get(ctx, repo.db, &usr, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return usr, trap(err, user.ErrNotFound, "getting user by id")
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	err := get(ctx, repo.db, &usr, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return usr, trap(err, user.ErrNotFound, "getting user by email")
}

func (repo userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := get(ctx, repo.db, &count, "SELECT COUNT(*) FROM users WHERE email = ?", email)
	return count > 0, trap(err, user.ErrNotFound, "checking email")
}

func (repo userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, page core.Page, ordering ...core.DBOrdering) ([]user.User, error) {
	var cond conditions
	if filter.Search != "" {
		cond.add("LOWER(email) LIKE ?", "%"+filter.Search+"%")
	}
	if len(filter.Roles) > 0 {
		cond.add("role IN (?)", filter.Roles)
	}
	if filter.IsActive != nil {
		cond.add("is_active = ?", *filter.IsActive)
	}

	query := "SELECT " + userColumns + " FROM users" + cond.where() +
		" ORDER BY " + core.OrderBy(ordering, userOrderings, "created_at DESC")
	query, args := paginate(query, page, cond.args)

	users := []user.User{}
	err := selectIn(ctx, repo.db, &users, query, args...)
	return users, trap(err, user.ErrNotFound, "querying users")
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := exec(ctx, repo.db,
		`UPDATE users SET email = ?, password_hash = ?, role = ?, is_active = ?, updated_at = ?, last_login = ?
		WHERE id = ?`,
		usr.Email, usr.PasswordHash, usr.Role, usr.IsActive, usr.UpdatedAt, usr.LastLogin, usr.ID)
	if err != nil {
		return user.User{}, trap(err, user.ErrNotFound, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) GetProfile(ctx context.Context, usr user.User) (user.Profile, error) {
	var prof user.Profile
	err := get(ctx, repo.db, &prof, `
		SELECT u.id, u.email, u.password_hash, u.role, u.is_active, u.created_at, u.updated_at, u.last_login,
			COALESCE(t.id, '') AS teacher_id,
			COALESCE(s.id, '') AS student_id,
			COALESCE(p.id, '') AS parent_id,
			COALESCE(t.first_name, s.first_name, p.first_name, '') AS first_name,
			COALESCE(t.last_name, s.last_name, p.last_name, '') AS last_name
		FROM users u
		LEFT JOIN teachers t ON t.user_id = u.id
		LEFT JOIN students s ON s.user_id = u.id
		LEFT JOIN parents p ON p.user_id = u.id
		WHERE u.id = ?`, usr.ID)
	return prof, trap(err, user.ErrNotFound, "getting profile")
}
