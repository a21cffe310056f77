package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/chikoro/core"
	"github.com/trezcool/chikoro/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.users}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if usr.ID == "" {
		usr.ID = core.NewID()
	}
	repo.db.table[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.table {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := repo.GetUserByEmail(ctx, email)
	if core.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter, page core.Page, ordering ...core.DBOrdering) ([]user.User, error) {
	repo.db.mutex.RLock()
	users := make([]user.User, 0, len(repo.db.table))
	for _, usr := range repo.db.table {
		if matches(usr, filter) {
			users = append(users, usr)
		}
	}
	repo.db.mutex.RUnlock()

	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	sort.SliceStable(users, func(i, j int) bool {
		for _, ord := range ordering {
			if c := compareUsers(users[i], users[j], ord.Field); c != 0 {
				return (c < 0) == ord.Ascending
			}
		}
		return false
	})

	if page.Skip >= len(users) {
		return []user.User{}, nil
	}
	users = users[page.Skip:]
	if page.Limit > 0 && page.Limit < len(users) {
		users = users[:page.Limit]
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.table[usr.ID] = usr
	return usr, nil
}

// GetProfile has no teacher, student or parent records to join, so the profile only carries the user.
func (repo *userRepository) GetProfile(ctx context.Context, usr user.User) (user.Profile, error) {
	usr, err := repo.GetUserByID(ctx, usr.ID)
	if err != nil {
		return user.Profile{}, err
	}
	return user.Profile{User: usr}, nil
}

func matches(usr user.User, filter user.QueryFilter) bool {
	if filter.Search != "" && !strings.Contains(strings.ToLower(usr.Email), filter.Search) {
		return false
	}
	if len(filter.Roles) > 0 && !core.StringIn(usr.Role, filter.Roles...) {
		return false
	}
	if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
		return false
	}
	return true
}

// compareUsers returns -1, 0 or 1. Unknown fields compare equal.
func compareUsers(a, b user.User, field string) int {
	switch field {
	case "email":
		return strings.Compare(a.Email, b.Email)
	case "role":
		return strings.Compare(a.Role, b.Role)
	case "is_active":
		switch {
		case a.IsActive == b.IsActive:
			return 0
		case b.IsActive:
			return -1
		}
		return 1
	case "created_at":
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
	}
	return 0
}
