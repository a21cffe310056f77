// Package inmemdb keeps records in process memory. Records are lost when the process exits.
package inmemdb

import (
	"sync"

	"github.com/trezcool/chikoro/core/user"
)

type (
	DB struct {
		users *userTable
	}

	userTable struct {
		mutex sync.RWMutex
		table map[string]user.User
	}
)

func Open() *DB {
	return &DB{
		users: &userTable{table: make(map[string]user.User)},
	}
}
