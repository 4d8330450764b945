// Package repo holds the GORM persistence layer. Every query that touches
// contacts is scoped by the owning user id.
package repo

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDuplicate reports a unique-constraint violation, surfaced when an
// insert loses a race that earlier existence checks did not see.
var ErrDuplicate = errors.New("duplicate record")

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}
