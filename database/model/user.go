package model

import (
	"github.com/metabo-ui/metabo-ui/util/crypto"
)

// RoleAdmin is the role the user administration pages require.
const RoleAdmin = "admin"

// RoleUser is the default role offered when adding users.
const RoleUser = "user"

// User is a credential record. ID and Email hold the same value; it is the
// record key and the partition key.
type User struct {
	ID     string `json:"id" bson:"_id" gorm:"primaryKey;column:id"`
	Email  string `json:"email" bson:"email" gorm:"uniqueIndex;not null"`
	PwHash string `json:"pw_hash" bson:"pw_hash" gorm:"column:pw_hash;not null"`
	Role   string `json:"role" bson:"role" gorm:"not null"`
}

// NewUser builds a record keyed by email with a freshly hashed password.
func NewUser(email, password, role string) (*User, error) {
	u := &User{ID: email, Email: email, Role: role}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the stored hash with a new salted hash of password.
func (u *User) SetPassword(password string) error {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return err
	}
	u.PwHash = hash
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return crypto.CheckPasswordHash(u.PwHash, password)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
