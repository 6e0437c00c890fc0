// Package entity defines the request forms and response messages of the
// metabo-ui web layer.
package entity

// Msg represents a standard JSON response message with success status, message text, and optional data object.
type Msg struct {
	Success bool   `json:"success"` // Indicates if the operation was successful
	Msg     string `json:"msg"`     // Response message text
	Obj     any    `json:"obj"`     // Optional data object
}

// LoginForm is the body of POST /login.
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// AddUserForm is the body of POST /add_user.
type AddUserForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Role     string `form:"role"`
}

// UsersForm is the body of POST /users. The new role of a role update is
// read from the "role_<user_id>" field.
type UsersForm struct {
	Delete string `form:"delete"`
	UserID string `form:"user_id"`
}

// IsDelete reports whether the form asks for a deletion.
func (f UsersForm) IsDelete() bool {
	return f.Delete == "True"
}

// RoleField returns the form field holding the new role for UserID.
func (f UsersForm) RoleField() string {
	return "role_" + f.UserID
}

// Health is the object of the /healthz response.
type Health struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Database string `json:"database"`
	Uptime   int64  `json:"uptime"`
}
