package admin

import "github.com/jobtracker/jobtracker-backend/internal/users"

// recentUsersLimit caps Statistics.RecentUsers.
const recentUsersLimit = 5

// Statistics summarizes the user base for the admin dashboard.
type Statistics struct {
	TotalUsers     int                `json:"total_users"`
	ActiveUsers    int                `json:"active_users"`
	AdminUsers     int                `json:"admin_users"`
	ModeratorUsers int                `json:"moderator_users"`
	RegularUsers   int                `json:"regular_users"`
	RecentUsers    []users.ProfileDTO `json:"recent_users"`
}

// UpdateRoleRequest and SetActiveRequest carry no required tags: the
// service validates them after the admin check.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active"`
}
