package dto

// MeResponse the authenticated actor with its resolved institution scope
type MeResponse struct {
	UserID    string   `json:"user_id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Role      string   `json:"role"`
	RoleLevel string   `json:"role_level"`
	BrandIDs  []string `json:"brand_ids"`
	CampusIDs []string `json:"campus_ids"`
	SchoolIDs []string `json:"school_ids"`
}
