package models

// Profile labels shipped with the API. Any other label is stored verbatim.
const (
	AdminProfile  = "Admin"
	EditorProfile = "Editor"
	ViewerProfile = "Viewer"
)

// DefaultProfile is assigned when a user is created without one.
const DefaultProfile = ViewerProfile
