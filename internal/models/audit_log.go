package models

// AuditLog records a mutating operation. Append-only.
type AuditLog struct {
	Base
	Username     string `gorm:"index" json:"username"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `gorm:"type:text" json:"changes"`
}
