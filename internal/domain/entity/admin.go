package entity

import "time"

// AdminAction is an audit record of a catalog mutation performed by an admin.
type AdminAction struct {
	ID        string
	UserID    int64
	Action    string // "add_product", "delete_product", "import_catalog"
	Details   string
	Timestamp time.Time
}
