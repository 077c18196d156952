// AngelaMos | 2026
// entry.go

package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	EventViewUserProfile = "ADMIN_VIEW_USER_PROFILE"
	EventViewUserPages   = "ADMIN_VIEW_USER_PAGES"
)

// Details is the free-form payload of an entry, stored as jsonb.
type Details map[string]any

func (d Details) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

func (d *Details) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = Details{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan details: unsupported type %T", src)
	}

	return json.Unmarshal(raw, d)
}

// Entry is one immutable record of a privileged read.
type Entry struct {
	ID            string    `db:"id"             json:"id"`
	AdminID       string    `db:"admin_id"       json:"admin_id"`
	AdminEmail    string    `db:"admin_email"    json:"admin_email"`
	AdminUsername string    `db:"admin_username" json:"admin_username"`
	Event         string    `db:"event"          json:"event"`
	Details       Details   `db:"details"        json:"details"`
	Timestamp     time.Time `db:"created_at"     json:"timestamp"`
}

type Filter struct {
	AdminID      string
	Event        string
	TargetUserID string
	Skip         int
	Limit        int
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

func (f *Filter) Normalize() {
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
}

type QueryResponse struct {
	Logs  []Entry `json:"logs"`
	Total int     `json:"total"`
	Skip  int     `json:"skip"`
	Limit int     `json:"limit"`
}
