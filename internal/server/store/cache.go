package store

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/dmitrijs2005/trustkeeper/internal/server/models"
)

// cache mirrors the persisted tables.
type cache struct {
	service         map[string]*models.ServiceRecord
	serviceChecksum map[string]map[string]string
	device          map[string]json.RawMessage
	user            map[string]*models.UserRecord
	userPass        map[string]string
}

func newCache() cache {
	return cache{
		service:         map[string]*models.ServiceRecord{},
		serviceChecksum: map[string]map[string]string{},
		device:          map[string]json.RawMessage{},
		user:            map[string]*models.UserRecord{},
		userPass:        map[string]string{},
	}
}

// table returns a pointer to the map backing the named table, suitable for
// json.Unmarshal and json.Marshal.
func (c *cache) table(name string) any {
	switch name {
	case TableService:
		return &c.service
	case TableServiceChecksum:
		return &c.serviceChecksum
	case TableDevice:
		return &c.device
	case TableUser:
		return &c.user
	case TableUserPass:
		return &c.userPass
	}
	return nil
}

// normalize replaces tables decoded from "null" with empty maps.
func (c *cache) normalize() {
	if c.service == nil {
		c.service = map[string]*models.ServiceRecord{}
	}
	if c.serviceChecksum == nil {
		c.serviceChecksum = map[string]map[string]string{}
	}
	if c.device == nil {
		c.device = map[string]json.RawMessage{}
	}
	if c.user == nil {
		c.user = map[string]*models.UserRecord{}
	}
	if c.userPass == nil {
		c.userPass = map[string]string{}
	}
}

func copyService(s *models.ServiceRecord) *models.ServiceRecord {
	cp := *s
	cp.Roles = slices.Clone(s.Roles)
	cp.Groups = slices.Clone(s.Groups)
	cp.Admins = slices.Clone(s.Admins)
	cp.Upgraded = maps.Clone(s.Upgraded)
	cp.Meta = maps.Clone(s.Meta)
	return &cp
}

func copyUser(u *models.UserRecord) *models.UserRecord {
	cp := *u
	cp.Roles = slices.Clone(u.Roles)
	cp.Groups = slices.Clone(u.Groups)
	cp.Preferences = maps.Clone(u.Preferences)
	cp.Meta = maps.Clone(u.Meta)
	return &cp
}
