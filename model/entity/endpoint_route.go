package entity

import (
	"time"

	"gorm.io/datatypes"
)

// EndpointRoute is a persisted route record. Routing and EndpointHash are derived on write.
type EndpointRoute struct {
	ID                 uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Key                string         `gorm:"column:key;type:varchar(255);not null;uniqueIndex:uniq_endpoint_route_key" json:"key"`
	Name               string         `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Route              string         `gorm:"column:route;type:varchar(255);not null;uniqueIndex:uniq_endpoint_route_route" json:"route"`
	RouteGroup         *string        `gorm:"column:route_group;type:varchar(255);index" json:"route_group,omitempty"`
	RouteType          string         `gorm:"column:route_type;type:varchar(16);not null" json:"route_type"`
	AuthType           string         `gorm:"column:auth_type;type:varchar(32);not null" json:"auth_type"`
	RequestMethod      string         `gorm:"column:request_method;type:varchar(8);not null" json:"request_method"`
	RequestContentType string         `gorm:"column:request_content_type;type:varchar(64);not null" json:"request_content_type"`
	CSRF               bool           `gorm:"column:csrf;not null" json:"csrf"`
	Options            datatypes.JSON `gorm:"column:options" json:"options"`
	Routing            datatypes.JSON `gorm:"column:routing" json:"routing"`
	EndpointHash       string         `gorm:"column:endpoint_hash;type:varchar(32);index" json:"endpoint_hash"`
	ConsumerModel      string         `gorm:"column:consumer_model;type:varchar(128);index:idx_endpoint_route_consumer" json:"consumer_model,omitempty"`
	ConsumerRef        uint           `gorm:"column:consumer_ref;index:idx_endpoint_route_consumer" json:"consumer_ref,omitempty"`
	Active             bool           `gorm:"column:active;not null" json:"active"`
	RegistrySync       bool           `gorm:"column:registry_sync;not null" json:"registry_sync"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (EndpointRoute) TableName() string {
	return "endpoint_route"
}

// Group returns the route group, or "" when unset.
func (r *EndpointRoute) Group() string {
	if r.RouteGroup == nil {
		return ""
	}
	return *r.RouteGroup
}
