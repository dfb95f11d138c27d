package entity

// RouteVersion is the single-row counter bumped by triggers on endpoint_route.
type RouteVersion struct {
	ID      uint  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Version int64 `gorm:"column:version;not null"`
}

func (RouteVersion) TableName() string {
	return "endpoint_route_version"
}
