package entity

import "time"

// App owns one route record (its url route) under the group app:{tech_name}.
type App struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TechName  string    `gorm:"column:tech_name;type:varchar(64);not null;uniqueIndex" json:"tech_name"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	ShortName string    `gorm:"column:short_name;type:varchar(64)" json:"short_name"`
	RootPath  string    `gorm:"column:root_path;type:varchar(255);not null;uniqueIndex" json:"root_path"`
	AuthType  string    `gorm:"column:auth_type;type:varchar(32);not null" json:"auth_type"`
	Active    bool      `gorm:"column:active;not null" json:"active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (App) TableName() string {
	return "endpoint_app"
}
