package models

import "time"

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleAdmin      Role = "ADMIN"
	RoleShopkeeper Role = "SHOPKEEPER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleShopkeeper:
		return true
	}
	return false
}

type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      Role      `gorm:"size:20;not null;default:CUSTOMER" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type DeviceType string

const (
	DeviceDesktop DeviceType = "DESKTOP"
	DeviceMobile  DeviceType = "MOBILE"
	DeviceBoth    DeviceType = "BOTH"
)

func (d DeviceType) Valid() bool {
	switch d {
	case DeviceDesktop, DeviceMobile, DeviceBoth:
		return true
	}
	return false
}

// Promo is a storefront banner.
type Promo struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ImageURL     string     `gorm:"size:512;not null" json:"imageUrl"`
	Title        *string    `gorm:"size:255" json:"title,omitempty"`
	Description  *string    `gorm:"type:text" json:"description,omitempty"`
	IsActive     bool       `gorm:"not null;default:true" json:"isActive"`
	DisplayOrder int32      `gorm:"not null;default:0" json:"displayOrder"`
	DeviceType   DeviceType `gorm:"size:20;not null;default:BOTH" json:"deviceType"`
	CreatedByID  *int64     `json:"createdById,omitempty"`
	UpdatedByID  *int64     `json:"updatedById,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}
