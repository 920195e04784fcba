// Package models contains data structures for the forum's domain models.
package models

import "time"

// UserProfile is a forum member. Rows are never removed; anonymization
// clears the personal fields in place so authored content keeps its author id.
type UserProfile struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	UserName         *string       `gorm:"size:56;uniqueIndex" json:"user_name"`
	Email            *string       `gorm:"size:254" json:"email,omitempty"`
	Mobile           *string       `gorm:"size:32" json:"mobile,omitempty"`
	RegistrationDate time.Time     `gorm:"not null" json:"registration_date"`
	ImageData        []byte        `json:"-"`
	ImageMimeType    *string       `gorm:"size:64" json:"-"`
	Property         *UserProperty `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"property,omitempty"`
}

// TableName specifies the table name for GORM
func (UserProfile) TableName() string {
	return "user_profiles"
}

// HasAvatar reports whether avatar bytes are stored for the profile.
func (u *UserProfile) HasAvatar() bool {
	return u.ImageData != nil
}

// IsAnonymized reports whether the profile's display name has been erased.
func (u *UserProfile) IsAnonymized() bool {
	return u.UserName == nil || *u.UserName == ""
}

// UserProperty holds per-user privacy flags. A missing row means both
// flags are false.
type UserProperty struct {
	UserID     uint `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	ShowEmail  bool `gorm:"not null;default:false" json:"show_email"`
	ShowMobile bool `gorm:"not null;default:false" json:"show_mobile"`
}

// TableName specifies the table name for GORM
func (UserProperty) TableName() string {
	return "user_properties"
}

// Role is a named membership group (administrator, moderator, ...).
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:64;not null;uniqueIndex" json:"name"`
}

// UserRole maps users to roles.
type UserRole struct {
	UserID uint         `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	RoleID uint         `gorm:"primaryKey;autoIncrement:false" json:"role_id"`
	User   *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	Role   *Role        `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT" json:"-"`
}

// TableName specifies the table name for GORM
func (UserRole) TableName() string {
	return "user_roles"
}
