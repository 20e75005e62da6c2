package models

import "time"

// ModerationAudit records one admin moderation decision.
type ModerationAudit struct {
	ID       uint      `gorm:"primaryKey" json:"id" bson:"-"`
	ActorID  uint      `gorm:"not null;index" json:"actor_id" bson:"actor_id"`
	Entity   string    `gorm:"size:20;not null;index:idx_audit_entity" json:"entity" bson:"entity"`
	EntityID uint      `gorm:"not null;index:idx_audit_entity" json:"entity_id" bson:"entity_id"`
	Action   string    `gorm:"size:20;not null" json:"action" bson:"action"`
	From     string    `gorm:"column:from_status;size:20" json:"from" bson:"from"`
	To       string    `gorm:"column:to_status;size:20" json:"to" bson:"to"`
	Notes    string    `gorm:"type:text" json:"notes,omitempty" bson:"notes,omitempty"`
	At       time.Time `gorm:"not null;index" json:"at" bson:"at"`
}
