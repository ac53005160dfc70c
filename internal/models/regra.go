package models

import (
	"time"

	"gorm.io/gorm"
)

// RegraAutomacao é uma regra de triagem configurada pelo tenant.
// Condições e ações chegam do admin como JSON e são avaliadas como dados
// (interpretador em internal/triage), nunca compiladas em código.
// Exclusão é sempre soft delete para preservar o histórico de auditoria.
type RegraAutomacao struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TenantID  string         `gorm:"index;not null" json:"tenant_id"`
	Nome      string         `gorm:"not null" json:"nome"`
	Ativa     bool           `gorm:"default:true" json:"ativa"`
	Condicoes string         `gorm:"type:text" json:"condicoes"` // JSON: [{field,operator,value,joinWithNext}]
	Acoes     string         `gorm:"type:text" json:"acoes"`     // JSON: [{type,value}]
	CriadoPor uint           `json:"criado_por"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
