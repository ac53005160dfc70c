package services

import (
	"context"
	"encoding/json"
	"time"

	"demandhub/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Tipos de evento de domínio publicados após mutações bem-sucedidas.
const (
	EventoDemandaTriada      = "demanda_triada"
	EventoDemandaEvoluiu     = "demanda_evoluiu_discovery"
	EventoDuplicidadeMarcada = "duplicidade_marcada"
)

// PublicadorEventos grava eventos de domínio como linhas de outbox.
// Publicação é dispare-e-esqueça: falha ao gravar é logada, nunca propagada,
// e nenhuma confirmação é aguardada.
type PublicadorEventos struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NovoPublicadorEventos(db *gorm.DB, logger *logrus.Logger) *PublicadorEventos {
	if logger == nil {
		logger = logrus.New()
	}
	return &PublicadorEventos{db: db, logger: logger}
}

func (p *PublicadorEventos) Publicar(ctx context.Context, tenantID, tipo string, demandaID uint, payload map[string]interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warnf("eventos: payload inválido para %s: %v", tipo, err)
		body = []byte("{}")
	}
	evento := &models.EventoDominio{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Tipo:      tipo,
		DemandaID: demandaID,
		Payload:   string(body),
		CreatedAt: time.Now(),
	}
	if err := p.db.WithContext(ctx).Create(evento).Error; err != nil {
		p.logger.Warnf("eventos: falha ao publicar %s para demanda %d: %v", tipo, demandaID, err)
		return
	}
	p.logger.Infof("eventos: %s publicado para demanda %d", tipo, demandaID)
}
