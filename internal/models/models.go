package models

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Usuário da plataforma (PM, admin, solicitante)
type Usuario struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TenantID  string         `gorm:"index;not null" json:"tenant_id"`
	Nome      string         `json:"nome"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Papel     string         `gorm:"default:'solicitante'" json:"papel"` // solicitante, pm, admin
	Ativo     bool           `gorm:"default:true" json:"ativo"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Produto ao qual as demandas se vinculam
type Produto struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TenantID  string         `gorm:"index;not null" json:"tenant_id"`
	Nome      string         `gorm:"not null" json:"nome"`
	Slug      string         `gorm:"index" json:"slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Demanda é o item de entrada (ideia/problema/oportunidade) em avaliação.
// Status, prioridade e responsável só mudam pelos setters guardados abaixo;
// o motor de automação nunca escreve os campos diretamente.
type Demanda struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TenantID      string         `gorm:"index;not null" json:"tenant_id"`
	Titulo        string         `gorm:"not null" json:"titulo"`
	Descricao     string         `gorm:"type:text" json:"descricao"`
	Tipo          string         `json:"tipo"`   // IDEIA, PROBLEMA, OPORTUNIDADE
	Origem        string         `json:"origem"` // portal, integracao, interno
	Status        string         `gorm:"default:'aberta'" json:"status"`      // slug de status_demanda
	Prioridade    string         `gorm:"default:'media'" json:"prioridade"`   // slug de prioridade_nivel
	ProdutoID     *uint          `gorm:"index" json:"produto_id"`
	ResponsavelID *uint          `gorm:"index" json:"responsavel_id"`
	CriadoPorID   uint           `gorm:"index" json:"criado_por_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Produto     *Produto      `gorm:"foreignKey:ProdutoID" json:"produto,omitempty"`
	Responsavel *Usuario      `gorm:"foreignKey:ResponsavelID" json:"responsavel,omitempty"`
	Anexos      []AnexoDemanda `gorm:"foreignKey:DemandaID" json:"anexos,omitempty"`
}

var ErrValorVazio = errors.New("valor vazio")

// AlterarStatus aplica um novo slug de status à demanda.
func (d *Demanda) AlterarStatus(slug string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ErrValorVazio
	}
	d.Status = slug
	return nil
}

// AlterarPrioridade aplica um novo slug de prioridade à demanda.
func (d *Demanda) AlterarPrioridade(slug string) error {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return ErrValorVazio
	}
	d.Prioridade = slug
	return nil
}

// AtribuirResponsavel transfere a demanda para outro usuário.
func (d *Demanda) AtribuirResponsavel(usuarioID uint) error {
	if usuarioID == 0 {
		return ErrValorVazio
	}
	d.ResponsavelID = &usuarioID
	return nil
}

// ItemChecklist é um item derivado do baseline fixo ou do catálogo.
// A lista completa é serializada em JSON na coluna Checklist da Triagem.
type ItemChecklist struct {
	ID          string `json:"id"`
	Rotulo      string `json:"rotulo"`
	Obrigatorio bool   `json:"obrigatorio"`
	Concluido   bool   `json:"concluido"`
	Validador   string `json:"validador,omitempty"`
}

// Triagem registra o estado de avaliação de uma demanda, criada de forma
// preguiçosa no primeiro toque de triagem (uma por demanda), nunca removida.
type Triagem struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	TenantID        string     `gorm:"index;not null" json:"tenant_id"`
	DemandaID       uint       `gorm:"uniqueIndex" json:"demanda_id"`
	StatusTriagem   string     `gorm:"default:'PENDENTE_TRIAGEM'" json:"status_triagem"`
	Impacto         *string    `json:"impacto"`
	Urgencia        *string    `json:"urgencia"`
	Complexidade    *string    `json:"complexidade"`
	Checklist       string     `gorm:"type:text" json:"checklist"` // JSON: []ItemChecklist
	RevisoesTriagem int        `gorm:"default:0" json:"revisoes_triagem"`
	TriadoEm        *time.Time `json:"triado_em"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Demanda Demanda `gorm:"foreignKey:DemandaID" json:"demanda,omitempty"`
}

// ObterChecklist desserializa a coluna Checklist.
func (t *Triagem) ObterChecklist() []ItemChecklist {
	if t.Checklist == "" {
		return nil
	}
	var itens []ItemChecklist
	if err := json.Unmarshal([]byte(t.Checklist), &itens); err != nil {
		return nil
	}
	return itens
}

// DefinirChecklist serializa os itens para a coluna Checklist.
func (t *Triagem) DefinirChecklist(itens []ItemChecklist) {
	if len(itens) == 0 {
		t.Checklist = ""
		return
	}
	b, err := json.Marshal(itens)
	if err != nil {
		return
	}
	t.Checklist = string(b)
}

// DuplicidadeTriagem registra um par confirmado de duplicidade.
// Unicidade: nunca mais de um registro para o mesmo par.
type DuplicidadeTriagem struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	TenantID          string    `gorm:"index;not null" json:"tenant_id"`
	TriagemID         uint      `gorm:"index:idx_dup_par,unique" json:"triagem_id"`
	TriagemOriginalID uint      `gorm:"index:idx_dup_par,unique" json:"triagem_original_id"`
	Similaridade      int       `json:"similaridade"` // 0..100
	CreatedAt         time.Time `json:"created_at"`
}

// HistoricoStatusTriagem guarda cada transição aplicada, para auditoria.
type HistoricoStatusTriagem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TriagemID uint      `gorm:"index" json:"triagem_id"`
	UsuarioID uint      `gorm:"index" json:"usuario_id"`
	DeStatus  string    `json:"de_status"`
	ParaStatus string   `json:"para_status"`
	CreatedAt time.Time `json:"created_at"`
}

// AnexoDemanda é uma evidência anexada à demanda.
type AnexoDemanda struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DemandaID   uint      `gorm:"index" json:"demanda_id"`
	UsuarioID   uint      `gorm:"index" json:"usuario_id"`
	NomeArquivo string    `gorm:"not null" json:"nome_arquivo"`
	Caminho     string    `gorm:"not null" json:"caminho"`
	Tamanho     int64     `json:"tamanho"`
	MimeType    string    `json:"mime_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// ItemCatalogo é uma enumeração configurável por tenant (níveis de impacto,
// urgência, complexidade, status de demanda, prioridade).
type ItemCatalogo struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TenantID  string         `gorm:"index:idx_catalogo_chave,unique;not null" json:"tenant_id"`
	Categoria string         `gorm:"index:idx_catalogo_chave,unique;not null" json:"categoria"`
	Slug      string         `gorm:"index:idx_catalogo_chave,unique;not null" json:"slug"`
	Rotulo    string         `json:"rotulo"`
	Metadata  string         `gorm:"type:text" json:"metadata"` // JSON: map[string]any
	Peso      int            `gorm:"default:0" json:"peso"`
	Ativo     bool           `gorm:"default:true" json:"ativo"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// MetadataMap desserializa a coluna Metadata; vazio retorna mapa vazio.
func (i *ItemCatalogo) MetadataMap() map[string]interface{} {
	out := map[string]interface{}{}
	if i == nil || i.Metadata == "" {
		return out
	}
	if err := json.Unmarshal([]byte(i.Metadata), &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}

// MetadataBool lê uma flag booleana da metadata (ex.: requireEvidence).
func (i *ItemCatalogo) MetadataBool(chave string) bool {
	v, ok := i.MetadataMap()[chave]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// EventoDominio é a linha de outbox de um evento publicado após mutação.
type EventoDominio struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	TenantID  string    `gorm:"index;not null" json:"tenant_id"`
	Tipo      string    `gorm:"index;not null" json:"tipo"` // demanda_triada, demanda_evoluida, duplicidade_marcada
	DemandaID uint      `gorm:"index" json:"demanda_id"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}
