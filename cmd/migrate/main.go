package main

import (
	"fmt"
	"log"
	"os"

	"demandhub/internal/catalog"
	"demandhub/internal/config"
	"demandhub/internal/models"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// carrega a configuração
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
	cfg := config.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
			cfg.Database.Host, cfg.Database.User, cfg.Database.Password, cfg.Database.Name, cfg.Database.Port)
	}

	// conecta ao banco
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Starting database migration...")

	// migra todos os modelos
	err = db.AutoMigrate(
		&models.Usuario{},
		&models.Produto{},
		&models.Demanda{},
		&models.AnexoDemanda{},
		&models.Triagem{},
		&models.HistoricoStatusTriagem{},
		&models.DuplicidadeTriagem{},
		&models.ItemCatalogo{},
		&models.RegraAutomacao{},
		&models.EventoDominio{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database migration completed successfully!")

	// índices adicionais
	log.Println("Creating additional indexes...")

	// demandas: busca por tenant e recorte por status/produto
	db.Exec("CREATE INDEX IF NOT EXISTS idx_demandas_tenant_status ON demandas(tenant_id, status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_demandas_tenant_produto ON demandas(tenant_id, produto_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_demandas_tenant_created ON demandas(tenant_id, created_at)")

	// triagens: recorte por tenant e status de triagem
	db.Exec("CREATE INDEX IF NOT EXISTS idx_triagens_tenant_status ON triagens(tenant_id, status_triagem)")

	// histórico: consulta por triagem em ordem cronológica
	db.Exec("CREATE INDEX IF NOT EXISTS idx_historico_triagem_created ON historico_status_triagems(triagem_id, created_at)")

	// regras: regras ativas do tenant na ordem de declaração
	db.Exec("CREATE INDEX IF NOT EXISTS idx_regras_tenant_ativa ON regra_automacaos(tenant_id, ativa)")

	// outbox: varredura por tipo e tenant
	db.Exec("CREATE INDEX IF NOT EXISTS idx_eventos_tenant_tipo ON evento_dominios(tenant_id, tipo)")

	log.Println("Additional indexes created successfully!")

	if len(os.Args) > 1 && os.Args[1] == "--seed" {
		log.Println("Seeding default data...")
		seedDefaultData(db)
		log.Println("Default data seeded successfully!")
	}

	log.Println("Migration process completed!")
}

func seedDefaultData(db *gorm.DB) {
	const tenant = "default"

	// usuário administrador padrão
	var admin models.Usuario
	if err := db.Where("email = ?", "admin@demandhub.local").First(&admin).Error; err != nil {
		admin = models.Usuario{
			TenantID: tenant,
			Nome:     "Administrador",
			Email:    "admin@demandhub.local",
			Papel:    "admin",
			Ativo:    true,
		}
		db.Create(&admin)
		log.Println("Created default admin user")
	}

	type seedItem struct {
		Categoria string
		Rotulo    string
		Peso      int
		Metadata  string
	}
	itens := []seedItem{
		{catalog.CategoriaImpacto, "Baixo", 1, ""},
		{catalog.CategoriaImpacto, "Médio", 2, ""},
		{catalog.CategoriaImpacto, "Alto", 3, `{"requireEvidence":true}`},
		{catalog.CategoriaImpacto, "Crítico", 4, `{"requireEvidence":true,"requireStakeholder":true}`},

		{catalog.CategoriaUrgencia, "Baixo", 1, ""},
		{catalog.CategoriaUrgencia, "Médio", 2, ""},
		{catalog.CategoriaUrgencia, "Alto", 3, ""},
		{catalog.CategoriaUrgencia, "Crítico", 4, `{"requireMetrics":true}`},

		{catalog.CategoriaComplexidade, "Baixa", 1, ""},
		{catalog.CategoriaComplexidade, "Média", 2, ""},
		{catalog.CategoriaComplexidade, "Alta", 3, `{"requireMetrics":true}`},

		{catalog.CategoriaStatusDemanda, "Aberta", 1, ""},
		{catalog.CategoriaStatusDemanda, "Triagem", 2, ""},
		{catalog.CategoriaStatusDemanda, "Discovery", 3, ""},
		{catalog.CategoriaStatusDemanda, "Concluída", 4, ""},
		{catalog.CategoriaStatusDemanda, "Arquivado", 5, ""},

		{catalog.CategoriaPrioridade, "Baixa", 1, ""},
		{catalog.CategoriaPrioridade, "Média", 2, ""},
		{catalog.CategoriaPrioridade, "Alta", 3, ""},
		{catalog.CategoriaPrioridade, "Crítica", 4, ""},
	}

	for _, it := range itens {
		slug := catalog.Slugify(it.Rotulo)
		var existente models.ItemCatalogo
		err := db.Where("tenant_id = ? AND categoria = ? AND slug = ?", tenant, it.Categoria, slug).
			First(&existente).Error
		if err == nil {
			continue
		}
		db.Create(&models.ItemCatalogo{
			TenantID:  tenant,
			Categoria: it.Categoria,
			Slug:      slug,
			Rotulo:    it.Rotulo,
			Metadata:  it.Metadata,
			Peso:      it.Peso,
			Ativo:     true,
		})
	}
	log.Println("Created default catalog items")
}
